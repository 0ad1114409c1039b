package domain

import "fmt"

// AllocationState tags where an allocation sits in the edit/save lifecycle.
type AllocationState string

const (
	StateNew           AllocationState = "new"
	StatePersisted     AllocationState = "persisted"
	StatePendingDelete AllocationState = "pending_delete"
)

func (s AllocationState) Valid() bool {
	switch s {
	case StateNew, StatePersisted, StatePendingDelete:
		return true
	}
	return false
}

// EditorMode selects which side of the resource/project relation the
// editor is anchored on.
type EditorMode string

const (
	ModeResource EditorMode = "resource"
	ModeProject  EditorMode = "project"
)

// ParseEditorMode accepts "resource" or "project".
func ParseEditorMode(s string) (EditorMode, error) {
	switch EditorMode(s) {
	case ModeResource, ModeProject:
		return EditorMode(s), nil
	}
	return "", fmt.Errorf("unknown editor mode %q (want resource or project)", s)
}

// AllocationField names an editable allocation attribute. Values match the
// REST payload keys.
type AllocationField string

const (
	FieldStartDate  AllocationField = "allocation_start_date"
	FieldEndDate    AllocationField = "allocation_end_date"
	FieldPct        AllocationField = "allocation_pct"
	FieldHrsPerWeek AllocationField = "allocation_hrs_per_week"
)

// EditableFields lists every field a user may stage a change on.
var EditableFields = []AllocationField{FieldStartDate, FieldEndDate, FieldPct, FieldHrsPerWeek}

var fieldAliases = map[string]AllocationField{
	"start":                   FieldStartDate,
	"start_date":              FieldStartDate,
	"allocation_start_date":   FieldStartDate,
	"end":                     FieldEndDate,
	"end_date":                FieldEndDate,
	"allocation_end_date":     FieldEndDate,
	"pct":                     FieldPct,
	"allocation_pct":          FieldPct,
	"hrs":                     FieldHrsPerWeek,
	"hours":                   FieldHrsPerWeek,
	"allocation_hrs_per_week": FieldHrsPerWeek,
}

// ParseAllocationField resolves a field name or short alias (start, end, pct, hrs).
func ParseAllocationField(s string) (AllocationField, error) {
	if f, ok := fieldAliases[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown allocation field %q (want start, end, pct or hrs)", s)
}

type EstimationUnit string

const (
	UnitDays   EstimationUnit = "days"
	UnitWeeks  EstimationUnit = "weeks"
	UnitMonths EstimationUnit = "months"
)

// WorkingDays returns the number of working days one unit represents.
// Unknown units count as one day.
func (u EstimationUnit) WorkingDays() int64 {
	switch u {
	case UnitWeeks:
		return 5
	case UnitMonths:
		return 22
	default:
		return 1
	}
}

func (u EstimationUnit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths:
		return true
	}
	return false
}
