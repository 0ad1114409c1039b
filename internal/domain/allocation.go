package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and display format for allocation dates.
const DateLayout = "2006-01-02"

// Validation messages shown next to offending allocations.
const (
	MsgMissingDates      = "Start Date and End Date must be filled."
	MsgMissingCommitment = "Either Allocation % or Hrs./Week must be filled."
)

var ErrInvalidAllocation = errors.New("invalid allocation")

// Allocation assigns one resource to one project for a date range. Unsaved
// allocations carry a negative placeholder ID until the server assigns one.
type Allocation struct {
	ID         int64           `json:"allocation_id"`
	ProjectID  int64           `json:"project_id"`
	ResourceID int64           `json:"resource_id"`
	StartDate  string          `json:"allocation_start_date"`
	EndDate    string          `json:"allocation_end_date"`
	Pct        *float64        `json:"allocation_pct"`
	HrsPerWeek *float64        `json:"allocation_hrs_per_week"`
	State      AllocationState `json:"state"`

	// Display fields joined from the project and resource directories.
	ProjectName        string `json:"project_name,omitempty"`
	StrategicPortfolio string `json:"strategic_portfolio,omitempty"`
	ProductLine        string `json:"product_line,omitempty"`
	ResourceName       string `json:"resource_name,omitempty"`
	ResourceEmail      string `json:"resource_email,omitempty"`
	ResourceRole       string `json:"resource_role,omitempty"`
}

// NewAllocation builds an allocation in the given state and rejects
// combinations the lifecycle does not allow.
func NewAllocation(id, projectID, resourceID int64, state AllocationState) (*Allocation, error) {
	a := &Allocation{ID: id, ProjectID: projectID, ResourceID: resourceID, State: state}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the state tag against the ID sign and the foreign keys.
func (a *Allocation) Validate() error {
	if !a.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidAllocation, a.State)
	}
	if a.State == StateNew && a.ID >= 0 {
		return fmt.Errorf("%w: new allocation must have a negative id, got %d", ErrInvalidAllocation, a.ID)
	}
	if a.State != StateNew && a.ID <= 0 {
		return fmt.Errorf("%w: %s allocation must have a positive id, got %d", ErrInvalidAllocation, a.State, a.ID)
	}
	if a.ProjectID <= 0 || a.ResourceID <= 0 {
		return fmt.Errorf("%w: allocation %d needs both project and resource", ErrInvalidAllocation, a.ID)
	}
	return nil
}

func (a *Allocation) IsNew() bool         { return a.State == StateNew }
func (a *Allocation) Persisted() bool     { return a.State != StateNew }
func (a *Allocation) PendingDelete() bool { return a.State == StatePendingDelete }

// Clone returns a deep copy.
func (a Allocation) Clone() Allocation {
	a.Pct = cloneFloat(a.Pct)
	a.HrsPerWeek = cloneFloat(a.HrsPerWeek)
	return a
}

// Set assigns a field from its string form. An empty value clears the field.
func (a *Allocation) Set(field AllocationField, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldStartDate, FieldEndDate:
		if value != "" {
			if _, err := time.Parse(DateLayout, value); err != nil {
				return fmt.Errorf("%s: invalid date %q (want YYYY-MM-DD)", field, value)
			}
		}
		if field == FieldStartDate {
			a.StartDate = value
		} else {
			a.EndDate = value
		}
	case FieldPct, FieldHrsPerWeek:
		var v *float64
		if value != "" {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%s: invalid number %q", field, value)
			}
			if f < 0 {
				return fmt.Errorf("%s: must not be negative", field)
			}
			v = &f
		}
		if field == FieldPct {
			a.Pct = v
		} else {
			a.HrsPerWeek = v
		}
	default:
		return fmt.Errorf("unknown allocation field %q", field)
	}
	return nil
}

// Get returns the string form of a field; unset values are empty.
func (a *Allocation) Get(field AllocationField) string {
	switch field {
	case FieldStartDate:
		return a.StartDate
	case FieldEndDate:
		return a.EndDate
	case FieldPct:
		return formatOptional(a.Pct)
	case FieldHrsPerWeek:
		return formatOptional(a.HrsPerWeek)
	}
	return ""
}

// Problem returns the validation message for this allocation, or "" when it
// is complete. Missing dates take precedence over a missing commitment.
// A zero percentage or zero hours counts as unset.
func (a *Allocation) Problem() string {
	if a.StartDate == "" || a.EndDate == "" {
		return MsgMissingDates
	}
	if isZero(a.Pct) && isZero(a.HrsPerWeek) {
		return MsgMissingCommitment
	}
	return ""
}

// WeeklyHours returns the hours/week commitment, zero when unset.
func (a *Allocation) WeeklyHours() float64 {
	return FloatOr(a.HrsPerWeek, 0)
}

func isZero(p *float64) bool {
	return p == nil || *p == 0
}

func formatOptional(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

// Changes records the staged value of each edited field, in string form.
type Changes map[AllocationField]string

func (c Changes) Clone() Changes {
	out := make(Changes, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ApplyTo applies every staged change to a in field order.
func (c Changes) ApplyTo(a *Allocation) error {
	for _, f := range EditableFields {
		v, ok := c[f]
		if !ok {
			continue
		}
		if err := a.Set(f, v); err != nil {
			return err
		}
	}
	return nil
}
