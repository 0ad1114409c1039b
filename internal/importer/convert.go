package importer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
)

// ErrEntityMismatch is returned when the editor holds a different entity
// from the one the plan was written for.
var ErrEntityMismatch = errors.New("plan does not match the open entity")

// Stager is the part of the editor store a plan is staged into.
type Stager interface {
	Mode() domain.EditorMode
	Selected() int64
	Snapshot() editor.State
	Restore(st editor.State) error
	AddNew(entityID int64, counterpartIDs []int64, tmpl editor.Template) ([]domain.Allocation, error)
	StageFieldChange(id int64, field domain.AllocationField, value string) error
	MarkForDeletion(id int64) error
}

// Summary counts what a plan staged.
type Summary struct {
	Added   []int64
	Updated int
	Deleted int
}

// Stage applies a validated plan to the store as staged changes. Call
// ValidatePlan first. The store must already have the plan's entity
// selected. Staging is all-or-nothing: on error the store is restored.
func Stage(store Stager, plan *PlanFile) (Summary, error) {
	mode, err := domain.ParseEditorMode(plan.Mode)
	if err != nil {
		return Summary{}, err
	}
	if store.Mode() != mode || store.Selected() != plan.EntityID {
		return Summary{}, fmt.Errorf("%w: plan is for %s %d", ErrEntityMismatch, mode, plan.EntityID)
	}

	before := store.Snapshot()
	sum, err := stage(store, plan)
	if err != nil {
		if rerr := store.Restore(before); rerr != nil {
			return Summary{}, errors.Join(err, rerr)
		}
		return Summary{}, err
	}
	return sum, nil
}

func stage(store Stager, plan *PlanFile) (Summary, error) {
	var sum Summary
	defaults := RowDefaults{}
	if plan.Defaults != nil {
		defaults = *plan.Defaults
	}

	for i, r := range plan.Allocations {
		prefix := fmt.Sprintf("allocations[%d]", i)

		switch {
		case r.IsNew():
			added, err := store.AddNew(plan.EntityID, []int64{r.CounterpartID}, newTemplate(r, defaults))
			if err != nil {
				return sum, fmt.Errorf("%s: %w", prefix, err)
			}
			for _, a := range added {
				sum.Added = append(sum.Added, a.ID)
			}
		case r.Delete:
			if err := store.MarkForDeletion(r.ID); err != nil {
				return sum, fmt.Errorf("%s: %w", prefix, err)
			}
			sum.Deleted++
		default:
			for field, value := range rowChanges(r) {
				if err := store.StageFieldChange(r.ID, field, value); err != nil {
					return sum, fmt.Errorf("%s: %w", prefix, err)
				}
			}
			sum.Updated++
		}
	}
	return sum, nil
}

// newTemplate merges a new row over the plan defaults.
func newTemplate(r PlanRow, d RowDefaults) editor.Template {
	t := editor.Template{
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		Pct:        formatNumber(d.Pct),
		HrsPerWeek: formatNumber(d.HrsPerWeek),
	}
	if r.StartDate != nil {
		t.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		t.EndDate = *r.EndDate
	}
	if r.Pct != nil {
		t.Pct = formatNumber(r.Pct)
	}
	if r.HrsPerWeek != nil {
		t.HrsPerWeek = formatNumber(r.HrsPerWeek)
	}
	return t
}

// rowChanges lists the fields an update row sets. A present but empty
// date clears the field.
func rowChanges(r PlanRow) domain.Changes {
	c := domain.Changes{}
	if r.StartDate != nil {
		c[domain.FieldStartDate] = *r.StartDate
	}
	if r.EndDate != nil {
		c[domain.FieldEndDate] = *r.EndDate
	}
	if r.Pct != nil {
		c[domain.FieldPct] = formatNumber(r.Pct)
	}
	if r.HrsPerWeek != nil {
		c[domain.FieldHrsPerWeek] = formatNumber(r.HrsPerWeek)
	}
	return c
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
