package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
)

// ValidatePlan checks the plan for errors before it is staged.
// Returns a slice of all validation errors found.
func ValidatePlan(plan *PlanFile) []error {
	var errs []error

	if _, err := domain.ParseEditorMode(plan.Mode); err != nil {
		errs = append(errs, fmt.Errorf("mode: invalid value %q (want resource or project)", plan.Mode))
	}
	if plan.EntityID <= 0 {
		errs = append(errs, fmt.Errorf("entity_id is required"))
	}
	if len(plan.Allocations) == 0 {
		errs = append(errs, fmt.Errorf("allocations: nothing to import"))
	}
	if d := plan.Defaults; d != nil {
		errs = append(errs, validateDate("defaults.start_date", d.StartDate)...)
		errs = append(errs, validateDate("defaults.end_date", d.EndDate)...)
		errs = append(errs, validateRange("defaults", d.StartDate, d.EndDate)...)
		errs = append(errs, validateNumber("defaults.allocation_pct", d.Pct)...)
		errs = append(errs, validateNumber("defaults.allocation_hrs_per_week", d.HrsPerWeek)...)
	}

	seen := make(map[int64]bool)
	for i, r := range plan.Allocations {
		prefix := fmt.Sprintf("allocations[%d]", i)

		if r.IsNew() {
			if r.CounterpartID <= 0 {
				errs = append(errs, fmt.Errorf("%s.counterpart_id is required for new rows", prefix))
			}
			if r.Delete {
				errs = append(errs, fmt.Errorf("%s.delete needs an id", prefix))
			}
		} else if seen[r.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %d", prefix, r.ID))
		} else {
			seen[r.ID] = true
		}

		if r.Delete && r.hasFields() {
			errs = append(errs, fmt.Errorf("%s: a deleted row cannot also change fields", prefix))
		}

		start, end := deref(r.StartDate), deref(r.EndDate)
		errs = append(errs, validateDate(prefix+".start_date", start)...)
		errs = append(errs, validateDate(prefix+".end_date", end)...)
		errs = append(errs, validateRange(prefix, start, end)...)
		errs = append(errs, validateNumber(prefix+".allocation_pct", r.Pct)...)
		errs = append(errs, validateNumber(prefix+".allocation_hrs_per_week", r.HrsPerWeek)...)
	}

	return errs
}

func (r PlanRow) hasFields() bool {
	return r.StartDate != nil || r.EndDate != nil || r.Pct != nil || r.HrsPerWeek != nil
}

func validateDate(field, value string) []error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, value)}
	}
	return nil
}

func validateRange(prefix, start, end string) []error {
	if start == "" || end == "" {
		return nil
	}
	s, errS := time.Parse(domain.DateLayout, start)
	e, errE := time.Parse(domain.DateLayout, end)
	if errS == nil && errE == nil && e.Before(s) {
		return []error{fmt.Errorf("%s: end_date %q is before start_date %q", prefix, end, start)}
	}
	return nil
}

func validateNumber(field string, v *float64) []error {
	if v != nil && *v < 0 {
		return []error{fmt.Errorf("%s must not be negative", field)}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
