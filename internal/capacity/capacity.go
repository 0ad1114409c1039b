// Package capacity derives weekly capacity figures for a resource from the
// allocations currently held in memory.
package capacity

import (
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultWeeklyHours applies when a resource has no yearly capacity.
const DefaultWeeklyHours = 40

var weeksPerYear = decimal.NewFromInt(52)

// Summary is the weekly capacity picture for one resource.
type Summary struct {
	ResourceID  int64
	Total       float64
	Allocated   float64
	Available   float64
	Utilization float64 // percent of Total
	Allocations int
}

// OverAllocated reports whether planned hours exceed capacity.
func (s Summary) OverAllocated() bool {
	return s.Available < 0
}

// WeeklyCapacity converts yearly hours to weekly hours. Nil or non-positive
// yearly capacity yields DefaultWeeklyHours.
func WeeklyCapacity(yearly *float64) decimal.Decimal {
	if yearly == nil || *yearly <= 0 {
		return decimal.NewFromInt(DefaultWeeklyHours)
	}
	return decimal.NewFromFloat(*yearly).Div(weeksPerYear)
}

// ForResource sums hours/week over the resource's allocations that are not
// pending deletion. An allocation listed more than once is counted once.
func ForResource(res domain.Resource, allocations []domain.Allocation) Summary {
	total := WeeklyCapacity(res.YearlyCapacity)
	allocated := decimal.Zero
	seen := make(map[int64]bool)
	count := 0

	for i := range allocations {
		a := &allocations[i]
		if a.ResourceID != res.ID || a.PendingDelete() || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		count++
		if a.HrsPerWeek != nil {
			allocated = allocated.Add(decimal.NewFromFloat(*a.HrsPerWeek))
		}
	}

	available := total.Sub(allocated)
	utilization := decimal.Zero
	if total.IsPositive() {
		utilization = allocated.Div(total).Mul(decimal.NewFromInt(100))
	}

	return Summary{
		ResourceID:  res.ID,
		Total:       round(total),
		Allocated:   round(allocated),
		Available:   round(available),
		Utilization: round(utilization),
		Allocations: count,
	}
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
