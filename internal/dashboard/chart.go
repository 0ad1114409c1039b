package dashboard

import (
	"sort"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/shopspring/decimal"
)

// Chart is a planned/actual/available series over labelled periods.
type Chart struct {
	ProjectID int64
	Title     string
	Labels    []string
	Planned   []float64
	Actual    []float64
	Available []float64
}

// BuildChart lays periods out in the order given, labelled by start date.
func BuildChart(title string, periods []domain.CapacityInterval) Chart {
	c := Chart{
		Title:     title,
		Labels:    make([]string, 0, len(periods)),
		Planned:   make([]float64, 0, len(periods)),
		Actual:    make([]float64, 0, len(periods)),
		Available: make([]float64, 0, len(periods)),
	}
	for _, p := range periods {
		c.Labels = append(c.Labels, p.Label())
		c.Planned = append(c.Planned, p.Planned)
		c.Actual = append(c.Actual, p.Actual)
		c.Available = append(c.Available, p.Available)
	}
	return c
}

func (c Chart) Empty() bool { return len(c.Labels) == 0 }

// Totals sums each series.
func (c Chart) Totals() (planned, actual, available float64) {
	return sum(c.Planned), sum(c.Actual), sum(c.Available)
}

// Peak returns the largest value across all series, for scaling bars.
func (c Chart) Peak() float64 {
	peak := 0.0
	for _, s := range [][]float64{c.Planned, c.Actual, c.Available} {
		for _, v := range s {
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}

func sum(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// PortfolioView is the aggregate chart plus each resource's totals.
type PortfolioView struct {
	Chart     Chart
	Resources []ResourceTotal
}

type ResourceTotal struct {
	ResourceID   int64
	ResourceName string
	Role         string
	Planned      float64
	Actual       float64
	Available    float64
}

// ResourceTotals sums each resource's figures over all intervals, most
// planned hours first.
func ResourceTotals(pc *api.PortfolioCapacity) []ResourceTotal {
	type acc struct {
		total                      ResourceTotal
		planned, actual, available decimal.Decimal
	}
	byID := make(map[int64]*acc)
	var order []int64
	for _, iv := range pc.Intervals {
		for _, r := range iv.Resources {
			a, ok := byID[r.ResourceID]
			if !ok {
				a = &acc{total: ResourceTotal{ResourceID: r.ResourceID, ResourceName: r.ResourceName, Role: r.ResourceRole}}
				byID[r.ResourceID] = a
				order = append(order, r.ResourceID)
			}
			a.planned = a.planned.Add(decimal.NewFromFloat(r.Planned))
			a.actual = a.actual.Add(decimal.NewFromFloat(r.Actual))
			a.available = a.available.Add(decimal.NewFromFloat(r.Available))
		}
	}

	out := make([]ResourceTotal, 0, len(order))
	for _, id := range order {
		a := byID[id]
		a.total.Planned, _ = a.planned.Round(2).Float64()
		a.total.Actual, _ = a.actual.Round(2).Float64()
		a.total.Available, _ = a.available.Round(2).Float64()
		out = append(out, a.total)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Planned > out[j].Planned })
	return out
}
