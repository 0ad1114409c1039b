package domain

// CapacityInterval is one period of server-aggregated capacity figures.
// Per-project and per-resource endpoints label periods with StartDate; the
// portfolio endpoint uses Interval.
type CapacityInterval struct {
	StartDate     string  `json:"start_date,omitempty"`
	EndDate       string  `json:"end_date,omitempty"`
	Interval      string  `json:"interval,omitempty"`
	TotalCapacity float64 `json:"total_capacity"`
	Planned       float64 `json:"allocation_hours_planned"`
	Actual        float64 `json:"allocation_hours_actual"`
	Available     float64 `json:"available_capacity"`
}

// Label returns the period's start date for chart axes.
func (c CapacityInterval) Label() string {
	return CoalesceStr(c.StartDate, c.Interval)
}
