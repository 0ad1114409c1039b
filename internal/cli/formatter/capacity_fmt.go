package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pmo/internal/capacity"
	"github.com/alexanderramin/pmo/internal/domain"
)

// FormatCapacity renders a resource's weekly capacity picture.
func FormatCapacity(res domain.Resource, s capacity.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(domain.CoalesceStr(res.Name, fmt.Sprintf("resource #%d", res.ID))), Dim(res.Role))
	if res.YearlyCapacity == nil || *res.YearlyCapacity <= 0 {
		b.WriteString(Dim(fmt.Sprintf("no yearly capacity on file, assuming %dh/week", capacity.DefaultWeeklyHours)) + "\n")
	}
	b.WriteString("\n")

	available := FormatHours(s.Available)
	if s.OverAllocated() {
		available = StyleRed.Render(available + " over-allocated")
	}
	rows := [][]string{
		{"Weekly capacity", FormatHours(s.Total)},
		{"Allocated", FormatHours(s.Allocated)},
		{"Available", available},
		{"Allocations", fmt.Sprintf("%d", s.Allocations)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", PadRight(Dim(r[0]), 17), r[1])
	}
	b.WriteString("\n  " + RenderUtilization(s.Utilization, 30))

	return RenderBox("Capacity", b.String())
}

// CapacityLine is the one-line capacity summary shown under allocation grids.
// It turns red when the resource is over-allocated.
func CapacityLine(s capacity.Summary) string {
	line := fmt.Sprintf("capacity %s/wk · allocated %s · available %s",
		FormatHours(s.Total), FormatHours(s.Allocated), FormatHours(s.Available))
	if s.OverAllocated() {
		return StyleRed.Render(line + " over-allocated")
	}
	return Dim(line)
}
