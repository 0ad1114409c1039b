package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pmo/internal/dashboard"
)

const chartBarWidth = 24

// FormatChart renders a chart as one row per period with a planned-hours
// bar scaled to the chart's peak.
func FormatChart(c dashboard.Chart) string {
	var b strings.Builder
	b.WriteString(Bold(c.Title) + "\n")
	if c.Empty() {
		b.WriteString("  " + Dim("No capacity data.") + "\n")
		return b.String()
	}

	peak := c.Peak()
	headers := []string{"Period", "Planned", "Actual", "Available", ""}
	rows := make([][]string, 0, len(c.Labels))
	for i, label := range c.Labels {
		available := FormatNumber(c.Available[i])
		if c.Available[i] < 0 {
			available = StyleRed.Render(available)
		}
		rows = append(rows, []string{
			label,
			FormatNumber(c.Planned[i]),
			FormatNumber(c.Actual[i]),
			available,
			RenderBar(c.Planned[i], peak, chartBarWidth, StyleBlue),
		})
	}
	b.WriteString(indent(RenderTable(headers, rows, AlignRight(1, 2, 3))))

	planned, actual, available := c.Totals()
	fmt.Fprintf(&b, "  %s planned %s  actual %s  available %s\n",
		Dim("total"), FormatHours(planned), FormatHours(actual), FormatHours(available))
	return b.String()
}

// FormatDashboard renders every project chart under its portfolio and
// product line headers.
func FormatDashboard(d *dashboard.Dashboard) string {
	if d == nil || d.Charts() == 0 {
		out := Dim("No project capacity to show.")
		if d != nil && len(d.Failed) > 0 {
			out += "\n" + failedNote(d.Failed)
		}
		return out
	}

	var b strings.Builder
	for _, g := range d.Groups {
		b.WriteString(Header(g.Portfolio) + "\n")
		for _, l := range g.Lines {
			b.WriteString(StylePurple.Render(l.ProductLine) + "\n\n")
			for _, pc := range l.Projects {
				b.WriteString(indent(FormatChart(*pc.Chart)) + "\n")
			}
		}
	}
	if len(d.Failed) > 0 {
		b.WriteString(failedNote(d.Failed) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPortfolio renders the portfolio aggregate and the per-resource totals.
func FormatPortfolio(v *dashboard.PortfolioView) string {
	var b strings.Builder
	b.WriteString(FormatChart(v.Chart))
	if len(v.Resources) == 0 {
		return b.String()
	}
	b.WriteString("\n" + Header("Resources") + "\n")
	rows := make([][]string, 0, len(v.Resources))
	for _, r := range v.Resources {
		rows = append(rows, []string{
			Truncate(r.ResourceName, 28),
			Truncate(OrDash(r.Role), 24),
			FormatNumber(r.Planned),
			FormatNumber(r.Actual),
			FormatNumber(r.Available),
		})
	}
	b.WriteString(RenderTable([]string{"Resource", "Role", "Planned", "Actual", "Available"}, rows, AlignRight(2, 3, 4)))
	return b.String()
}

func failedNote(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return StyleYellow.Render(fmt.Sprintf("capacity unavailable for %d project(s): %s", len(ids), strings.Join(parts, ", ")))
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "  " + l
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
