package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/estimation"
)

// FormatEstimations renders a project's estimate rows and their totals.
func FormatEstimations(rows []domain.ProjectEstimation) string {
	if len(rows) == 0 {
		return Dim("No estimation rows.")
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		id := Dim("--")
		if r.ID != nil {
			id = fmt.Sprintf("%d", *r.ID)
		}
		cells = append(cells, []string{
			id,
			r.Milestone,
			Truncate(OrDash(r.Deliverable), 32),
			FormatNumber(r.Resources),
			FormatNumber(r.Duration) + " " + string(r.Unit),
			FormatNumber(r.PersonDays),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"ID", "Milestone", "Deliverable", "Resources", "Duration", "Person-days"}, cells, AlignRight(0, 3, 5)))
	b.WriteString("\n")

	t := estimation.Summarize(rows)
	for _, m := range t.Milestones {
		fmt.Fprintf(&b, "  %s %s\n", PadRight(StylePurple.Render(m.Milestone), 22), FormatNumber(m.PersonDays)+" d")
	}
	fmt.Fprintf(&b, "\n  %s %s person-days  %s weeks  %s months  %s resources\n",
		Bold("Total"),
		FormatNumber(t.PersonDays),
		FormatNumber(t.PersonWeeks),
		FormatNumber(t.PersonMonths),
		FormatNumber(t.Resources))
	return b.String()
}
