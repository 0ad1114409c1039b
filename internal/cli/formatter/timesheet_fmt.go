package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/timesheet"
	"github.com/shopspring/decimal"
)

// FormatTimesheet renders logged entries, newest week first, with a total.
func FormatTimesheet(entries []domain.TimesheetEntry) string {
	if len(entries) == 0 {
		return Dim("No timesheet entries.")
	}
	total := decimal.Zero
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Hours))
		rows = append(rows, []string{
			e.WeekStart,
			e.WeekEnd,
			strconv.FormatInt(e.ProjectID, 10),
			Truncate(e.ProjectName, 36),
			FormatNumber(e.Hours),
		})
	}
	sum, _ := total.Round(2).Float64()
	return RenderTable([]string{"Week", "Ending", "ID", "Project", "Hours"}, rows, AlignRight(2, 4)) +
		fmt.Sprintf("%s %s\n", Dim("total"), FormatHours(sum))
}

// FormatDraft renders a drafted week, flagging rows taken from allocations.
func FormatDraft(week timesheet.Week, rows []timesheet.Row) string {
	var b strings.Builder
	b.WriteString(Header("Week of "+week.String()) + "\n")
	if len(rows) == 0 {
		b.WriteString(Dim("Nothing logged or planned this week.") + "\n")
		return b.String()
	}
	total := decimal.Zero
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.Hours))
		source := StyleGreen.Render("actual")
		if r.Source == timesheet.SourceAllocation {
			source = StyleBlue.Render("planned")
		}
		cells = append(cells, []string{
			strconv.FormatInt(r.ProjectID, 10),
			Truncate(OrDash(r.ProjectName), 36),
			FormatNumber(r.Hours),
			source,
		})
	}
	b.WriteString(RenderTable([]string{"ID", "Project", "Hours", "Source"}, cells, AlignRight(0, 2)))
	sum, _ := total.Round(2).Float64()
	fmt.Fprintf(&b, "%s %s\n", Dim("total"), FormatHours(sum))
	return b.String()
}
