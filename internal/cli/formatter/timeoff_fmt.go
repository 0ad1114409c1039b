package formatter

import (
	"strconv"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
)

// FormatTimeOff renders time off entries with the inclusive day count.
func FormatTimeOff(entries []domain.TimeOff) string {
	if len(entries) == 0 {
		return Dim("No time off recorded.")
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ResourceID, 10),
			Truncate(OrDash(e.ResourceName), 28),
			e.StartDate,
			e.EndDate,
			timeOffDays(e),
			e.Reason,
		})
	}
	return RenderTable([]string{"ID", "Resource", "Start", "End", "Days", "Reason"}, rows, AlignRight(0, 4))
}

func timeOffDays(e domain.TimeOff) string {
	start, err := time.Parse(domain.DateLayout, e.StartDate)
	if err != nil {
		return "-"
	}
	end, err := time.Parse(domain.DateLayout, e.EndDate)
	if err != nil || end.Before(start) {
		return "-"
	}
	return strconv.Itoa(int(end.Sub(start).Hours()/24) + 1)
}
