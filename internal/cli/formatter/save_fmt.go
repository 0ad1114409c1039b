package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
)

// FormatSaveResult summarizes what a save sent to the server.
func FormatSaveResult(r editor.SaveResult) string {
	if r.Empty() {
		return Dim("Nothing to save.")
	}
	out := fmt.Sprintf("%s %d created, %d updated, %d deleted",
		StyleGreen.Render("✔ Saved."), r.Creates, r.Updates, r.Deletes)
	if len(r.Skipped) > 0 {
		ids := make([]string, len(r.Skipped))
		for i, id := range r.Skipped {
			ids[i] = fmt.Sprintf("%d", id)
		}
		out += "\n" + StyleYellow.Render("skipped (no longer loaded): "+strings.Join(ids, ", "))
	}
	return out
}

// FormatProblems lists validation problems in id order.
func FormatProblems(problems map[int64]string) string {
	if len(problems) == 0 {
		return StyleGreen.Render("✔ All allocations are valid.")
	}
	ids := make([]int64, 0, len(problems))
	for id := range problems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleRed.Render("⚠"), Bold(fmt.Sprintf("#%d", id)), problems[id])
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSaveLog renders the local save history.
func FormatSaveLog(records []*domain.SaveRecord, now time.Time) string {
	if len(records) == 0 {
		return Dim("No saves recorded.")
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		outcome := StyleGreen.Render("ok")
		if !r.Success {
			outcome = StyleRed.Render("failed")
			if r.Error != "" {
				outcome += " " + Dim(Truncate(r.Error, 48))
			}
		}
		rows = append(rows, []string{
			HumanTimestampFrom(r.SavedAt, now),
			string(r.Mode),
			fmt.Sprintf("%d", r.EntityID),
			fmt.Sprintf("%d", r.Creates),
			fmt.Sprintf("%d", r.Updates),
			fmt.Sprintf("%d", r.Deletes),
			outcome,
		})
	}
	return RenderTable([]string{"When", "Mode", "Entity", "Created", "Updated", "Deleted", "Outcome"}, rows, AlignRight(2, 3, 4, 5))
}
