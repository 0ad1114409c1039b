package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/pmo/internal/domain"
)

// AllocationTable carries what FormatAllocations needs from the editor.
type AllocationTable struct {
	Mode        domain.EditorMode
	Allocations []domain.Allocation
	Changes     map[int64]domain.Changes
	Problems    map[int64]string
}

// Counterpart returns the display name of the allocation's other side for mode.
func Counterpart(mode domain.EditorMode, a domain.Allocation) string {
	if mode == domain.ModeProject {
		return domain.CoalesceStr(a.ResourceName, fmt.Sprintf("resource #%d", a.ResourceID))
	}
	return domain.CoalesceStr(a.ProjectName, fmt.Sprintf("project #%d", a.ProjectID))
}

// FormatAllocations renders one entity's allocations. Staged fields are
// marked with a yellow asterisk and invalid rows carry their message.
func FormatAllocations(t AllocationTable) string {
	if len(t.Allocations) == 0 {
		return Dim("No allocations.")
	}
	_, counterpart := ModeLabel(t.Mode)

	headers := []string{"ID", counterpart, "Line", "Start", "End", "Pct", "Hrs/wk", "State", "Issue"}
	rows := make([][]string, 0, len(t.Allocations))
	for _, a := range t.Allocations {
		changed := t.Changes[a.ID]
		cell := func(f domain.AllocationField, text string) string {
			if _, ok := changed[f]; ok {
				return text + StyleYellow.Render("*")
			}
			return text
		}
		line := a.ProductLine
		if t.Mode == domain.ModeProject {
			line = a.ResourceRole
		}
		issue := ""
		if msg := t.Problems[a.ID]; msg != "" {
			issue = StyleRed.Render("⚠ " + msg)
		}
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			Truncate(Counterpart(t.Mode, a), 32),
			Truncate(OrDash(line), 24),
			cell(domain.FieldStartDate, OrDash(a.StartDate)),
			cell(domain.FieldEndDate, OrDash(a.EndDate)),
			cell(domain.FieldPct, FormatOptional(a.Pct)),
			cell(domain.FieldHrsPerWeek, FormatOptional(a.HrsPerWeek)),
			StateBadge(a.State),
			issue,
		})
	}
	return RenderTable(headers, rows, AlignRight(0, 5, 6))
}

// FormatPending summarizes staged edits and deletions, one line each.
func FormatPending(changes map[int64]domain.Changes, deletions []int64, lookup func(int64) (domain.Allocation, bool)) string {
	if len(changes) == 0 && len(deletions) == 0 {
		return Dim("No pending changes.")
	}

	ids := make([]int64, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	for _, id := range ids {
		verb := StyleBlue.Render("update")
		if id < 0 {
			verb = StyleGreen.Render("create")
		}
		var fields []string
		for _, f := range domain.EditableFields {
			if v, ok := changes[id][f]; ok {
				fields = append(fields, fmt.Sprintf("%s=%s", f, domain.CoalesceStr(v, "∅")))
			}
		}
		fmt.Fprintf(&b, "  %s %s %s\n", verb, describe(id, lookup), Dim(strings.Join(fields, " ")))
	}
	for _, id := range deletions {
		fmt.Fprintf(&b, "  %s %s\n", StyleRed.Render("delete"), describe(id, lookup))
	}
	return strings.TrimRight(b.String(), "\n")
}

func describe(id int64, lookup func(int64) (domain.Allocation, bool)) string {
	label := Bold(fmt.Sprintf("#%d", id))
	if lookup == nil {
		return label
	}
	if a, ok := lookup(id); ok {
		return fmt.Sprintf("%s %s ↔ %s", label,
			domain.CoalesceStr(a.ResourceName, fmt.Sprintf("resource #%d", a.ResourceID)),
			domain.CoalesceStr(a.ProjectName, fmt.Sprintf("project #%d", a.ProjectID)))
	}
	return label
}
