package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/pmo/internal/capacity"
	"github.com/alexanderramin/pmo/internal/domain"
)

// FormatResources renders the resource directory as a table.
func FormatResources(resources []domain.Resource) string {
	if len(resources) == 0 {
		return Dim("No resources found.")
	}
	headers := []string{"ID", "Name", "Role", "Portfolio", "Line", "Hrs/wk"}
	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		weekly, _ := capacity.WeeklyCapacity(r.YearlyCapacity).Round(2).Float64()
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			Truncate(r.Name, 28),
			Truncate(OrDash(r.Role), 24),
			Truncate(OrDash(r.StrategicPortfolio), 24),
			Truncate(OrDash(r.ProductLine), 24),
			FormatNumber(weekly),
		})
	}
	return RenderTable(headers, rows, AlignRight(0, 5))
}

// FormatProjects lists projects grouped by strategic portfolio and then
// product line, both sorted by name.
func FormatProjects(projects []domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects found.")
	}

	grouped := make(map[string]map[string][]domain.Project)
	for _, p := range projects {
		if grouped[p.Portfolio()] == nil {
			grouped[p.Portfolio()] = make(map[string][]domain.Project)
		}
		grouped[p.Portfolio()][p.Line()] = append(grouped[p.Portfolio()][p.Line()], p)
	}

	var b strings.Builder
	for i, portfolio := range sortedKeys(grouped) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Header(portfolio) + "\n")
		lines := grouped[portfolio]
		for _, line := range sortedKeys(lines) {
			b.WriteString("  " + StylePurple.Render(line) + "\n")
			list := lines[line]
			sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
			for _, p := range list {
				fmt.Fprintf(&b, "    %s %s  %s  %s\n",
					StyleGreen.Render(PadRight(strconv.FormatInt(p.ID, 10), 5)),
					PadRight(Truncate(p.Name, 36), 36),
					PadRight(RAGPill(p.RAGStatus), 9),
					Dim(p.Status))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatBusinessLines lists product lines under their portfolios.
func FormatBusinessLines(lines []domain.BusinessLine) string {
	if len(lines) == 0 {
		return Dim("No business lines found.")
	}
	grouped := make(map[string][]string)
	for _, l := range lines {
		p := domain.CoalesceStr(l.StrategicPortfolio, domain.Uncategorized)
		grouped[p] = append(grouped[p], domain.CoalesceStr(l.ProductLine, domain.Uncategorized))
	}
	var b strings.Builder
	for _, p := range sortedKeys(grouped) {
		b.WriteString(Bold(p) + "\n")
		sort.Strings(grouped[p])
		for _, l := range grouped[p] {
			b.WriteString("  " + Dim("•") + " " + l + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
