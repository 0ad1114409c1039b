package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Palette shared by tables, charts and the editor grid.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StateBadge returns a colored marker for an allocation's lifecycle state.
func StateBadge(state domain.AllocationState) string {
	switch state {
	case domain.StateNew:
		return StyleGreen.Render("+ new")
	case domain.StatePendingDelete:
		return StyleRed.Render("✖ delete")
	case domain.StatePersisted:
		return StyleDim.Render("● saved")
	default:
		return StyleDim.Render(string(state))
	}
}

// RAGPill colors a project's red/amber/green status.
func RAGPill(rag string) string {
	switch strings.ToLower(rag) {
	case "green":
		return StyleGreen.Render("● Green")
	case "amber", "yellow":
		return StyleYellow.Render("● Amber")
	case "red":
		return StyleRed.Render("● Red")
	case "":
		return StyleDim.Render("--")
	default:
		return StyleDim.Render(rag)
	}
}

// ModeLabel names the entity and counterpart columns for an editor mode.
func ModeLabel(mode domain.EditorMode) (entity, counterpart string) {
	if mode == domain.ModeProject {
		return "Project", "Resource"
	}
	return "Resource", "Project"
}

// Header upper-cases text and underlines it to its display width.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
