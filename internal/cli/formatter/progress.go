package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderUtilization renders a capacity bar like [████░░░░] 45%.
// pct is a percentage of capacity. The bar clamps at full width; the label
// does not. Green up to 80%, yellow up to 100%, red when over-allocated.
func RenderUtilization(pct float64, width int) string {
	if width < 2 {
		width = 2
	}
	frac := pct / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(frac * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 100:
		style = StyleRed
	case pct > 80:
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %s", style.Render(bar), fmt.Sprintf("%3.0f%%", pct))
}

// RenderBar renders value as a bar scaled against peak, without brackets.
func RenderBar(value, peak float64, width int, style lipgloss.Style) string {
	if width < 1 {
		width = 1
	}
	if peak <= 0 || value <= 0 {
		return ""
	}
	n := int(value / peak * float64(width))
	if n > width {
		n = width
	}
	if n == 0 {
		n = 1
	}
	return style.Render(strings.Repeat(filledBlock, n))
}
