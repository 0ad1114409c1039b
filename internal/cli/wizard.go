package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/estimation"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// pmoHuhTheme returns a huh theme using the formatter's Gruvbox palette.
func pmoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validatePositiveInt(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

func validatePositiveNumber(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a number greater than zero")
	}
	return nil
}

func validateRequiredDate(s string) error {
	if s == "" {
		return fmt.Errorf("a date is required")
	}
	return validateOptionalDate(s)
}

// projectOptions builds select options from the directory, or nil when it
// is empty so the caller can fall back to a free-text id.
func projectOptions(projects []domain.Project) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(projects))
	for _, p := range projects {
		options = append(options, huh.NewOption(fmt.Sprintf("%d · %s", p.ID, p.Name), strconv.FormatInt(p.ID, 10)))
	}
	return options
}

// timesheetInput is the raw text the timesheet form collects.
type timesheetInput struct {
	Resource string
	Project  string
	Week     string
	Hours    string
}

// timesheetForm asks for whichever timesheet fields are still empty.
func timesheetForm(in *timesheetInput, projects []domain.Project) *huh.Form {
	var fields []huh.Field
	if in.Resource == "" {
		fields = append(fields, huh.NewInput().
			Title("Resource ID").
			Value(&in.Resource).
			Validate(validatePositiveInt))
	}
	if in.Project == "" {
		if options := projectOptions(projects); len(options) > 0 {
			fields = append(fields, huh.NewSelect[string]().
				Title("Project").
				Options(options...).
				Value(&in.Project))
		} else {
			fields = append(fields, huh.NewInput().
				Title("Project ID").
				Value(&in.Project).
				Validate(validatePositiveInt))
		}
	}
	fields = append(fields,
		huh.NewInput().
			Title("Week (any date in it, YYYY-MM-DD)").
			Value(&in.Week).
			Validate(validateRequiredDate),
		huh.NewInput().
			Title("Hours worked").
			Placeholder("40").
			Value(&in.Hours).
			Validate(validatePositiveNumber),
	)
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(pmoHuhTheme()).WithShowHelp(false)
}

// timeOffInput is the raw text the time off form collects.
type timeOffInput struct {
	Resource string
	Start    string
	End      string
	Reason   string
}

func timeOffForm(in *timeOffInput) *huh.Form {
	var fields []huh.Field
	if in.Resource == "" {
		fields = append(fields, huh.NewInput().
			Title("Resource ID").
			Value(&in.Resource).
			Validate(validatePositiveInt))
	}
	reasons := make([]huh.Option[string], 0, len(domain.TimeOffReasons))
	for _, r := range domain.TimeOffReasons {
		reasons = append(reasons, huh.NewOption(r, r))
	}
	fields = append(fields,
		huh.NewInput().
			Title("First day off (YYYY-MM-DD)").
			Value(&in.Start).
			Validate(validateRequiredDate),
		huh.NewInput().
			Title("Last day off (YYYY-MM-DD)").
			Value(&in.End).
			Validate(validateRequiredDate),
		huh.NewSelect[string]().
			Title("Reason").
			Options(reasons...).
			Value(&in.Reason),
	)
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(pmoHuhTheme()).WithShowHelp(false)
}

// estimateInput is the raw text the estimate form collects.
type estimateInput struct {
	Milestone   string
	Deliverable string
	Resources   string
	Duration    string
	Unit        string
}

// estimateForm asks for one estimation row. Deliverables offered depend on
// the milestone chosen in the first group.
func estimateForm(in *estimateInput) *huh.Form {
	milestones := make([]huh.Option[string], 0)
	for _, m := range estimation.MilestoneNames() {
		milestones = append(milestones, huh.NewOption(m, m))
	}
	if in.Unit == "" {
		in.Unit = string(domain.UnitDays)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Milestone").
				Options(milestones...).
				Value(&in.Milestone),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Deliverable").
				OptionsFunc(func() []huh.Option[string] {
					opts := []huh.Option[string]{huh.NewOption("(none)", "")}
					for _, d := range estimation.Milestones[in.Milestone] {
						opts = append(opts, huh.NewOption(d, d))
					}
					return opts
				}, &in.Milestone).
				Value(&in.Deliverable),
			huh.NewInput().
				Title("Resources").
				Placeholder("1").
				Value(&in.Resources).
				Validate(validatePositiveNumber),
			huh.NewInput().
				Title("Duration").
				Placeholder("5").
				Value(&in.Duration).
				Validate(validatePositiveNumber),
			huh.NewSelect[string]().
				Title("Unit").
				Options(
					huh.NewOption("Days", string(domain.UnitDays)),
					huh.NewOption("Weeks", string(domain.UnitWeeks)),
					huh.NewOption("Months", string(domain.UnitMonths)),
				).
				Value(&in.Unit),
		),
	).WithTheme(pmoHuhTheme()).WithShowHelp(false)
}

// wizardConfirm creates a huh form for a yes/no confirmation.
func wizardConfirm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(pmoHuhTheme()).WithShowHelp(false)
}
