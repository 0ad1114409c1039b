package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// editorLoadedMsg reports the end of a LoadForEntity call.
type editorLoadedMsg struct{ err error }

// editorSavedMsg reports the end of a save.
type editorSavedMsg struct {
	result editor.SaveResult
	err    error
}

type editorKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Validate key.Binding
	Save     key.Binding
	Reload   key.Binding
	Search   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev field")),
		Right:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next field")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit field")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete/undo")),
		Validate: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "validate")),
		Save:     key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Delete, k.Save, k.Search, k.Help, k.Quit}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Edit, k.Delete, k.Validate},
		{k.Save, k.Reload, k.Search},
		{k.Help, k.Quit},
	}
}

// editorModel is the interactive allocation grid for one entity. Edits go
// straight into the shared editor store; the caller persists the session
// after the program exits.
type editorModel struct {
	ctx      context.Context
	app      *App
	sess     *session.EditorSession
	entityID int64

	rows   []domain.Allocation
	cursor int
	col    int

	input     textinput.Model
	editing   bool
	searching bool

	km   editorKeyMap
	help help.Model

	loading bool
	saving  bool
	status  string
	err     error
}

func newEditorModel(ctx context.Context, app *App, sess *session.EditorSession, entityID int64) *editorModel {
	ti := textinput.New()
	ti.CharLimit = 32
	m := &editorModel{
		ctx:      ctx,
		app:      app,
		sess:     sess,
		entityID: entityID,
		input:    ti,
		km:       defaultEditorKeyMap(),
		help:     help.New(),
	}
	if app.Editor.Selected() == entityID {
		m.refresh()
	} else {
		m.loading = true
	}
	return m
}

func (m *editorModel) Init() tea.Cmd {
	if m.loading {
		return m.load()
	}
	return nil
}

func (m *editorModel) load() tea.Cmd {
	store, ctx, id := m.app.Editor, m.ctx, m.entityID
	return func() tea.Msg {
		return editorLoadedMsg{err: store.LoadForEntity(ctx, id)}
	}
}

func (m *editorModel) save() tea.Cmd {
	store, ctx := m.app.Editor, m.ctx
	return func() tea.Msg {
		result, err := store.Save(ctx)
		return editorSavedMsg{result: result, err: err}
	}
}

// refresh re-reads the entity's allocations and applies the search filter.
func (m *editorModel) refresh() {
	search := strings.ToLower(m.sess.Filters.Search)
	mode := m.app.Editor.Mode()
	m.rows = m.rows[:0]
	for _, a := range m.app.Editor.Allocations(m.entityID) {
		if search != "" && !strings.Contains(strings.ToLower(formatter.Counterpart(mode, a)), search) {
			continue
		}
		m.rows = append(m.rows, a)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

func (m *editorModel) current() (domain.Allocation, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Allocation{}, false
	}
	return m.rows[m.cursor], true
}

func (m *editorModel) field() domain.AllocationField {
	return domain.EditableFields[m.col]
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case editorLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.status = "Loaded."
		}
		m.refresh()
		return m, nil

	case editorSavedMsg:
		m.saving = false
		m.refresh()
		var verr *editor.ValidationError
		switch {
		case errors.As(msg.err, &verr):
			m.err = nil
			m.status = fmt.Sprintf("Nothing sent: %d allocation(s) need attention.", len(verr.Problems))
		case msg.err != nil:
			m.err = msg.err
		default:
			m.err = nil
			m.status = formatter.FormatSaveResult(msg.result)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.editing:
			return m.updateEditing(msg)
		case m.searching:
			return m.updateSearching(msg)
		}
		return m.updateBrowsing(msg)
	}

	if m.editing || m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *editorModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading || m.saving {
		if key.Matches(msg, m.km.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.km.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.km.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.km.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.km.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.km.Right):
		if m.col < len(domain.EditableFields)-1 {
			m.col++
		}
	case key.Matches(msg, m.km.Edit):
		a, ok := m.current()
		if !ok || a.PendingDelete() {
			return m, nil
		}
		m.editing = true
		m.input.Prompt = string(m.field()) + ": "
		m.input.SetValue(a.Get(m.field()))
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.km.Delete):
		a, ok := m.current()
		if !ok {
			return m, nil
		}
		var err error
		if a.PendingDelete() {
			err = m.app.Editor.UndoDeletion(a.ID)
			m.status = fmt.Sprintf("Restored %d.", a.ID)
		} else {
			err = m.app.Editor.MarkForDeletion(a.ID)
			m.status = fmt.Sprintf("Marked %d for deletion.", a.ID)
		}
		m.err = err
		m.refresh()
	case key.Matches(msg, m.km.Validate):
		problems := m.app.Editor.Validate()
		m.err = nil
		if len(problems) == 0 {
			m.status = "All allocations are valid."
		} else {
			m.status = fmt.Sprintf("%d allocation(s) need attention.", len(problems))
		}
	case key.Matches(msg, m.km.Save):
		if !m.app.Editor.HasChanges() {
			m.status = "Nothing to save."
			return m, nil
		}
		m.saving = true
		m.status = "Saving..."
		return m, m.save()
	case key.Matches(msg, m.km.Reload):
		m.loading = true
		m.status = ""
		return m, m.load()
	case key.Matches(msg, m.km.Search):
		m.searching = true
		m.input.Prompt = "/"
		m.input.SetValue(m.sess.Filters.Search)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.km.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *editorModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		a, _ := m.current()
		m.editing = false
		m.input.Blur()
		if err := m.app.Editor.StageFieldChange(a.ID, m.field(), m.input.Value()); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Staged %s on %d.", m.field(), a.ID)
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *editorModel) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		m.sess.Filters.Search = ""
		m.refresh()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sess.Filters.Search = m.input.Value()
	m.refresh()
	return m, cmd
}

var (
	editorCursorStyle = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	editorCellStyle   = lipgloss.NewStyle().Reverse(true)
)

func (m *editorModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header(entityTitle(m.app, m.entityID)) + "\n")

	if m.loading {
		b.WriteString(formatter.Dim("Loading allocations...") + "\n")
		return b.String()
	}

	b.WriteString(m.grid())

	for _, line := range capacityLines(m.app, m.entityID) {
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.editing || m.searching:
		b.WriteString(m.input.View() + "\n")
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(m.status + "\n")
	}
	if m.sess.Filters.Search != "" && !m.searching {
		b.WriteString(formatter.Dim("filter: "+m.sess.Filters.Search) + "\n")
	}
	if m.app.Editor.HasChanges() {
		b.WriteString(formatter.StyleYellow.Render("unsaved changes") + "\n")
	}
	b.WriteString(m.help.View(m.km))
	return b.String()
}

func (m *editorModel) grid() string {
	if len(m.rows) == 0 {
		return formatter.Dim("No allocations.") + "\n"
	}
	mode := m.app.Editor.Mode()
	_, counterpart := formatter.ModeLabel(mode)
	changes, _ := m.app.Editor.Pending()
	problems := m.app.Editor.Validate()

	cells := make([][]string, 0, len(m.rows))
	for i, a := range m.rows {
		pointer := " "
		if i == m.cursor {
			pointer = editorCursorStyle.Render("▸")
		}
		row := []string{pointer, strconv.FormatInt(a.ID, 10), formatter.Truncate(formatter.Counterpart(mode, a), 28)}
		for c, f := range domain.EditableFields {
			text := formatter.OrDash(a.Get(f))
			if _, ok := changes[a.ID][f]; ok {
				text += formatter.StyleYellow.Render("*")
			}
			if i == m.cursor && c == m.col {
				text = editorCellStyle.Render(text)
			}
			row = append(row, text)
		}
		issue := ""
		if msg := problems[a.ID]; msg != "" {
			issue = formatter.StyleRed.Render("⚠ " + msg)
		}
		row = append(row, formatter.StateBadge(a.State), issue)
		cells = append(cells, row)
	}
	headers := []string{"", "ID", counterpart, "Start", "End", "Pct", "Hrs/wk", "State", "Issue"}
	return formatter.RenderTable(headers, cells, formatter.AlignRight(1, 5, 6))
}
