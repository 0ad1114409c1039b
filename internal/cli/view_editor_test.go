package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openEditorDriver opens Dana's allocations in the interactive grid. HTTP
// round trips to the fake server finish well inside the timeout while the
// cursor blink does not.
func openEditorDriver(t *testing.T) (*teatest.Driver, *App, *fakeAPI) {
	t.Helper()
	app, fake := testApp(t)
	app.SessionName = "default"
	ctx := context.Background()

	sess, err := openEditor(ctx, app, domain.ModeResource)
	require.NoError(t, err)

	d := teatest.New(t, newEditorModel(ctx, app, sess, 42),
		teatest.WithCmdTimeout(250*time.Millisecond),
		teatest.WithSize(120, 40))
	d.DrainInit()
	return d, app, fake
}

func editorState(d *teatest.Driver) *editorModel {
	return d.Model.(*editorModel)
}

func TestEditorModel_LoadsEntity(t *testing.T) {
	d, _, _ := openEditorDriver(t)

	d.ViewContains("RESOURCE 42 · DANA", "Atlas", "Compass", "capacity 37.5h/wk")
	assert.False(t, editorState(d).loading)
	assert.Len(t, editorState(d).rows, 2)
}

func TestEditorModel_ProjectModeShowsResourceCapacity(t *testing.T) {
	app, _ := testApp(t)
	app.SessionName = "default"
	ctx := context.Background()
	sess, err := openEditor(ctx, app, domain.ModeProject)
	require.NoError(t, err)

	d := teatest.New(t, newEditorModel(ctx, app, sess, 7),
		teatest.WithCmdTimeout(250*time.Millisecond),
		teatest.WithSize(120, 40))
	d.DrainInit()

	d.ViewContains("PROJECT 7 · ATLAS", "Dana", "capacity 37.5h/wk · allocated 20h", "Eli", "capacity 40h/wk")
}

func TestEditorModel_EditField(t *testing.T) {
	d, app, _ := openEditorDriver(t)

	d.Press("down", "right", "right", "right", "enter")
	m := editorState(d)
	require.True(t, m.editing)
	assert.Equal(t, "10", m.input.Value())

	d.Press("backspace", "backspace", "15", "enter")

	assert.False(t, editorState(d).editing)
	d.ViewContains("Staged allocation_hrs_per_week on 2.", "unsaved changes", "available 2.5h")
	changes, _ := app.Editor.Pending()
	assert.Equal(t, "15", changes[2][domain.FieldHrsPerWeek])
}

func TestEditorModel_EscCancelsEdit(t *testing.T) {
	d, app, _ := openEditorDriver(t)

	d.Press("enter", "2026-01-01", "esc")

	assert.False(t, editorState(d).editing)
	assert.False(t, app.Editor.HasChanges())
}

func TestEditorModel_DeleteToggles(t *testing.T) {
	d, app, _ := openEditorDriver(t)

	d.Press("d")
	d.ViewContains("Marked 1 for deletion.", "✖ delete")
	_, deletions := app.Editor.Pending()
	assert.Equal(t, []int64{1}, deletions)

	d.Press("d")
	d.ViewContains("Restored 1.")
	assert.False(t, app.Editor.HasChanges())
}

func TestEditorModel_Save(t *testing.T) {
	d, _, fake := openEditorDriver(t)

	d.Press("s")
	d.ViewContains("Nothing to save.")

	d.Press("enter")
	m := editorState(d)
	m.input.SetValue("2025-02-03")
	d.Press("enter", "s")

	d.ViewContains("Saved.", "0 created, 1 updated, 0 deleted")
	saved, ok := fake.allocation(1)
	require.True(t, ok)
	assert.Equal(t, "2025-02-03", saved.StartDate)
}

func TestEditorModel_SaveBlockedByValidation(t *testing.T) {
	d, _, fake := openEditorDriver(t)

	d.Press("enter")
	editorState(d).input.SetValue("")
	d.Press("enter", "v")
	d.ViewContains("1 allocation(s) need attention.", domain.MsgMissingDates)

	d.Press("s")
	d.ViewContains("Nothing sent: 1 allocation(s) need attention.")
	assert.Zero(t, fake.posts)
}

func TestEditorModel_Search(t *testing.T) {
	d, _, _ := openEditorDriver(t)

	d.Press("/", "comp")
	m := editorState(d)
	assert.Len(t, m.rows, 1)
	assert.Equal(t, "comp", m.sess.Filters.Search)

	d.Press("enter")
	d.ViewContains("Compass", "filter: comp")
	assert.NotContains(t, d.View(), "Atlas")

	d.Press("/", "esc")
	assert.Len(t, editorState(d).rows, 2)
	assert.Empty(t, editorState(d).sess.Filters.Search)
}

func TestEditorModel_Reload(t *testing.T) {
	d, _, _ := openEditorDriver(t)

	d.Press("r")

	assert.False(t, editorState(d).loading)
	d.ViewContains("Loaded.")
}

func TestEditorModel_Quit(t *testing.T) {
	d, _, _ := openEditorDriver(t)

	d.Press("q")

	assert.True(t, d.Quitting)
}
