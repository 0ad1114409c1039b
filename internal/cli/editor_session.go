package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/session"
	"golang.org/x/sync/errgroup"
)

var errNoOpenEditor = errors.New("no allocation editor open; run `pmo alloc show --resource ID` or `--project ID` first")

// openEditor restores the saved session for mode into the editor, or the
// most recently used session of that name when mode is empty, and refreshes the
// directory used for display names and capacity.
func openEditor(ctx context.Context, app *App, mode domain.EditorMode) (*session.EditorSession, error) {
	var (
		sess *session.EditorSession
		err  error
	)
	if mode == "" {
		sess, err = app.Sessions.Latest(ctx, app.SessionName)
		if errors.Is(err, session.ErrNoSession) {
			return nil, errNoOpenEditor
		}
	} else {
		sess, err = app.Sessions.LoadOrNew(ctx, mode, app.SessionName)
	}
	if err != nil {
		return nil, err
	}

	if err := sess.Apply(app.Editor); err != nil {
		return nil, err
	}
	refreshDirectory(ctx, app)
	app.Editor.SetObserver(editor.Observers{
		editor.NewLogObserver(app.logger()),
		app.Sessions.Recorder(sess),
	})
	return sess, nil
}

// refreshDirectory loads projects and resources into the editor. A failed
// fetch leaves that half of the directory empty and is only logged.
func refreshDirectory(ctx context.Context, app *App) {
	var (
		projects  []domain.Project
		resources []domain.Resource
		g         errgroup.Group
	)
	g.Go(func() error {
		var err error
		if projects, err = app.Directory.ListProjects(ctx); err != nil {
			app.logger().Warn("project directory unavailable", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if resources, err = app.Directory.ListResources(ctx); err != nil {
			app.logger().Warn("resource directory unavailable", "error", err)
		}
		return nil
	})
	_ = g.Wait()
	app.Editor.SetDirectory(projects, resources)
}

// persistEditor writes the editor state back to the session. A session with
// nothing pending and nothing selected is cleared instead.
func persistEditor(ctx context.Context, app *App, sess *session.EditorSession) error {
	sess.Capture(app.Editor)
	if !sess.State.HasChanges() && sess.State.Selected == 0 {
		return app.Sessions.Clear(ctx, sess.Key)
	}
	return app.Sessions.Save(ctx, sess)
}

// selectedEntity returns id when set, else the editor's current selection.
func selectedEntity(app *App, id int64) (int64, error) {
	if id > 0 {
		return id, nil
	}
	if sel := app.Editor.Selected(); sel > 0 {
		return sel, nil
	}
	return 0, fmt.Errorf("%w: pass --resource or --project", editor.ErrNoEntity)
}

// ensureSelected loads entityID unless it is already the selected entity.
func ensureSelected(ctx context.Context, app *App, entityID int64) error {
	if app.Editor.Selected() == entityID {
		return nil
	}
	return app.Editor.LoadForEntity(ctx, entityID)
}

// entityTitle names the selected entity using the directory.
func entityTitle(app *App, entityID int64) string {
	mode := app.Editor.Mode()
	label, _ := formatter.ModeLabel(mode)
	name := ""
	if mode == domain.ModeProject {
		if p, ok := app.Editor.Project(entityID); ok {
			name = p.Name
		}
	} else if r, ok := app.Editor.Resource(entityID); ok {
		name = r.Name
	}
	if name == "" {
		return fmt.Sprintf("%s %d", label, entityID)
	}
	return fmt.Sprintf("%s %d · %s", label, entityID, name)
}

// printEntity writes the entity's allocations, pending markers, problems
// and the capacity of the resources involved.
func printEntity(w io.Writer, app *App, entityID int64) {
	changes, _ := app.Editor.Pending()
	fmt.Fprintln(w, formatter.Header(entityTitle(app, entityID)))
	fmt.Fprintln(w, formatter.FormatAllocations(formatter.AllocationTable{
		Mode:        app.Editor.Mode(),
		Allocations: app.Editor.Allocations(entityID),
		Changes:     changes,
		Problems:    app.Editor.Validate(),
	}))
	for _, line := range capacityLines(app, entityID) {
		fmt.Fprintln(w, line)
	}
}

// capacityLines summarizes capacity for the entity in resource mode, and
// for every resource on the entity in project mode. Hours staged on other
// loaded projects count toward each resource.
func capacityLines(app *App, entityID int64) []string {
	if app.Editor.Mode() == domain.ModeResource {
		s, err := app.Editor.Capacity(entityID)
		if err != nil {
			return nil
		}
		return []string{formatter.CapacityLine(s)}
	}

	var lines []string
	seen := make(map[int64]bool)
	for _, a := range app.Editor.Allocations(entityID) {
		if seen[a.ResourceID] {
			continue
		}
		seen[a.ResourceID] = true
		s, err := app.Editor.Capacity(a.ResourceID)
		if err != nil {
			continue
		}
		name := domain.CoalesceStr(a.ResourceName, fmt.Sprintf("resource #%d", a.ResourceID))
		lines = append(lines, formatter.Bold(name)+"  "+formatter.CapacityLine(s))
	}
	return lines
}
