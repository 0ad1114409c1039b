package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/pmo/internal/cli/formatter"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/importer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newAllocCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc",
		Short: "Edit allocations of a resource or project",
		Long: `Edits are staged locally and survive between invocations until they are
saved with "pmo alloc save" or dropped with "pmo alloc discard".`,
	}

	cmd.AddCommand(
		newAllocShowCmd(app),
		newAllocAddCmd(app),
		newAllocSetCmd(app),
		newAllocRemoveCmd(app),
		newAllocUndoCmd(app),
		newAllocCancelCmd(app),
		newAllocPendingCmd(app),
		newAllocValidateCmd(app),
		newAllocSaveCmd(app),
		newAllocDiscardCmd(app),
		newAllocHistoryCmd(app),
		newAllocImportCmd(app),
		newAllocEditCmd(app),
	)

	return cmd
}

func newAllocShowCmd(app *App) *cobra.Command {
	var entity entityFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Load and show an entity's allocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode, id, err := entity.resolve()
			if err != nil {
				return err
			}
			sess, err := openEditor(ctx, app, mode)
			if err != nil {
				return err
			}
			if id, err = selectedEntity(app, id); err != nil {
				return err
			}
			if err := app.Editor.LoadForEntity(ctx, id); err != nil {
				return err
			}
			if err := persistEditor(ctx, app, sess); err != nil {
				return err
			}
			printEntity(cmd.OutOrStdout(), app, id)
			return nil
		},
	}
	entity.register(cmd.Flags())

	return cmd
}

func newAllocAddCmd(app *App) *cobra.Command {
	var (
		entity     entityFlags
		to         idList
		start, end dateFlag
		pct, hrs   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Stage new allocations against one or more counterparts",
		Example: `  pmo alloc add --resource 42 --to 5,7 --start 2025-01-01 --end 2025-06-30 --pct 50
  pmo alloc add --project 7 --to 42 --hrs 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode, id, err := entity.resolve()
			if err != nil {
				return err
			}
			sess, err := openEditor(ctx, app, mode)
			if err != nil {
				return err
			}
			if id, err = selectedEntity(app, id); err != nil {
				return err
			}
			if err := ensureSelected(ctx, app, id); err != nil {
				return err
			}

			added, err := app.Editor.AddNew(id, to, editor.Template{
				StartDate:  string(start),
				EndDate:    string(end),
				Pct:        pct,
				HrsPerWeek: hrs,
			})
			if err != nil {
				return err
			}
			if err := persistEditor(ctx, app, sess); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			ids := make([]string, len(added))
			for i, a := range added {
				ids[i] = fmt.Sprintf("%d", a.ID)
			}
			fmt.Fprintf(w, "Staged %d new allocation(s): %s\n\n", len(added), strings.Join(ids, ", "))
			printEntity(w, app, id)
			return nil
		},
	}
	entity.register(cmd.Flags())
	cmd.Flags().Var(&to, "to", "Counterpart IDs: projects in resource mode, resources in project mode")
	cmd.Flags().Var(&start, "start", "Start date (YYYY-MM-DD)")
	cmd.Flags().Var(&end, "end", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&pct, "pct", "", "Allocation percentage")
	cmd.Flags().StringVar(&hrs, "hrs", "", "Hours per week")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newAllocSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set IDS FIELD VALUE",
		Short: "Stage a field change on one or more allocations",
		Long: `Fields: start, end, pct, hrs. IDS is comma-separated; several ids are
updated all-or-nothing. An empty VALUE clears the field.`,
		Example: `  pmo alloc set 12 pct 80
  pmo alloc set 12,13 end 2025-09-30`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids, err := parseIDs(args[0])
			if err != nil {
				return err
			}
			field, err := domain.ParseAllocationField(args[1])
			if err != nil {
				return err
			}
			sess, err := openEditor(ctx, app, "")
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				err = app.Editor.StageFieldChange(ids[0], field, args[2])
			} else {
				err = app.Editor.BulkUpdate(ids, field, args[2])
			}
			if err != nil {
				return err
			}
			if err := persistEditor(ctx, app, sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Staged %s = %q on %d allocation(s)\n", field, args[2], len(ids))
			return nil
		},
	}
}

func newAllocRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm IDS...",
		Aliases: []string{"remove"},
		Short:   "Mark allocations for deletion (unsaved ones are dropped)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateEach(cmd, app, args, func(id int64) (string, error) {
				if id < 0 {
					return fmt.Sprintf("Dropped unsaved allocation %d", id), app.Editor.MarkForDeletion(id)
				}
				return fmt.Sprintf("Marked allocation %d for deletion", id), app.Editor.MarkForDeletion(id)
			})
		},
	}
}

func newAllocUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo IDS...",
		Short: "Restore allocations marked for deletion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateEach(cmd, app, args, func(id int64) (string, error) {
				return fmt.Sprintf("Restored allocation %d", id), app.Editor.UndoDeletion(id)
			})
		},
	}
}

// mutateEach applies fn to every id in args, stopping at the first error.
// The session is persisted either way so earlier successes are kept.
func mutateEach(cmd *cobra.Command, app *App, args []string, fn func(int64) (string, error)) error {
	ctx := cmd.Context()
	ids, err := parseArgIDs(args)
	if err != nil {
		return err
	}
	sess, err := openEditor(ctx, app, "")
	if err != nil {
		return err
	}

	var firstErr error
	for _, id := range ids {
		msg, err := fn(id)
		if err != nil {
			firstErr = err
			break
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	if err := persistEditor(ctx, app, sess); err != nil {
		return err
	}
	return firstErr
}

func newAllocCancelCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "cancel [IDS...]",
		Short: "Drop unsaved allocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				sess, err := openEditor(cmd.Context(), app, "")
				if err != nil {
					return err
				}
				n := app.Editor.CancelAllNew()
				if err := persistEditor(cmd.Context(), app, sess); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d unsaved allocation(s)\n", n)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("pass allocation ids or --all")
			}
			return mutateEach(cmd, app, args, func(id int64) (string, error) {
				return fmt.Sprintf("Dropped unsaved allocation %d", id), app.Editor.CancelNew(id)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Drop every unsaved allocation")

	return cmd
}

func newAllocPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List staged creates, updates and deletes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openEditor(cmd.Context(), app, ""); err != nil {
				return err
			}
			changes, deletions := app.Editor.Pending()
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPending(changes, deletions, app.Editor.Allocation))
			return nil
		},
	}
}

func newAllocValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check staged allocations without saving",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openEditor(cmd.Context(), app, ""); err != nil {
				return err
			}
			problems := app.Editor.Validate()
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProblems(problems))
			if len(problems) > 0 {
				return fmt.Errorf("%d allocation(s) need attention", len(problems))
			}
			return nil
		},
	}
}

func newAllocSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Send staged changes to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := openEditor(ctx, app, "")
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			result, saveErr := app.Editor.Save(ctx)

			var verr *editor.ValidationError
			if errors.As(saveErr, &verr) {
				fmt.Fprintln(w, formatter.FormatProblems(verr.Problems))
				return fmt.Errorf("nothing was sent: %d allocation(s) need attention", len(verr.Problems))
			}
			// Keeps the selection after a clean save and the pending edits
			// after a failed one.
			if err := persistEditor(ctx, app, sess); err != nil {
				return errors.Join(saveErr, err)
			}
			if saveErr != nil {
				return saveErr
			}

			fmt.Fprintln(w, formatter.FormatSaveResult(result))
			if id := app.Editor.Selected(); id > 0 {
				fmt.Fprintln(w)
				printEntity(w, app, id)
			}
			return nil
		},
	}
}

func newAllocDiscardCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Drop every staged change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := openEditor(ctx, app, "")
			if err != nil {
				return err
			}
			if app.IsInteractive && !yes && app.Editor.HasChanges() {
				confirmed := false
				if err := wizardConfirm("Discard all staged allocation changes?", &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Kept staged changes.")
					return nil
				}
			}
			app.Editor.Discard()
			if err := app.Sessions.Clear(ctx, sess.Key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Discarded staged changes.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newAllocHistoryCmd(app *App) *cobra.Command {
	var (
		entity entityFlags
		limit  int
		prune  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent saves recorded on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, id, err := entity.resolve()
			if err != nil {
				return err
			}
			if prune > 0 {
				n, err := app.SaveLog.DeleteBefore(cmd.Context(), app.now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d save(s) older than %s.\n", n, prune)
			}
			var records []*domain.SaveRecord
			if mode != "" {
				records, err = app.SaveLog.ListByEntity(cmd.Context(), mode, id)
				if len(records) > limit {
					records = records[:limit]
				}
			} else {
				records, err = app.SaveLog.ListRecent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSaveLog(records, app.now()))
			return nil
		},
	}
	entity.register(cmd.Flags())
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete entries older than this first (e.g. 720h)")

	return cmd
}

func newAllocImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Stage allocations from a YAML or JSON plan file",
		Long: `The plan names a mode and entity and lists rows to add (counterpart_id),
update (id plus fields) or delete (id plus delete: true). Every row is
staged or none is; nothing is sent until "pmo alloc save".`,
		Example: `  pmo alloc import q2-plan.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			plan, err := importer.LoadPlanFile(args[0])
			if err != nil {
				return err
			}
			if errs := importer.ValidatePlan(plan); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(w, "  %s %v\n", formatter.StyleRed.Render("⚠"), e)
				}
				return fmt.Errorf("plan has %d problem(s); nothing was staged", len(errs))
			}

			mode, err := domain.ParseEditorMode(plan.Mode)
			if err != nil {
				return err
			}
			sess, err := openEditor(ctx, app, mode)
			if err != nil {
				return err
			}
			if err := ensureSelected(ctx, app, plan.EntityID); err != nil {
				return err
			}
			sum, err := importer.Stage(app.Editor, plan)
			if err != nil {
				return err
			}
			if err := persistEditor(ctx, app, sess); err != nil {
				return err
			}

			fmt.Fprintf(w, "Staged %d new, %d updated and %d deleted allocation(s) from %s\n\n",
				len(sum.Added), sum.Updated, sum.Deleted, args[0])
			printEntity(w, app, plan.EntityID)
			return nil
		},
	}
}

func newAllocEditCmd(app *App) *cobra.Command {
	var entity entityFlags

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit allocations interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsInteractive {
				return fmt.Errorf("alloc edit needs an interactive terminal; use the other alloc commands instead")
			}
			ctx := cmd.Context()
			mode, id, err := entity.resolve()
			if err != nil {
				return err
			}
			sess, err := openEditor(ctx, app, mode)
			if err != nil {
				return err
			}
			if id, err = selectedEntity(app, id); err != nil {
				return err
			}

			model := newEditorModel(ctx, app, sess, id)
			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return err
			}
			return persistEditor(ctx, app, sess)
		},
	}
	entity.register(cmd.Flags())

	return cmd
}
