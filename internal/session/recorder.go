package session

import (
	"context"
	"fmt"

	"github.com/alexanderramin/pmo/internal/db"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/repository"
	"github.com/google/uuid"
)

// Recorder returns an editor observer that writes every save attempt to
// the save log. A successful save also clears s, in the same transaction.
func (m *Manager) Recorder(s *EditorSession) editor.Observer {
	return &saveRecorder{manager: m, session: s}
}

type saveRecorder struct {
	manager *Manager
	session *EditorSession
}

func (r *saveRecorder) ObserveSave(ctx context.Context, event editor.SaveEvent) {
	rec := &domain.SaveRecord{
		ID:        uuid.NewString(),
		SessionID: r.session.ID.String(),
		Mode:      event.Mode,
		EntityID:  event.EntityID,
		Creates:   event.Result.Creates,
		Updates:   event.Result.Updates,
		Deletes:   event.Result.Deletes,
		Success:   event.Err == nil,
	}
	if event.Err != nil {
		rec.Error = event.Err.Error()
	}

	err := r.manager.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteSaveLogRepo(tx).Create(ctx, rec); err != nil {
			return err
		}
		if rec.Success {
			if err := repository.NewSQLiteEditorSessionRepo(tx).Delete(ctx, r.session.Key); err != nil {
				return fmt.Errorf("clearing session after save: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.manager.logger.Warn("recording save failed", "session", r.session.Key, "error", err)
	}
}
