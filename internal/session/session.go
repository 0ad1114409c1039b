// Package session persists the editor's unsaved work between CLI
// invocations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/pmo/internal/db"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/logging"
	"github.com/alexanderramin/pmo/internal/repository"
	"github.com/google/uuid"
)

// DefaultName is the session name used when none is given.
const DefaultName = "default"

var ErrNoSession = errors.New("no editor session")

// Filters are the directory filters active when the session was saved.
type Filters struct {
	StrategicPortfolio string `json:"strategic_portfolio,omitempty"`
	ProductLine        string `json:"product_line,omitempty"`
	Search             string `json:"search,omitempty"`
}

// EditorSession is the serializable value carried between invocations.
type EditorSession struct {
	ID        uuid.UUID
	Key       string
	State     editor.State
	Filters   Filters
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key builds the storage key for a named session in a mode.
func Key(mode domain.EditorMode, name string) string {
	if name == "" {
		name = DefaultName
	}
	return string(mode) + ":" + name
}

// New starts an empty session for mode.
func New(mode domain.EditorMode, name string) *EditorSession {
	return &EditorSession{
		ID:    uuid.New(),
		Key:   Key(mode, name),
		State: editor.State{Mode: mode},
	}
}

// Mode returns the editor mode the session belongs to.
func (s *EditorSession) Mode() domain.EditorMode {
	if s.State.Mode != "" {
		return s.State.Mode
	}
	mode, _, _ := strings.Cut(s.Key, ":")
	return domain.EditorMode(mode)
}

// Capture copies the store's current state into the session.
func (s *EditorSession) Capture(store *editor.Store) {
	s.State = store.Snapshot()
}

// Apply restores the session's state into the store.
func (s *EditorSession) Apply(store *editor.Store) error {
	if err := store.Restore(s.State); err != nil {
		return fmt.Errorf("restoring session %s: %w", s.Key, err)
	}
	return nil
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logging.OrDiscard(logger) }
}

// Manager loads, saves and clears editor sessions.
type Manager struct {
	uow      db.UnitOfWork
	sessions repository.EditorSessionRepo
	logger   *slog.Logger
}

func NewManager(uow db.UnitOfWork, sessions repository.EditorSessionRepo, opts ...Option) *Manager {
	m := &Manager{uow: uow, sessions: sessions, logger: logging.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the session stored under key, or ErrNoSession.
func (m *Manager) Load(ctx context.Context, key string) (*EditorSession, error) {
	stored, err := m.sessions.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSession, key)
		}
		return nil, err
	}
	return decode(stored)
}

// Latest returns the most recently saved session called name, in either
// mode.
func (m *Manager) Latest(ctx context.Context, name string) (*EditorSession, error) {
	if name == "" {
		name = DefaultName
	}
	all, err := m.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, stored := range all {
		if strings.HasSuffix(stored.Key, ":"+name) {
			return decode(stored)
		}
	}
	return nil, ErrNoSession
}

// LoadOrNew returns the stored session for mode and name, or a fresh one.
func (m *Manager) LoadOrNew(ctx context.Context, mode domain.EditorMode, name string) (*EditorSession, error) {
	s, err := m.Load(ctx, Key(mode, name))
	if errors.Is(err, ErrNoSession) {
		return New(mode, name), nil
	}
	return s, err
}

func (m *Manager) Save(ctx context.Context, s *EditorSession) error {
	stored, err := encode(s)
	if err != nil {
		return err
	}
	if err := m.sessions.Upsert(ctx, stored); err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	m.logger.Debug("editor session saved", "key", s.Key, "pending", s.State.HasChanges())
	return nil
}

func (m *Manager) Clear(ctx context.Context, key string) error {
	if err := m.sessions.Delete(ctx, key); err != nil {
		return err
	}
	m.logger.Debug("editor session cleared", "key", key)
	return nil
}

func encode(s *EditorSession) (*domain.StoredSession, error) {
	payload, err := json.Marshal(s.State)
	if err != nil {
		return nil, fmt.Errorf("encoding session state: %w", err)
	}
	filters, err := json.Marshal(s.Filters)
	if err != nil {
		return nil, fmt.Errorf("encoding session filters: %w", err)
	}
	return &domain.StoredSession{
		Key:       s.Key,
		ID:        s.ID.String(),
		Mode:      s.Mode(),
		EntityID:  s.State.Selected,
		Payload:   payload,
		Filters:   filters,
		CreatedAt: s.CreatedAt,
	}, nil
}

func decode(stored *domain.StoredSession) (*EditorSession, error) {
	id, err := uuid.Parse(stored.ID)
	if err != nil {
		return nil, fmt.Errorf("session %s: invalid id: %w", stored.Key, err)
	}
	s := &EditorSession{
		ID:        id,
		Key:       stored.Key,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}
	if err := json.Unmarshal(stored.Payload, &s.State); err != nil {
		return nil, fmt.Errorf("session %s: decoding state: %w", stored.Key, err)
	}
	if len(stored.Filters) > 0 {
		if err := json.Unmarshal(stored.Filters, &s.Filters); err != nil {
			return nil, fmt.Errorf("session %s: decoding filters: %w", stored.Key, err)
		}
	}
	if s.State.Mode == "" {
		s.State.Mode = stored.Mode
	}
	return s, nil
}
