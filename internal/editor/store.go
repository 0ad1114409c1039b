// Package editor holds the in-memory allocation edit state for one mode
// (resource or project) and reconciles it with the server on save.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/capacity"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/logging"
)

// Backend is the subset of the REST client the store depends on.
type Backend interface {
	AllocationsForResource(ctx context.Context, resourceID int64) ([]domain.Allocation, error)
	AllocationsForProjects(ctx context.Context, projectIDs ...int64) ([]domain.Allocation, error)
	Allocate(ctx context.Context, batch []api.AllocationPayload) error
	DeleteAllocation(ctx context.Context, allocationID int64) error
}

// Template holds the initial field values for AddNew. Empty fields stay unset.
type Template struct {
	StartDate  string
	EndDate    string
	Pct        string
	HrsPerWeek string
}

func (t Template) changes() domain.Changes {
	return domain.Changes{
		domain.FieldStartDate:  t.StartDate,
		domain.FieldEndDate:    t.EndDate,
		domain.FieldPct:        t.Pct,
		domain.FieldHrsPerWeek: t.HrsPerWeek,
	}
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logging.OrDiscard(logger) }
}

func WithObserver(observer Observer) Option {
	return func(s *Store) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithClock overrides the time source used for placeholder ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	mode      domain.EditorMode
	projects  map[int64]domain.Project
	resources map[int64]domain.Resource

	entities  map[int64][]*domain.Allocation
	baseline  map[int64]domain.Allocation
	changes   map[int64]domain.Changes
	deletions []int64
	selected  int64
	saving    bool

	generation uint64
	cancelLoad context.CancelFunc
}

func NewStore(backend Backend, mode domain.EditorMode, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		logger:    logging.Discard(),
		observer:  NoopObserver{},
		now:       time.Now,
		mode:      mode,
		projects:  make(map[int64]domain.Project),
		resources: make(map[int64]domain.Resource),
	}
	s.resetLocked()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) resetLocked() {
	s.entities = make(map[int64][]*domain.Allocation)
	s.baseline = make(map[int64]domain.Allocation)
	s.changes = make(map[int64]domain.Changes)
	s.deletions = nil
	s.selected = 0
}

func (s *Store) Mode() domain.EditorMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the anchor side. Switching drops all loaded and pending
// state and invalidates in-flight loads.
func (s *Store) SetMode(mode domain.EditorMode) error {
	if _, err := domain.ParseEditorMode(string(mode)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}
	if mode == s.mode {
		return nil
	}
	s.invalidateLoadLocked()
	s.mode = mode
	s.resetLocked()
	return nil
}

// SetObserver replaces the save observer. A nil observer disables notification.
func (s *Store) SetObserver(observer Observer) {
	if observer == nil {
		observer = NoopObserver{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// SetDirectory provides the project and resource lists used to enrich
// allocations with display fields and to compute capacity.
func (s *Store) SetDirectory(projects []domain.Project, resources []domain.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make(map[int64]domain.Project, len(projects))
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	s.resources = make(map[int64]domain.Resource, len(resources))
	for _, r := range resources {
		s.resources[r.ID] = r
	}
	for _, list := range s.entities {
		for _, a := range list {
			s.enrichLocked(a)
		}
	}
}

// Resource looks up a resource in the directory.
func (s *Store) Resource(id int64) (domain.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	return r, ok
}

// Project looks up a project in the directory.
func (s *Store) Project(id int64) (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	return p, ok
}

// Selected returns the entity most recently passed to LoadForEntity, or 0.
func (s *Store) Selected() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// LoadForEntity fetches the entity's allocations and replaces the in-memory
// list for it. Staged edits and deletions are re-applied to the fresh
// records and unsaved allocations of the entity are kept. Pending state of
// rows the server no longer returns is dropped. If another load
// starts before this one finishes, this one returns ErrStaleResponse and
// leaves the store untouched.
func (s *Store) LoadForEntity(ctx context.Context, entityID int64) error {
	if entityID <= 0 {
		return fmt.Errorf("%w: invalid id %d", ErrNoEntity, entityID)
	}

	s.mu.Lock()
	s.invalidateLoadLocked()
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	gen := s.generation
	mode := s.mode
	s.selected = entityID
	s.mu.Unlock()
	defer cancel()

	var (
		fetched []domain.Allocation
		err     error
	)
	if mode == domain.ModeProject {
		fetched, err = s.backend.AllocationsForProjects(loadCtx, entityID)
	} else {
		fetched, err = s.backend.AllocationsForResource(loadCtx, entityID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.selected != entityID || s.mode != mode {
		s.logger.Debug("discarding stale allocation response", "mode", mode, "entity_id", entityID)
		return ErrStaleResponse
	}
	s.cancelLoad = nil
	if err != nil {
		return fmt.Errorf("loading allocations for %s %d: %w", mode, entityID, err)
	}
	s.applyLoadedLocked(entityID, fetched)
	s.logger.Debug("allocations loaded", "mode", mode, "entity_id", entityID, "count", len(fetched))
	return nil
}

func (s *Store) invalidateLoadLocked() {
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.generation++
}

func (s *Store) applyLoadedLocked(entityID int64, fetched []domain.Allocation) {
	list := make([]*domain.Allocation, 0, len(fetched))
	for _, f := range fetched {
		if f.ID <= 0 {
			continue
		}
		a := f.Clone()
		a.State = domain.StatePersisted
		s.enrichLocked(&a)
		s.baseline[a.ID] = a.Clone()

		if ch, ok := s.changes[a.ID]; ok {
			if err := ch.ApplyTo(&a); err != nil {
				s.logger.Warn("dropping unappliable staged change", "allocation_id", a.ID, "error", err)
				delete(s.changes, a.ID)
			}
		}
		if s.isDeletionLocked(a.ID) {
			a.State = domain.StatePendingDelete
		}
		list = append(list, &a)
	}
	var vanished []int64
	for _, old := range s.entities[entityID] {
		if old.IsNew() {
			list = append(list, old)
			continue
		}
		if _, ok := s.baseline[old.ID]; ok && !containsID(fetched, old.ID) {
			vanished = append(vanished, old.ID)
		}
	}
	s.entities[entityID] = list

	// Rows gone from the server take their pending state with them.
	for _, id := range vanished {
		if a, _, _ := s.findLocked(id); a != nil {
			continue
		}
		if _, staged := s.changes[id]; staged || s.isDeletionLocked(id) {
			s.logger.Warn("allocation no longer on server, dropping its pending state",
				"entity_id", entityID, "allocation_id", id)
		}
		delete(s.changes, id)
		delete(s.baseline, id)
		s.deletions = removeID(s.deletions, id)
	}
}

func containsID(allocs []domain.Allocation, id int64) bool {
	for _, a := range allocs {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) enrichLocked(a *domain.Allocation) {
	if p, ok := s.projects[a.ProjectID]; ok {
		a.ProjectName = domain.CoalesceStr(p.Name, a.ProjectName)
		a.StrategicPortfolio = domain.CoalesceStr(p.StrategicPortfolio, a.StrategicPortfolio)
		a.ProductLine = domain.CoalesceStr(p.ProductLine, a.ProductLine)
	}
	if r, ok := s.resources[a.ResourceID]; ok {
		a.ResourceName = domain.CoalesceStr(r.Name, a.ResourceName)
		a.ResourceEmail = domain.CoalesceStr(r.Email, a.ResourceEmail)
		a.ResourceRole = domain.CoalesceStr(r.Role, a.ResourceRole)
	}
}

// Allocations returns copies of the entity's allocations in display order.
func (s *Store) Allocations(entityID int64) []domain.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entities[entityID]
	out := make([]domain.Allocation, 0, len(list))
	for _, a := range list {
		out = append(out, a.Clone())
	}
	return out
}

// AllAllocations returns copies of every loaded allocation across entities,
// ordered by entity id.
func (s *Store) AllAllocations() []domain.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allLocked()
}

func (s *Store) allLocked() []domain.Allocation {
	var out []domain.Allocation
	for _, id := range s.entityIDsLocked() {
		for _, a := range s.entities[id] {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (s *Store) entityIDsLocked() []int64 {
	ids := make([]int64, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Allocation returns a copy of one loaded allocation.
func (s *Store) Allocation(id int64) (domain.Allocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, _, _ := s.findLocked(id)
	if a == nil {
		return domain.Allocation{}, false
	}
	return a.Clone(), true
}

func (s *Store) findLocked(id int64) (*domain.Allocation, int64, int) {
	for entityID, list := range s.entities {
		for i, a := range list {
			if a.ID == id {
				return a, entityID, i
			}
		}
	}
	return nil, 0, -1
}

func (s *Store) isDeletionLocked(id int64) bool {
	for _, d := range s.deletions {
		if d == id {
			return true
		}
	}
	return false
}

// StageFieldChange edits one field in memory and records it as pending.
// Setting a persisted field back to its loaded value drops the pending entry.
func (s *Store) StageFieldChange(id int64, field domain.AllocationField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}
	return s.stageLocked(id, field, value)
}

func (s *Store) stageLocked(id int64, field domain.AllocationField, value string) error {
	a, _, _ := s.findLocked(id)
	if a == nil {
		return fmt.Errorf("%w: %d", ErrUnknownAllocation, id)
	}
	if a.PendingDelete() {
		return fmt.Errorf("%w: %d", ErrPendingDelete, id)
	}
	if err := a.Set(field, value); err != nil {
		return err
	}

	ch := s.changes[id]
	if ch == nil {
		ch = make(domain.Changes)
		s.changes[id] = ch
	}
	ch[field] = a.Get(field)

	if base, ok := s.baseline[id]; ok && !a.IsNew() && base.Get(field) == ch[field] {
		delete(ch, field)
		if len(ch) == 0 {
			delete(s.changes, id)
		}
	}
	return nil
}

// BulkUpdate stages the same change on several allocations. Nothing is
// staged unless every id is known and editable.
func (s *Store) BulkUpdate(ids []int64, field domain.AllocationField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}
	for _, id := range ids {
		a, _, _ := s.findLocked(id)
		if a == nil {
			return fmt.Errorf("%w: %d", ErrUnknownAllocation, id)
		}
		if a.PendingDelete() {
			return fmt.Errorf("%w: %d", ErrPendingDelete, id)
		}
		trial := a.Clone()
		if err := trial.Set(field, value); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if err := s.stageLocked(id, field, value); err != nil {
			return err
		}
	}
	return nil
}

// AddNew creates one unsaved allocation per counterpart (a project in
// resource mode, a resource in project mode) under the entity.
func (s *Store) AddNew(entityID int64, counterpartIDs []int64, tmpl Template) ([]domain.Allocation, error) {
	if entityID <= 0 {
		return nil, fmt.Errorf("%w: invalid id %d", ErrNoEntity, entityID)
	}
	initial := tmpl.changes()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return nil, ErrSaveInProgress
	}

	created := make([]*domain.Allocation, 0, len(counterpartIDs))
	for _, cid := range counterpartIDs {
		projectID, resourceID := cid, entityID
		if s.mode == domain.ModeProject {
			projectID, resourceID = entityID, cid
		}
		a, err := domain.NewAllocation(s.placeholderIDLocked(cid, created), projectID, resourceID, domain.StateNew)
		if err != nil {
			return nil, err
		}
		if err := initial.ApplyTo(a); err != nil {
			return nil, err
		}
		s.enrichLocked(a)
		created = append(created, a)
	}

	out := make([]domain.Allocation, 0, len(created))
	for _, a := range created {
		s.entities[entityID] = append(s.entities[entityID], a)
		s.changes[a.ID] = initial.Clone()
		out = append(out, a.Clone())
	}
	return out, nil
}

// placeholderIDLocked derives a negative id from the clock and the
// counterpart id, stepping down until it is unused.
func (s *Store) placeholderIDLocked(counterpartID int64, pending []*domain.Allocation) int64 {
	id := -(s.now().UnixMilli() + counterpartID)
	for {
		taken := false
		if a, _, _ := s.findLocked(id); a != nil {
			taken = true
		}
		for _, p := range pending {
			if p.ID == id {
				taken = true
			}
		}
		if !taken {
			return id
		}
		id--
	}
}

// MarkForDeletion soft-deletes a persisted allocation or drops an unsaved
// one outright. Repeating the call is a no-op.
func (s *Store) MarkForDeletion(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}

	a, entityID, idx := s.findLocked(id)
	if a == nil {
		if id < 0 {
			return nil
		}
		return fmt.Errorf("%w: %d", ErrUnknownAllocation, id)
	}
	if a.IsNew() {
		s.removeLocked(entityID, idx)
		delete(s.changes, id)
		return nil
	}
	if a.PendingDelete() {
		return nil
	}
	a.State = domain.StatePendingDelete
	s.deletions = append(s.deletions, id)
	return nil
}

// UndoDeletion restores an allocation marked for deletion.
func (s *Store) UndoDeletion(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}

	a, _, _ := s.findLocked(id)
	if a == nil {
		return fmt.Errorf("%w: %d", ErrUnknownAllocation, id)
	}
	if !a.PendingDelete() {
		return nil
	}
	a.State = domain.StatePersisted
	s.deletions = removeID(s.deletions, id)
	return nil
}

// CancelNew drops one unsaved allocation.
func (s *Store) CancelNew(id int64) error {
	if id >= 0 {
		return fmt.Errorf("%w: %d is not an unsaved allocation", ErrUnknownAllocation, id)
	}
	return s.MarkForDeletion(id)
}

// CancelAllNew drops every unsaved allocation and returns how many were dropped.
func (s *Store) CancelAllNew() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return 0
	}
	return s.dropNewLocked()
}

func (s *Store) dropNewLocked() int {
	dropped := 0
	for entityID, list := range s.entities {
		kept := list[:0]
		for _, a := range list {
			if a.IsNew() {
				delete(s.changes, a.ID)
				dropped++
				continue
			}
			kept = append(kept, a)
		}
		s.entities[entityID] = kept
	}
	return dropped
}

// Discard reverts every loaded allocation to its last loaded server state
// and clears all pending state.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return
	}
	s.dropNewLocked()
	for _, list := range s.entities {
		for i, a := range list {
			if base, ok := s.baseline[a.ID]; ok {
				restored := base.Clone()
				list[i] = &restored
				continue
			}
			a.State = domain.StatePersisted
		}
	}
	s.changes = make(map[int64]domain.Changes)
	s.deletions = nil
}

func (s *Store) removeLocked(entityID int64, idx int) {
	list := s.entities[entityID]
	s.entities[entityID] = append(list[:idx], list[idx+1:]...)
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// HasChanges reports whether anything is staged for save.
func (s *Store) HasChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.changes) > 0 || len(s.deletions) > 0
}

// Pending returns copies of the staged changes and the deletion list.
func (s *Store) Pending() (map[int64]domain.Changes, []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changes := make(map[int64]domain.Changes, len(s.changes))
	for id, ch := range s.changes {
		changes[id] = ch.Clone()
	}
	return changes, append([]int64(nil), s.deletions...)
}

// Validate checks every allocation not marked for deletion and returns the
// problems keyed by allocation id. An empty map means the store can be saved.
func (s *Store) Validate() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *Store) validateLocked() map[int64]string {
	problems := make(map[int64]string)
	for _, list := range s.entities {
		for _, a := range list {
			if a.PendingDelete() {
				continue
			}
			if msg := a.Problem(); msg != "" {
				problems[a.ID] = msg
			}
		}
	}
	return problems
}

// Capacity computes the weekly capacity of a directory resource from every
// loaded allocation.
func (s *Store) Capacity(resourceID int64) (capacity.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[resourceID]
	if !ok {
		return capacity.Summary{}, fmt.Errorf("%w: %d", ErrUnknownResource, resourceID)
	}
	return capacity.ForResource(res, s.allLocked()), nil
}
