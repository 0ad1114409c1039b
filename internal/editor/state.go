package editor

import (
	"fmt"

	"github.com/alexanderramin/pmo/internal/domain"
)

// State is a serializable copy of everything the store holds between
// invocations: loaded allocations, their loaded baselines and pending edits.
type State struct {
	Mode      domain.EditorMode             `json:"mode"`
	Selected  int64                         `json:"selected"`
	Entities  map[int64][]domain.Allocation `json:"entities"`
	Baseline  map[int64]domain.Allocation   `json:"baseline"`
	Changes   map[int64]domain.Changes      `json:"changes"`
	Deletions []int64                       `json:"deletions,omitempty"`
}

// HasChanges reports whether the state carries unsaved work.
func (st State) HasChanges() bool {
	return len(st.Changes) > 0 || len(st.Deletions) > 0
}

// Snapshot returns a deep copy of the store's state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Mode:      s.mode,
		Selected:  s.selected,
		Entities:  make(map[int64][]domain.Allocation, len(s.entities)),
		Baseline:  make(map[int64]domain.Allocation, len(s.baseline)),
		Changes:   make(map[int64]domain.Changes, len(s.changes)),
		Deletions: append([]int64(nil), s.deletions...),
	}
	for id, list := range s.entities {
		out := make([]domain.Allocation, 0, len(list))
		for _, a := range list {
			out = append(out, a.Clone())
		}
		st.Entities[id] = out
	}
	for id, a := range s.baseline {
		st.Baseline[id] = a.Clone()
	}
	for id, ch := range s.changes {
		st.Changes[id] = ch.Clone()
	}
	return st
}

// Restore replaces the store's state with st. In-flight loads are
// invalidated. The state is checked first and rejected whole if any
// allocation is malformed. Deletions of allocations that are not loaded as
// pending deletes are skipped.
func (s *Store) Restore(st State) error {
	mode, err := domain.ParseEditorMode(string(st.Mode))
	if err != nil {
		return err
	}

	entities := make(map[int64][]*domain.Allocation, len(st.Entities))
	states := make(map[int64]domain.AllocationState)
	for entityID, list := range st.Entities {
		out := make([]*domain.Allocation, 0, len(list))
		for _, a := range list {
			a := a.Clone()
			if err := a.Validate(); err != nil {
				return fmt.Errorf("restoring entity %d: %w", entityID, err)
			}
			if _, dup := states[a.ID]; dup {
				return fmt.Errorf("restoring entity %d: %w: duplicate id %d", entityID, domain.ErrInvalidAllocation, a.ID)
			}
			states[a.ID] = a.State
			out = append(out, &a)
		}
		entities[entityID] = out
	}
	deletions := make([]int64, 0, len(st.Deletions))
	var orphans []int64
	for _, id := range st.Deletions {
		if states[id] != domain.StatePendingDelete {
			orphans = append(orphans, id)
			continue
		}
		deletions = append(deletions, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return ErrSaveInProgress
	}
	s.invalidateLoadLocked()
	s.mode = mode
	s.selected = st.Selected
	s.entities = entities
	s.baseline = make(map[int64]domain.Allocation, len(st.Baseline))
	for id, a := range st.Baseline {
		s.baseline[id] = a.Clone()
	}
	s.changes = make(map[int64]domain.Changes, len(st.Changes))
	for id, ch := range st.Changes {
		s.changes[id] = ch.Clone()
	}
	s.deletions = deletions
	if len(orphans) > 0 {
		s.logger.Warn("skipping deletions of unloaded allocations", "allocation_ids", orphans)
	}
	return nil
}
