package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"golang.org/x/sync/errgroup"
)

// SaveResult counts the requests a save issued.
type SaveResult struct {
	Creates int     `json:"creates"`
	Updates int     `json:"updates"`
	Deletes int     `json:"deletes"`
	Skipped []int64 `json:"skipped,omitempty"`
}

// Empty reports whether the save had nothing to send.
func (r SaveResult) Empty() bool {
	return r.Creates == 0 && r.Updates == 0 && r.Deletes == 0
}

type savePlan struct {
	creates []api.AllocationPayload
	updates []api.AllocationPayload
	deletes []int64
	skipped []int64
}

func (p savePlan) result() SaveResult {
	return SaveResult{
		Creates: len(p.creates),
		Updates: len(p.updates),
		Deletes: len(p.deletes),
		Skipped: p.skipped,
	}
}

// Save validates the store and then sends, concurrently, one batched create
// for all unsaved allocations, one upsert per edited persisted allocation
// and one delete per allocation marked for deletion. Any failed request
// fails the save; requests that succeeded are not rolled back and pending
// state is kept so the save can be retried. On success pending state is
// cleared and the selected entity is reloaded.
func (s *Store) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return SaveResult{}, ErrSaveInProgress
	}
	if problems := s.validateLocked(); len(problems) > 0 {
		s.mu.Unlock()
		return SaveResult{}, &ValidationError{Problems: problems}
	}
	plan := s.planLocked()
	mode, entityID, observer := s.mode, s.selected, s.observer
	s.saving = true
	s.mu.Unlock()

	start := s.now()
	err := s.execute(ctx, plan)
	result := plan.result()

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.commitLocked()
	}
	s.mu.Unlock()

	observer.ObserveSave(ctx, SaveEvent{
		Mode:     mode,
		EntityID: entityID,
		Result:   result,
		Err:      err,
		Duration: s.now().Sub(start),
	})
	if err != nil {
		return result, fmt.Errorf("saving allocations: %w", err)
	}

	if entityID > 0 {
		if err := s.LoadForEntity(ctx, entityID); err != nil && !errors.Is(err, ErrStaleResponse) {
			return result, fmt.Errorf("allocations saved, reload failed: %w", err)
		}
	}
	return result, nil
}

func (s *Store) planLocked() savePlan {
	var plan savePlan

	ids := make([]int64, 0, len(s.changes))
	for id := range s.changes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		a, _, _ := s.findLocked(id)
		if a == nil {
			s.logger.Warn("skipping change for allocation no longer loaded", "allocation_id", id)
			plan.skipped = append(plan.skipped, id)
			continue
		}
		if a.PendingDelete() {
			continue
		}
		if a.IsNew() {
			plan.creates = append(plan.creates, api.PayloadFor(*a))
			continue
		}
		merged := a.Clone()
		if base, ok := s.baseline[id]; ok {
			merged = base.Clone()
			if err := s.changes[id].ApplyTo(&merged); err != nil {
				merged = a.Clone()
			}
		}
		plan.updates = append(plan.updates, api.PayloadFor(merged))
	}

	for _, id := range s.deletions {
		if id > 0 {
			plan.deletes = append(plan.deletes, id)
		}
	}
	return plan
}

func (s *Store) execute(ctx context.Context, plan savePlan) error {
	var g errgroup.Group
	if len(plan.creates) > 0 {
		g.Go(func() error {
			if err := s.backend.Allocate(ctx, plan.creates); err != nil {
				return fmt.Errorf("creating %d allocation(s): %w", len(plan.creates), err)
			}
			return nil
		})
	}
	for _, u := range plan.updates {
		g.Go(func() error {
			if err := s.backend.Allocate(ctx, []api.AllocationPayload{u}); err != nil {
				return fmt.Errorf("updating allocation %d: %w", *u.ID, err)
			}
			return nil
		})
	}
	for _, id := range plan.deletes {
		g.Go(func() error {
			if err := s.backend.DeleteAllocation(ctx, id); err != nil {
				return fmt.Errorf("deleting allocation %d: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// commitLocked clears pending state after a successful save. Unsaved and
// deleted records are dropped; the reload brings back their server form.
func (s *Store) commitLocked() {
	for entityID, list := range s.entities {
		kept := list[:0]
		for _, a := range list {
			if a.IsNew() || a.PendingDelete() {
				delete(s.baseline, a.ID)
				continue
			}
			s.baseline[a.ID] = a.Clone()
			kept = append(kept, a)
		}
		s.entities[entityID] = kept
	}
	s.changes = make(map[int64]domain.Changes)
	s.deletions = nil
}
