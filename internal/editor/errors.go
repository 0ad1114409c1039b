package editor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoEntity indicates an operation needs a selected resource or project.
	ErrNoEntity = errors.New("no entity selected")

	// ErrUnknownAllocation indicates the allocation id is not loaded.
	ErrUnknownAllocation = errors.New("unknown allocation")

	// ErrUnknownResource indicates the resource is not in the directory.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrStaleResponse is returned by a load whose entity was superseded
	// while the request was in flight. The response is dropped.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrSaveInProgress rejects mutations while a save is running.
	ErrSaveInProgress = errors.New("save in progress")

	// ErrPendingDelete rejects edits to an allocation marked for deletion.
	ErrPendingDelete = errors.New("allocation is marked for deletion")
)

// ValidationError lists the allocations that block a save, keyed by id.
type ValidationError struct {
	Problems map[int64]string
}

func (e *ValidationError) Error() string {
	ids := make([]int64, 0, len(e.Problems))
	for id := range e.Problems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d: %s", id, e.Problems[id]))
	}
	return fmt.Sprintf("%d allocation(s) failed validation (%s)", len(ids), strings.Join(parts, "; "))
}
