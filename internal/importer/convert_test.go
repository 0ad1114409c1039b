package importer

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticBackend serves a fixed set of allocations and never saves.
type staticBackend struct {
	rows []domain.Allocation
}

func (b staticBackend) AllocationsForResource(_ context.Context, resourceID int64) ([]domain.Allocation, error) {
	var out []domain.Allocation
	for _, a := range b.rows {
		if a.ResourceID == resourceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (b staticBackend) AllocationsForProjects(_ context.Context, projectIDs ...int64) ([]domain.Allocation, error) {
	var out []domain.Allocation
	for _, a := range b.rows {
		for _, id := range projectIDs {
			if a.ProjectID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (staticBackend) Allocate(context.Context, []api.AllocationPayload) error { return nil }

func (staticBackend) DeleteAllocation(context.Context, int64) error { return nil }

func loadedStore(t *testing.T) *editor.Store {
	t.Helper()
	backend := staticBackend{rows: []domain.Allocation{
		testutil.NewTestAllocation(7, 42, testutil.WithAllocationID(1), testutil.WithDates("2025-01-06", "2025-06-30"), testutil.WithHrsPerWeek(20)),
		testutil.NewTestAllocation(9, 42, testutil.WithAllocationID(2), testutil.WithDates("2025-01-06", "2025-03-31"), testutil.WithHrsPerWeek(10)),
	}}
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	store := editor.NewStore(backend, domain.ModeResource, editor.WithClock(func() time.Time { return now }))
	require.NoError(t, store.LoadForEntity(context.Background(), 42))
	return store
}

func TestStage_AddsUpdatesAndDeletes(t *testing.T) {
	store := loadedStore(t)
	plan := &PlanFile{
		Mode:     "resource",
		EntityID: 42,
		Defaults: &RowDefaults{StartDate: "2025-04-07", EndDate: "2025-06-30"},
		Allocations: []PlanRow{
			{CounterpartID: 8, HrsPerWeek: ptrFloat(12.5)},
			{ID: 1, HrsPerWeek: ptrFloat(25), EndDate: ptrStr("2025-09-30")},
			{ID: 2, Delete: true},
		},
	}
	require.Empty(t, ValidatePlan(plan))

	sum, err := Stage(store, plan)
	require.NoError(t, err)

	require.Len(t, sum.Added, 1)
	assert.Equal(t, 1, sum.Updated)
	assert.Equal(t, 1, sum.Deleted)

	added, ok := store.Allocation(sum.Added[0])
	require.True(t, ok)
	assert.Equal(t, int64(8), added.ProjectID)
	assert.Equal(t, "2025-04-07", added.StartDate)
	assert.Equal(t, "12.5", added.Get(domain.FieldHrsPerWeek))

	changes, deletions := store.Pending()
	assert.Equal(t, "25", changes[1][domain.FieldHrsPerWeek])
	assert.Equal(t, "2025-09-30", changes[1][domain.FieldEndDate])
	assert.Equal(t, []int64{2}, deletions)
	assert.Empty(t, store.Validate())
}

func TestStage_RowOverridesDefaults(t *testing.T) {
	store := loadedStore(t)
	plan := &PlanFile{
		Mode:        "resource",
		EntityID:    42,
		Defaults:    &RowDefaults{StartDate: "2025-04-07", EndDate: "2025-06-30", Pct: ptrFloat(50)},
		Allocations: []PlanRow{{CounterpartID: 8, StartDate: ptrStr("2025-05-05"), Pct: ptrFloat(20)}},
	}

	sum, err := Stage(store, plan)
	require.NoError(t, err)

	added, _ := store.Allocation(sum.Added[0])
	assert.Equal(t, "2025-05-05", added.StartDate)
	assert.Equal(t, "2025-06-30", added.EndDate)
	assert.Equal(t, "20", added.Get(domain.FieldPct))
}

func TestStage_RollsBackOnError(t *testing.T) {
	store := loadedStore(t)
	plan := &PlanFile{
		Mode:     "resource",
		EntityID: 42,
		Allocations: []PlanRow{
			{ID: 1, Pct: ptrFloat(40)},
			{ID: 999, Pct: ptrFloat(10)},
		},
	}

	_, err := Stage(store, plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocations[1]")

	assert.False(t, store.HasChanges())
	assert.Len(t, store.Allocations(42), 2)
}

func TestStage_RejectsOtherEntity(t *testing.T) {
	store := loadedStore(t)

	_, err := Stage(store, &PlanFile{Mode: "resource", EntityID: 43, Allocations: []PlanRow{{CounterpartID: 7}}})
	assert.ErrorIs(t, err, ErrEntityMismatch)

	_, err = Stage(store, &PlanFile{Mode: "project", EntityID: 42, Allocations: []PlanRow{{CounterpartID: 7}}})
	assert.ErrorIs(t, err, ErrEntityMismatch)
}
