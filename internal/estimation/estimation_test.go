package estimation

import (
	"context"
	"testing"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	rows []domain.ProjectEstimation
	sent []domain.ProjectEstimation
}

func (f *fakeBackend) ProjectEstimations(context.Context, int64) ([]domain.ProjectEstimation, error) {
	return f.rows, nil
}

func (f *fakeBackend) UpsertEstimation(_ context.Context, e domain.ProjectEstimation) error {
	f.sent = append(f.sent, e)
	return nil
}

func TestPersonDays(t *testing.T) {
	assert.Equal(t, 6.0, PersonDays(2, 3, domain.UnitDays))
	assert.Equal(t, 30.0, PersonDays(2, 3, domain.UnitWeeks))
	assert.Equal(t, 66.0, PersonDays(1.5, 2, domain.UnitMonths))
	assert.Equal(t, 0.3, PersonDays(0.1, 3, domain.UnitDays))
}

func TestValidate(t *testing.T) {
	ok := domain.ProjectEstimation{ProjectID: 5, Milestone: "Development", Deliverable: "Backend", Resources: 2, Duration: 3, Unit: domain.UnitWeeks}
	require.NoError(t, Validate(ok))

	tests := []struct {
		name   string
		mutate func(*domain.ProjectEstimation)
		want   string
	}{
		{"no milestone", func(e *domain.ProjectEstimation) { e.Milestone = "" }, "milestone is required"},
		{"no resources", func(e *domain.ProjectEstimation) { e.Resources = 0 }, "resources must be greater than zero"},
		{"no duration", func(e *domain.ProjectEstimation) { e.Duration = -1 }, "duration must be greater than zero"},
		{"bad unit", func(e *domain.ProjectEstimation) { e.Unit = "years" }, "unknown unit"},
		{"foreign deliverable", func(e *domain.ProjectEstimation) { e.Deliverable = "Mobile" }, "does not belong"},
		{"no project", func(e *domain.ProjectEstimation) { e.ProjectID = 0 }, "project is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := ok
			tc.mutate(&e)
			err := Validate(e)
			assert.ErrorIs(t, err, ErrInvalidEstimation)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestService_Upsert_CreateOmitsID(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, nil)
	zero := int64(0)

	saved, err := svc.Upsert(context.Background(), domain.ProjectEstimation{
		ID: &zero, ProjectID: 5, Milestone: "AI", Resources: 2, Duration: 3,
	})
	require.NoError(t, err)
	assert.Nil(t, saved.ID)
	assert.Equal(t, domain.UnitDays, saved.Unit)
	assert.Equal(t, 6.0, saved.PersonDays)
	require.Len(t, backend.sent, 1)
	assert.Nil(t, backend.sent[0].ID)
}

func TestService_Upsert_UpdateKeepsID(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, nil)
	id := int64(9)

	_, err := svc.Upsert(context.Background(), domain.ProjectEstimation{
		ID: &id, ProjectID: 5, Milestone: "AI", Resources: 1, Duration: 2, Unit: domain.UnitWeeks, PersonDays: 999,
	})
	require.NoError(t, err)
	require.NotNil(t, backend.sent[0].ID)
	assert.Equal(t, int64(9), *backend.sent[0].ID)
	assert.Equal(t, 10.0, backend.sent[0].PersonDays, "person-days are recomputed")
}

func TestService_Upsert_InvalidSendsNothing(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, nil)

	_, err := svc.Upsert(context.Background(), domain.ProjectEstimation{ProjectID: 5})
	assert.ErrorIs(t, err, ErrInvalidEstimation)
	assert.Empty(t, backend.sent)
}

func TestSummarize(t *testing.T) {
	totals := Summarize([]domain.ProjectEstimation{
		{Milestone: "Development", Resources: 2, PersonDays: 30},
		{Milestone: "AI", Resources: 1, PersonDays: 44},
		{Milestone: "Development", Resources: 1, PersonDays: 25},
		{Milestone: "", Resources: 5, PersonDays: 100},
	})

	assert.Equal(t, 4.0, totals.Resources)
	assert.Equal(t, 99.0, totals.PersonDays)
	assert.Equal(t, 19.8, totals.PersonWeeks)
	assert.Equal(t, 4.5, totals.PersonMonths)
	require.Len(t, totals.Milestones, 2)
	assert.Equal(t, MilestoneTotal{Milestone: "Development", Resources: 3, PersonDays: 55}, totals.Milestones[0])
	assert.Equal(t, "AI", totals.Milestones[1].Milestone)
}

func TestMilestoneNames(t *testing.T) {
	names := MilestoneNames()
	assert.Len(t, names, 5)
	assert.Equal(t, "AI", names[0])
}
