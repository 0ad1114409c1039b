package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocation_StateMustMatchIDSign(t *testing.T) {
	_, err := NewAllocation(-5, 1, 2, StateNew)
	assert.NoError(t, err)

	_, err = NewAllocation(7, 1, 2, StatePersisted)
	assert.NoError(t, err)

	_, err = NewAllocation(5, 1, 2, StateNew)
	assert.ErrorIs(t, err, ErrInvalidAllocation)

	_, err = NewAllocation(-5, 1, 2, StatePendingDelete)
	assert.ErrorIs(t, err, ErrInvalidAllocation)

	_, err = NewAllocation(7, 1, 2, AllocationState("archived"))
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestNewAllocation_RequiresProjectAndResource(t *testing.T) {
	_, err := NewAllocation(7, 0, 2, StatePersisted)
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestAllocationSet_ParsesAndClears(t *testing.T) {
	a := &Allocation{ID: 1, ProjectID: 1, ResourceID: 1, State: StatePersisted}

	require.NoError(t, a.Set(FieldPct, "80"))
	require.NotNil(t, a.Pct)
	assert.Equal(t, 80.0, *a.Pct)
	assert.Equal(t, "80", a.Get(FieldPct))

	require.NoError(t, a.Set(FieldPct, ""))
	assert.Nil(t, a.Pct)

	require.NoError(t, a.Set(FieldStartDate, "2025-01-06"))
	assert.Equal(t, "2025-01-06", a.StartDate)

	assert.Error(t, a.Set(FieldStartDate, "06/01/2025"))
	assert.Error(t, a.Set(FieldHrsPerWeek, "lots"))
	assert.Error(t, a.Set(FieldHrsPerWeek, "-1"))
	assert.Error(t, a.Set(AllocationField("budget"), "1"))
}

func TestAllocationProblem(t *testing.T) {
	a := &Allocation{StartDate: "2025-01-01", EndDate: "2025-03-31", HrsPerWeek: Float64Ptr(20)}
	assert.Empty(t, a.Problem(), "hours only with both dates is valid")

	a.HrsPerWeek = nil
	assert.Equal(t, MsgMissingCommitment, a.Problem())

	a.EndDate = ""
	assert.Equal(t, MsgMissingDates, a.Problem(), "date message wins")

	b := &Allocation{StartDate: "2025-01-01", EndDate: "2025-03-31", Pct: Float64Ptr(0)}
	assert.Equal(t, MsgMissingCommitment, b.Problem())
}

func TestAllocationClone_IsDeep(t *testing.T) {
	a := Allocation{Pct: Float64Ptr(50)}
	c := a.Clone()
	*c.Pct = 90
	assert.Equal(t, 50.0, *a.Pct)
}

func TestChangesApplyTo(t *testing.T) {
	a := &Allocation{ID: 1, ProjectID: 1, ResourceID: 1, State: StatePersisted, Pct: Float64Ptr(50)}
	ch := Changes{FieldPct: "", FieldHrsPerWeek: "12.5"}
	require.NoError(t, ch.ApplyTo(a))
	assert.Nil(t, a.Pct)
	assert.Equal(t, 12.5, a.WeeklyHours())
}

func TestParseAllocationField_Aliases(t *testing.T) {
	f, err := ParseAllocationField("hrs")
	require.NoError(t, err)
	assert.Equal(t, FieldHrsPerWeek, f)

	_, err = ParseAllocationField("nope")
	assert.Error(t, err)
}

func TestEstimationUnitWorkingDays(t *testing.T) {
	assert.Equal(t, int64(1), UnitDays.WorkingDays())
	assert.Equal(t, int64(5), UnitWeeks.WorkingDays())
	assert.Equal(t, int64(22), UnitMonths.WorkingDays())
	assert.False(t, EstimationUnit("years").Valid())
}
