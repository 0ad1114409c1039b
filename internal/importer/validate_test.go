package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrStr(s string) *string     { return &s }
func ptrFloat(f float64) *float64 { return &f }

func validMinimalPlan() *PlanFile {
	return &PlanFile{
		Mode:     "resource",
		EntityID: 42,
		Allocations: []PlanRow{
			{CounterpartID: 7, StartDate: ptrStr("2025-04-01"), EndDate: ptrStr("2025-06-30"), HrsPerWeek: ptrFloat(10)},
		},
	}
}

func TestValidatePlan_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidatePlan(validMinimalPlan()))
}

func TestValidatePlan_ValidFull(t *testing.T) {
	plan := &PlanFile{
		Mode:     "project",
		EntityID: 7,
		Defaults: &RowDefaults{StartDate: "2025-04-01", EndDate: "2025-06-30", Pct: ptrFloat(50)},
		Allocations: []PlanRow{
			{CounterpartID: 42},
			{CounterpartID: 43, HrsPerWeek: ptrFloat(8)},
			{ID: 1, EndDate: ptrStr("2025-09-30")},
			{ID: 2, Delete: true},
		},
	}
	assert.Empty(t, ValidatePlan(plan))
}

func TestValidatePlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PlanFile)
		wantErr string
	}{
		{"bad mode", func(p *PlanFile) { p.Mode = "team" }, `mode: invalid value "team"`},
		{"missing entity", func(p *PlanFile) { p.EntityID = 0 }, "entity_id is required"},
		{"no rows", func(p *PlanFile) { p.Allocations = nil }, "nothing to import"},
		{"new row without counterpart", func(p *PlanFile) { p.Allocations[0].CounterpartID = 0 }, "allocations[0].counterpart_id is required"},
		{"delete without id", func(p *PlanFile) { p.Allocations[0] = PlanRow{CounterpartID: 7, Delete: true} }, "allocations[0].delete needs an id"},
		{"delete with fields", func(p *PlanFile) {
			p.Allocations = append(p.Allocations, PlanRow{ID: 3, Delete: true, Pct: ptrFloat(10)})
		}, "allocations[1]: a deleted row cannot also change fields"},
		{"duplicate id", func(p *PlanFile) {
			p.Allocations = append(p.Allocations, PlanRow{ID: 3, Pct: ptrFloat(10)}, PlanRow{ID: 3, Pct: ptrFloat(20)})
		}, "allocations[2].id: duplicate id 3"},
		{"bad date", func(p *PlanFile) { p.Allocations[0].StartDate = ptrStr("01/04/2025") }, "allocations[0].start_date: invalid date format"},
		{"reversed range", func(p *PlanFile) { p.Allocations[0].EndDate = ptrStr("2025-03-01") }, "end_date \"2025-03-01\" is before start_date"},
		{"negative hours", func(p *PlanFile) { p.Allocations[0].HrsPerWeek = ptrFloat(-1) }, "allocation_hrs_per_week must not be negative"},
		{"bad default date", func(p *PlanFile) { p.Defaults = &RowDefaults{EndDate: "June"} }, "defaults.end_date: invalid date format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := validMinimalPlan()
			tt.mutate(plan)
			errs := ValidatePlan(plan)
			require.NotEmpty(t, errs)
			assert.Contains(t, errors.Join(errs...).Error(), tt.wantErr)
		})
	}
}

func TestParsePlan_YAMLAndJSON(t *testing.T) {
	yamlPlan, err := ParsePlan([]byte(`
mode: resource
entity_id: 42
defaults:
  start_date: "2025-04-01"
allocations:
  - counterpart_id: 7
    allocation_hrs_per_week: 12.5
  - id: 2
    delete: true
`))
	require.NoError(t, err)
	assert.Equal(t, "resource", yamlPlan.Mode)
	require.Len(t, yamlPlan.Allocations, 2)
	assert.Equal(t, 12.5, *yamlPlan.Allocations[0].HrsPerWeek)
	assert.True(t, yamlPlan.Allocations[1].Delete)
	assert.Equal(t, "2025-04-01", yamlPlan.Defaults.StartDate)

	jsonPlan, err := ParsePlan([]byte(`{"mode": "project", "entity_id": 7, "allocations": [{"id": 1, "end_date": ""}]}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), jsonPlan.EntityID)
	require.NotNil(t, jsonPlan.Allocations[0].EndDate)
	assert.Empty(t, *jsonPlan.Allocations[0].EndDate)

	_, err = ParsePlan([]byte("mode: [unclosed"))
	assert.Error(t, err)
}
