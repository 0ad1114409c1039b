package cli

import (
	"testing"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("1, -2,3,")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2, 3}, ids)

	for _, bad := range []string{"", " , ", "0", "x", "1,two"} {
		_, err := parseIDs(bad)
		assert.Error(t, err, bad)
	}
}

func TestIDList_RepeatedFlagAppends(t *testing.T) {
	var l idList
	require.NoError(t, l.Set("5,7"))
	require.NoError(t, l.Set("9"))

	assert.Equal(t, idList{5, 7, 9}, l)
	assert.Equal(t, "5,7,9", l.String())
}

func TestEntityFlags_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		flags    entityFlags
		wantMode domain.EditorMode
		wantID   int64
		wantErr  bool
	}{
		{name: "neither", flags: entityFlags{}},
		{name: "resource", flags: entityFlags{resource: 42}, wantMode: domain.ModeResource, wantID: 42},
		{name: "project", flags: entityFlags{project: 7}, wantMode: domain.ModeProject, wantID: 7},
		{name: "both", flags: entityFlags{resource: 42, project: 7}, wantErr: true},
		{name: "negative", flags: entityFlags{project: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, id, err := tt.flags.resolve()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestIntervalFlag(t *testing.T) {
	var f intervalFlag
	require.NoError(t, f.Set("monthly"))
	assert.Equal(t, api.IntervalMonthly, f.String())
	require.NoError(t, f.Set("WEEKLY"))
	assert.Equal(t, api.IntervalWeekly, f.String())

	assert.Error(t, f.Set("daily"))
	assert.Equal(t, api.IntervalWeekly, f.String(), "a rejected value leaves the flag alone")
}

func TestDateFlag(t *testing.T) {
	var d dateFlag
	require.NoError(t, d.Set("2025-03-05"))
	assert.Equal(t, "2025-03-05", d.String())
	require.NoError(t, d.Set(""))

	err := d.Set("05/03/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestParseEntityID(t *testing.T) {
	id, err := parseEntityID(" 42 ", "resource")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseEntityID("-3", "project")
	assert.EqualError(t, err, `invalid project id "-3"`)
}
