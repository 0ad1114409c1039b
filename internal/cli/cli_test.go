package cli

import (
	"testing"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/timeoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourcesCmd_FiltersByLine(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "resources", "--line", "payments")

	assert.Contains(t, out, "Dana")
	assert.NotContains(t, out, "Eli")
}

func TestResourcesCmd_FiltersByManager(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "resources", "--manager", "morgan lee")
	assert.Contains(t, out, "Dana")
	assert.NotContains(t, out, "Eli")

	out = mustExecute(t, app, "resources", "--manager", "Nobody")
	assert.NotContains(t, out, "Dana")
}

func TestProjectsCmd_GroupsByPortfolio(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "projects")
	assert.Contains(t, out, "GROWTH")
	assert.Contains(t, out, "Atlas")
	assert.Contains(t, out, "Compass")

	out = mustExecute(t, app, "projects", "-s", "bea")
	assert.Contains(t, out, "Beacon")
	assert.NotContains(t, out, "Atlas")
}

func TestPortfoliosCmd(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "portfolios")
	assert.Contains(t, out, "Core")
	assert.Contains(t, out, "Platform")

	out = mustExecute(t, app, "portfolios", "Growth")
	assert.Contains(t, out, "Lending")
	assert.Contains(t, out, "Payments")
	assert.NotContains(t, out, "Platform")
}

func TestDirectoryCmd_ServerError(t *testing.T) {
	app, fake := testApp(t)
	fake.fail("/resources")

	_, err := executeCmd(t, app, "resources")
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Detail)
}

func TestCapacityCmd(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "capacity", "42")

	assert.Contains(t, out, "Dana")
	assert.Contains(t, out, "37.5h")
	assert.Contains(t, out, "30h")
	assert.Contains(t, out, "7.5h")
	assert.Contains(t, out, "80%")
}

func TestCapacityCmd_IncludesStagedChanges(t *testing.T) {
	app, _ := testApp(t)
	mustExecute(t, app, "alloc", "show", "--resource", "42")
	mustExecute(t, app, "alloc", "set", "1", "hrs", "30")

	out := mustExecute(t, app, "capacity", "42")

	assert.Contains(t, out, "40h")
	assert.Contains(t, out, "over-allocated")
}

func TestCapacityCmd_DefaultWeeklyHours(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "capacity", "43")

	assert.Contains(t, out, "Eli")
	assert.Contains(t, out, "assuming 40h/week")
}

func TestCapacityCmd_Series(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "capacity", "42", "--series", "--interval", "weekly")

	assert.Contains(t, out, "Dana")
	assert.Contains(t, out, "2025-01-06")
	assert.Contains(t, out, "total planned 30h")
}

func TestCapacityCmd_RejectsBadID(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "capacity", "dana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid resource id")
}

func TestDashboardCmd_GroupsProjects(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "dashboard")

	assert.Contains(t, out, "GROWTH")
	assert.Contains(t, out, "CORE")
	assert.Contains(t, out, "Payments")
	assert.Contains(t, out, "Atlas")
	assert.Contains(t, out, "Compass")
	assert.Contains(t, out, "total planned 70h")
}

func TestDashboardCmd_FilterAndEmptyChart(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "dashboard", "--line", "Lending")
	assert.Contains(t, out, "Beacon")
	assert.Contains(t, out, "No capacity data.")
	assert.NotContains(t, out, "Atlas")

	out = mustExecute(t, app, "dashboard", "-s", "nothing")
	assert.Contains(t, out, "No projects match.")
}

func TestDashboardCmd_NotesFailedProjects(t *testing.T) {
	app, fake := testApp(t)
	fake.fail("/project_capacity_allocation/9")

	out := mustExecute(t, app, "dashboard")

	assert.Contains(t, out, "Atlas")
	assert.NotContains(t, out, "Compass")
	assert.Contains(t, out, "capacity unavailable for 1 project(s): 9")
}

func TestDashboardCmd_Portfolio(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "dashboard", "--portfolio", "growth", "--interval", "monthly")

	assert.Contains(t, out, "growth")
	assert.Contains(t, out, "RESOURCES")
	assert.Contains(t, out, "Dana")
	assert.Contains(t, out, "Engineer")
}

func TestDashboardCmd_UnknownPortfolio(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "dashboard", "--portfolio", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown portfolio "Nope"`)
}

func TestDashboardCmd_RejectsBadInterval(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "dashboard", "--portfolio", "Growth", "--interval", "daily")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want weekly or monthly")
}

func TestTimesheetCmd_LogAndShow(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "timesheet", "log",
		"--resource", "42", "--project", "7", "--week", "2025-03-05", "--hours", "32")
	assert.Contains(t, out, "Logged 32h on project 7 for week 2025-03-03")

	out = mustExecute(t, app, "ts", "show", "42")
	assert.Contains(t, out, "2025-03-03")
	assert.Contains(t, out, "2025-03-09")
	assert.Contains(t, out, "total 32h")

	out = mustExecute(t, app, "ts", "show", "42", "--to", "2025-02-28")
	assert.Contains(t, out, "No timesheet entries.")
}

func TestTimesheetCmd_LogNeedsFlagsWithoutTerminal(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "timesheet", "log", "--resource", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "are required")
}

func TestTimesheetCmd_Draft(t *testing.T) {
	app, _ := testApp(t)
	mustExecute(t, app, "timesheet", "log",
		"--resource", "42", "--project", "7", "--week", "2025-03-03", "--hours", "32")

	out := mustExecute(t, app, "timesheet", "draft", "42")

	assert.Contains(t, out, "WEEK OF 2025-03-03 TO 2025-03-09")
	assert.Contains(t, out, "actual")
	assert.Contains(t, out, "planned")
	assert.Contains(t, out, "Compass")
	assert.Contains(t, out, "total 42h")
}

func TestTimesheetCmd_DraftOutsideAllocations(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "timesheet", "draft", "42", "--week", "2025-09-10")

	assert.Contains(t, out, "Nothing logged or planned this week.")
}

func TestEstimateCmd_AddAndList(t *testing.T) {
	app, _ := testApp(t)

	out := mustExecute(t, app, "estimate", "add", "7",
		"--milestone", "Development", "--deliverable", "Backend",
		"--resources", "2", "--duration", "3", "--unit", "weeks")
	assert.Contains(t, out, "Saved Development estimate: 30 person-days")

	out = mustExecute(t, app, "est", "list", "7")
	assert.Contains(t, out, "Development")
	assert.Contains(t, out, "Backend")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "Total")

	out = mustExecute(t, app, "est", "list", "9")
	assert.Contains(t, out, "No estimation rows.")
}

func TestEstimateCmd_RejectsWrongDeliverable(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "estimate", "add", "7",
		"--milestone", "AI", "--deliverable", "Backend", "--resources", "1", "--duration", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestEstimateCmd_RejectsNonNumericResources(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "estimate", "add", "7",
		"--milestone", "AI", "--resources", "two", "--duration", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid resources "two"`)
}

func TestTimeOffCmd_AddAndList(t *testing.T) {
	app, fake := testApp(t)

	out := mustExecute(t, app, "timeoff", "add", "--resource", "42",
		"--start", "2025-03-10", "--end", "2025-03-14", "--reason", "Annual Leave")
	assert.Contains(t, out, "Added Annual Leave time off for resource 42 from 2025-03-10 to 2025-03-14")
	require.Len(t, fake.timeoff, 1)

	out = mustExecute(t, app, "timeoff", "add", "--resource", "43", "--start", "2025-03-03", "--end", "2025-03-03")
	assert.Contains(t, out, "Added Vacation time off for resource 43")

	out = mustExecute(t, app, "timeoff", "list")
	assert.Contains(t, out, "Dana")
	assert.Contains(t, out, "Annual Leave")
	assert.Contains(t, out, "Eli")

	out = mustExecute(t, app, "timeoff", "list", "42")
	assert.Contains(t, out, "Dana")
	assert.NotContains(t, out, "Eli")

	out = mustExecute(t, app, "timeoff", "list", "9")
	assert.Contains(t, out, "No time off recorded.")
}

func TestTimeOffCmd_RejectsOverlap(t *testing.T) {
	app, fake := testApp(t)
	mustExecute(t, app, "timeoff", "add", "--resource", "42", "--start", "2025-03-10", "--end", "2025-03-14")

	_, err := executeCmd(t, app, "timeoff", "add", "--resource", "42", "--start", "2025-03-14", "--end", "2025-03-18")
	require.ErrorIs(t, err, timeoff.ErrOverlap)
	assert.Contains(t, err.Error(), "overlaps with an existing time off entry for this resource")
	assert.Len(t, fake.timeoff, 1)
}

func TestTimeOffCmd_RequiresFlagsWhenNotInteractive(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "timeoff", "add", "--resource", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resource, --start and --end are required")

	_, err = executeCmd(t, app, "timeoff", "add", "--resource", "42", "--start", "2025-03-10", "--end", "2025-03-14", "--reason", "Nap")
	require.ErrorIs(t, err, timeoff.ErrInvalidTimeOff)
}
