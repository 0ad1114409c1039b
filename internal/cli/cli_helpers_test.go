package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/dashboard"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/editor"
	"github.com/alexanderramin/pmo/internal/estimation"
	"github.com/alexanderramin/pmo/internal/repository"
	"github.com/alexanderramin/pmo/internal/session"
	"github.com/alexanderramin/pmo/internal/testutil"
	"github.com/alexanderramin/pmo/internal/timeoff"
	"github.com/alexanderramin/pmo/internal/timesheet"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory stand-in for the allocation REST API.
type fakeAPI struct {
	mu          sync.Mutex
	projects    []domain.Project
	resources   []domain.Resource
	lines       []domain.BusinessLine
	allocations map[int64]domain.Allocation
	nextID      int64
	timesheets  []domain.TimesheetEntry
	estimations []domain.ProjectEstimation
	timeoff     []domain.TimeOff
	capacity    map[int64][]domain.CapacityInterval
	failing     map[string]bool

	posts   int
	deletes []int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		projects: []domain.Project{
			testutil.NewTestProject(7, "Atlas", testutil.WithProjectLine("Growth", "Payments"), testutil.WithProjectStatus("Active")),
			testutil.NewTestProject(8, "Beacon", testutil.WithProjectLine("Growth", "Lending")),
			testutil.NewTestProject(9, "Compass", testutil.WithProjectLine("Core", "Platform")),
		},
		resources: []domain.Resource{
			testutil.NewTestResource(42, "Dana", testutil.WithYearlyCapacity(1950), testutil.WithResourceLine("Growth", "Payments"), testutil.WithManager("Morgan Lee")),
			testutil.NewTestResource(43, "Eli", testutil.WithResourceLine("Core", "Platform")),
		},
		lines: []domain.BusinessLine{
			{StrategicPortfolio: "Growth", ProductLine: "Payments"},
			{StrategicPortfolio: "Growth", ProductLine: "Lending"},
			{StrategicPortfolio: "Core", ProductLine: "Platform"},
		},
		allocations: map[int64]domain.Allocation{
			1: testutil.NewTestAllocation(7, 42, testutil.WithAllocationID(1), testutil.WithDates("2025-01-06", "2025-06-30"), testutil.WithHrsPerWeek(20)),
			2: testutil.NewTestAllocation(9, 42, testutil.WithAllocationID(2), testutil.WithDates("2025-01-06", "2025-03-31"), testutil.WithHrsPerWeek(10)),
			3: testutil.NewTestAllocation(7, 43, testutil.WithAllocationID(3), testutil.WithDates("2025-02-03", "2025-04-28"), testutil.WithPct(50)),
		},
		nextID: 100,
		capacity: map[int64][]domain.CapacityInterval{
			7: {
				{StartDate: "2025-01-06", TotalCapacity: 80, Planned: 30, Actual: 28, Available: 50},
				{StartDate: "2025-01-13", TotalCapacity: 80, Planned: 40, Actual: 35, Available: 40},
			},
			9: {
				{StartDate: "2025-01-06", TotalCapacity: 40, Planned: 10, Actual: 10, Available: 30},
			},
		},
		failing: make(map[string]bool),
	}
}

func (f *fakeAPI) fail(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[path] = true
}

func (f *fakeAPI) allocation(id int64) (domain.Allocation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocations[id]
	return a, ok
}

func (f *fakeAPI) wire(a domain.Allocation) map[string]any {
	row := map[string]any{
		"allocation_id":           a.ID,
		"project_id":              a.ProjectID,
		"resource_id":             a.ResourceID,
		"allocation_start_date":   a.StartDate,
		"allocation_end_date":     a.EndDate,
		"allocation_pct":          a.Pct,
		"allocation_hrs_per_week": a.HrsPerWeek,
	}
	for _, p := range f.projects {
		if p.ID == a.ProjectID {
			row["project_name"] = p.Name
		}
	}
	for _, r := range f.resources {
		if r.ID == a.ResourceID {
			row["resource_name"] = r.Name
		}
	}
	return row
}

func (f *fakeAPI) allocationsWhere(match func(domain.Allocation) bool) []map[string]any {
	ids := make([]int64, 0, len(f.allocations))
	for id := range f.allocations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]map[string]any, 0)
	for _, id := range ids {
		if a := f.allocations[id]; match(a) {
			out = append(out, f.wire(a))
		}
	}
	return out
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing[r.URL.Path] {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "boom"})
		return
	}

	path := r.URL.Path
	reply := func(v any) { json.NewEncoder(w).Encode(v) }

	switch {
	case r.Method == http.MethodGet && path == "/projects":
		reply(f.projects)
	case r.Method == http.MethodGet && path == "/resources":
		reply(f.resources)
	case r.Method == http.MethodGet && (path == "/business_lines" || path == "/strategic_portfolios"):
		if path == "/strategic_portfolios" {
			reply([]domain.BusinessLine{{StrategicPortfolio: "Core"}, {StrategicPortfolio: "Growth"}})
			return
		}
		reply(f.lines)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/product_lines/"):
		portfolio, _ := url.PathUnescape(strings.TrimPrefix(path, "/product_lines/"))
		var out []map[string]string
		for _, l := range f.lines {
			if l.StrategicPortfolio == portfolio {
				out = append(out, map[string]string{"product_line": l.ProductLine})
			}
		}
		reply(out)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/allocations/resource/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/allocations/resource/"), 10, 64)
		rows := f.allocationsWhere(func(a domain.Allocation) bool { return a.ResourceID == id })
		// Actual-hours rows arrive without an allocation id.
		rows = append(rows, map[string]any{"allocation_id": nil, "project_id": 8, "resource_id": id})
		reply(rows)
	case r.Method == http.MethodGet && path == "/allocations/project":
		var ids []int64
		for _, s := range r.URL.Query()["project_ids"] {
			id, _ := strconv.ParseInt(s, 10, 64)
			ids = append(ids, id)
		}
		reply(f.allocationsWhere(func(a domain.Allocation) bool { return slices.Contains(ids, a.ProjectID) }))
	case r.Method == http.MethodPost && path == "/allocate":
		var batch []api.AllocationPayload
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.posts++
		for _, p := range batch {
			id := f.nextID
			if p.ID != nil {
				id = *p.ID
			} else {
				f.nextID++
			}
			f.allocations[id] = domain.Allocation{
				ID:         id,
				ProjectID:  p.ProjectID,
				ResourceID: p.ResourceID,
				StartDate:  p.StartDate,
				EndDate:    p.EndDate,
				Pct:        p.Pct,
				HrsPerWeek: p.HrsPerWeek,
				State:      domain.StatePersisted,
			}
		}
		reply(map[string]string{"message": "ok"})
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/allocations/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/allocations/"), 10, 64)
		f.deletes = append(f.deletes, id)
		delete(f.allocations, id)
		reply(map[string]string{"message": "deleted"})

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/project_capacity_allocation/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/project_capacity_allocation/"), 10, 64)
		periods, ok := f.capacity[id]
		if !ok {
			reply([]any{})
			return
		}
		reply(map[string]any{"project_id": id, "intervals": periods})
	case r.Method == http.MethodGet && path == "/resource_capacity_allocation_per_portfolio":
		reply(map[string]any{"intervals": []map[string]any{{
			"interval":                 "2025-01",
			"total_capacity":           120,
			"allocation_hours_planned": 70,
			"allocation_hours_actual":  60,
			"available_capacity":       50,
			"resources": []map[string]any{{
				"resource_id": 42, "resource_name": "Dana", "resource_role": "Engineer",
				"total_capacity": 80, "allocation_hours_planned": 60, "allocation_hours_actual": 50, "available_capacity": 20,
			}},
		}}})
	case r.Method == http.MethodGet && path == "/resource_capacity_allocation":
		reply(map[string]any{
			"resource_details": map[string]any{"resource_id": 42, "resource_name": "Dana"},
			"data": []map[string]any{
				{"start_date": "2025-01-06", "total_capacity": 37.5, "allocation_hours_planned": 30, "allocation_hours_actual": 25, "available_capacity": 7.5},
			},
		})

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/timesheet/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/timesheet/"), 10, 64)
		q := r.URL.Query()
		out := make([]domain.TimesheetEntry, 0)
		for _, e := range f.timesheets {
			if e.ResourceID != id {
				continue
			}
			if from := q.Get("ts_start_date"); from != "" && e.WeekStart < from {
				continue
			}
			if to := q.Get("ts_end_date"); to != "" && e.WeekEnd > to {
				continue
			}
			out = append(out, e)
		}
		reply(out)
	case r.Method == http.MethodPost && path == "/timesheet/upsert":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resourceID, _ := strconv.ParseInt(r.PostForm.Get("resource_id"), 10, 64)
		projectID, _ := strconv.ParseInt(r.PostForm.Get("project_id"), 10, 64)
		hours, _ := strconv.ParseFloat(r.PostForm.Get("weekly_project_hrs"), 64)
		f.timesheets = append(f.timesheets, domain.TimesheetEntry{
			ResourceID:  resourceID,
			ProjectID:   projectID,
			ProjectName: r.PostForm.Get("project_name"),
			WeekStart:   r.PostForm.Get("ts_start_date"),
			WeekEnd:     r.PostForm.Get("ts_end_date"),
			Hours:       hours,
		})
		reply(map[string]string{"message": "ok"})

	case r.Method == http.MethodGet && path == "/project_estimation":
		id, _ := strconv.ParseInt(r.URL.Query().Get("project_id"), 10, 64)
		out := make([]domain.ProjectEstimation, 0)
		for _, e := range f.estimations {
			if e.ProjectID == id {
				out = append(out, e)
			}
		}
		reply(out)
	case r.Method == http.MethodPost && path == "/upsert_project_estimation":
		var e domain.ProjectEstimation
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if e.ID == nil {
			id := int64(len(f.estimations) + 1)
			e.ID = &id
		}
		f.estimations = append(f.estimations, e)
		reply(map[string]string{"message": "ok"})

	case r.Method == http.MethodGet && path == "/timeoff":
		reply(append(make([]domain.TimeOff, 0), f.timeoff...))
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/timeoff/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/timeoff/"), 10, 64)
		out := make([]domain.TimeOff, 0)
		for _, t := range f.timeoff {
			if t.ResourceID == id {
				out = append(out, t)
			}
		}
		reply(out)
	case r.Method == http.MethodPost && path == "/timeoff":
		var t domain.TimeOff
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, res := range f.resources {
			if res.ID == t.ResourceID {
				t.ResourceName = res.Name
			}
		}
		f.timeoff = append(f.timeoff, t)
		reply(map[string]string{"message": "ok"})

	default:
		http.NotFound(w, r)
	}
}

// testApp wires a full App against a fake API server and an in-memory DB.
func testApp(t *testing.T) (*App, *fakeAPI) {
	t.Helper()
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	app := &App{
		Directory:   client,
		Editor:      editor.NewStore(client, domain.ModeResource, editor.WithClock(func() time.Time { return now })),
		Sessions:    session.NewManager(uow, repository.NewSQLiteEditorSessionRepo(database)),
		SaveLog:     repository.NewSQLiteSaveLogRepo(database),
		Dashboard:   dashboard.NewService(client, dashboard.DefaultConfig(), nil),
		Timesheets:  timesheet.NewService(client, nil),
		Estimations: estimation.NewService(client, nil),
		TimeOff:     timeoff.NewService(client, nil),
		Now:         func() time.Time { return now },
	}
	return app, fake
}

// executeCmd runs the root command with args and captures its output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

// mustExecute runs a command that is expected to succeed.
func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, "pmo %s\n%s", strings.Join(args, " "), out)
	return out
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
