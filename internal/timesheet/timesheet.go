// Package timesheet logs weekly actual hours and drafts a week's entries
// from existing timesheets and planned allocations.
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/logging"
)

var ErrInvalidEntry = errors.New("invalid timesheet entry")

// Backend is the subset of the REST client used for timesheets.
type Backend interface {
	Timesheet(ctx context.Context, resourceID int64, f api.TimesheetFilter) ([]domain.TimesheetEntry, error)
	UpsertTimesheet(ctx context.Context, e domain.TimesheetEntry) error
}

// Week is a Monday-to-Sunday range.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week containing t.
func WeekOf(t time.Time) Week {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// ParseWeek returns the week containing the given YYYY-MM-DD date.
func ParseWeek(date string) (Week, error) {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return Week{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
	}
	return WeekOf(t), nil
}

func (w Week) StartString() string { return w.Start.Format(domain.DateLayout) }
func (w Week) EndString() string   { return w.End.Format(domain.DateLayout) }

func (w Week) String() string {
	return w.StartString() + " to " + w.EndString()
}

// Overlaps reports whether the inclusive date range [start, end] touches the week.
func (w Week) Overlaps(start, end string) bool {
	s, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return false
	}
	return !s.After(w.End) && !e.Before(w.Start)
}

// Validate checks an entry before it is sent.
func Validate(e domain.TimesheetEntry) error {
	if e.ResourceID <= 0 {
		return fmt.Errorf("%w: resource is required", ErrInvalidEntry)
	}
	if e.ProjectID <= 0 {
		return fmt.Errorf("%w: project is required", ErrInvalidEntry)
	}
	if e.Hours <= 0 {
		return fmt.Errorf("%w: hours must be greater than zero", ErrInvalidEntry)
	}
	start, err := time.Parse(domain.DateLayout, e.WeekStart)
	if err != nil {
		return fmt.Errorf("%w: invalid week start %q", ErrInvalidEntry, e.WeekStart)
	}
	if start.Weekday() != time.Monday {
		return fmt.Errorf("%w: week must start on a Monday, %s is a %s", ErrInvalidEntry, e.WeekStart, start.Weekday())
	}
	if want := start.AddDate(0, 0, 6).Format(domain.DateLayout); e.WeekEnd != want {
		return fmt.Errorf("%w: week ending %q should be %s", ErrInvalidEntry, e.WeekEnd, want)
	}
	return nil
}

type Service struct {
	backend Backend
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logging.OrDiscard(logger)}
}

// Log validates and upserts one entry. A missing week end is derived from
// the week start.
func (s *Service) Log(ctx context.Context, e domain.TimesheetEntry) error {
	if e.WeekEnd == "" {
		if w, err := ParseWeek(e.WeekStart); err == nil && w.StartString() == e.WeekStart {
			e.WeekEnd = w.EndString()
		}
	}
	if err := Validate(e); err != nil {
		return err
	}
	if err := s.backend.UpsertTimesheet(ctx, e); err != nil {
		return fmt.Errorf("logging %v hours on project %d for week %s: %w", e.Hours, e.ProjectID, e.WeekStart, err)
	}
	s.logger.Info("timesheet_logged", "resource_id", e.ResourceID, "project_id", e.ProjectID, "week", e.WeekStart, "hours", e.Hours)
	return nil
}

// List returns a resource's entries, newest week first.
func (s *Service) List(ctx context.Context, resourceID int64, f api.TimesheetFilter) ([]domain.TimesheetEntry, error) {
	entries, err := s.backend.Timesheet(ctx, resourceID, f)
	if err != nil {
		return nil, fmt.Errorf("loading timesheet for resource %d: %w", resourceID, err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WeekStart != entries[j].WeekStart {
			return entries[i].WeekStart > entries[j].WeekStart
		}
		return entries[i].ProjectName < entries[j].ProjectName
	})
	return entries, nil
}

// Source tells where a drafted row came from.
type Source string

const (
	SourceTimesheet  Source = "timesheet"
	SourceAllocation Source = "allocation"
)

// Row is one project's hours in a drafted week.
type Row struct {
	ProjectID   int64
	ProjectName string
	Week        Week
	Hours       float64
	Source      Source
}

// Draft builds the rows for one week. Logged timesheet entries for the week
// take priority; projects without one are filled from overlapping
// allocations, summing hours per project. Rows are ordered by project name.
func Draft(week Week, allocations []domain.Allocation, logged []domain.TimesheetEntry) []Row {
	byProject := make(map[int64]*Row)
	var order []int64

	for _, e := range logged {
		if e.WeekStart != week.StartString() || e.WeekEnd != week.EndString() {
			continue
		}
		if _, ok := byProject[e.ProjectID]; !ok {
			order = append(order, e.ProjectID)
		}
		byProject[e.ProjectID] = &Row{
			ProjectID:   e.ProjectID,
			ProjectName: e.ProjectName,
			Week:        week,
			Hours:       e.Hours,
			Source:      SourceTimesheet,
		}
	}

	for _, a := range allocations {
		if a.PendingDelete() || !week.Overlaps(a.StartDate, a.EndDate) {
			continue
		}
		row, ok := byProject[a.ProjectID]
		if ok && row.Source == SourceTimesheet {
			continue
		}
		if !ok {
			row = &Row{ProjectID: a.ProjectID, ProjectName: a.ProjectName, Week: week, Source: SourceAllocation}
			byProject[a.ProjectID] = row
			order = append(order, a.ProjectID)
		}
		row.Hours += a.WeeklyHours()
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byProject[id])
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ProjectName < rows[j].ProjectName })
	return rows
}
