// Package estimation manages a project's milestone effort estimates.
package estimation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/logging"
	"github.com/shopspring/decimal"
)

var ErrInvalidEstimation = errors.New("invalid estimation")

// Milestones lists the known milestones and their deliverables.
var Milestones = map[string][]string{
	"Business Analysis": nil,
	"Development":       {"Frontend", "API Services", "Backend"},
	"Data Engineering":  nil,
	"Quality Assurance": nil,
	"AI":                nil,
}

// MilestoneNames returns the milestone names in alphabetical order.
func MilestoneNames() []string {
	names := make([]string, 0, len(Milestones))
	for name := range Milestones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backend is the subset of the REST client used for estimations.
type Backend interface {
	ProjectEstimations(ctx context.Context, projectID int64) ([]domain.ProjectEstimation, error)
	UpsertEstimation(ctx context.Context, e domain.ProjectEstimation) error
}

// PersonDays is resources × duration × working days per unit, rounded to
// two places.
func PersonDays(resources, duration float64, unit domain.EstimationUnit) float64 {
	d := decimal.NewFromFloat(resources).
		Mul(decimal.NewFromFloat(duration)).
		Mul(decimal.NewFromInt(unit.WorkingDays()))
	f, _ := d.Round(2).Float64()
	return f
}

// Validate checks a row before it is sent.
func Validate(e domain.ProjectEstimation) error {
	var problems []string
	if e.ProjectID <= 0 {
		problems = append(problems, "project is required")
	}
	if e.Milestone == "" {
		problems = append(problems, "milestone is required")
	} else if deliverables, ok := Milestones[e.Milestone]; ok && e.Deliverable != "" && !contains(deliverables, e.Deliverable) {
		problems = append(problems, fmt.Sprintf("deliverable %q does not belong to %s", e.Deliverable, e.Milestone))
	}
	if e.Resources <= 0 {
		problems = append(problems, "resources must be greater than zero")
	}
	if e.Duration <= 0 {
		problems = append(problems, "duration must be greater than zero")
	}
	if !e.Unit.Valid() {
		problems = append(problems, fmt.Sprintf("unknown unit %q (want days, weeks or months)", e.Unit))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEstimation, strings.Join(problems, "; "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type Service struct {
	backend Backend
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logging.OrDiscard(logger)}
}

func (s *Service) List(ctx context.Context, projectID int64) ([]domain.ProjectEstimation, error) {
	rows, err := s.backend.ProjectEstimations(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading estimations for project %d: %w", projectID, err)
	}
	return rows, nil
}

// Upsert validates the row, recomputes person-days and sends it. Rows
// without a positive id are created.
func (s *Service) Upsert(ctx context.Context, e domain.ProjectEstimation) (domain.ProjectEstimation, error) {
	if e.Unit == "" {
		e.Unit = domain.UnitDays
	}
	if err := Validate(e); err != nil {
		return e, err
	}
	if e.ID != nil && *e.ID <= 0 {
		e.ID = nil
	}
	e.PersonDays = PersonDays(e.Resources, e.Duration, e.Unit)

	if err := s.backend.UpsertEstimation(ctx, e); err != nil {
		return e, fmt.Errorf("saving estimation for project %d: %w", e.ProjectID, err)
	}
	s.logger.Info("estimation_saved", "project_id", e.ProjectID, "milestone", e.Milestone, "person_days", e.PersonDays)
	return e, nil
}

// MilestoneTotal sums one milestone's rows.
type MilestoneTotal struct {
	Milestone  string
	Resources  float64
	PersonDays float64
}

type Totals struct {
	Resources    float64
	PersonDays   float64
	PersonWeeks  float64
	PersonMonths float64
	Milestones   []MilestoneTotal // most person-days first
}

// Summarize totals rows that have a milestone.
func Summarize(rows []domain.ProjectEstimation) Totals {
	resources, days := decimal.Zero, decimal.Zero
	byMilestone := make(map[string]*MilestoneTotal)
	var order []string

	for _, r := range rows {
		if r.Milestone == "" {
			continue
		}
		resources = resources.Add(decimal.NewFromFloat(r.Resources))
		days = days.Add(decimal.NewFromFloat(r.PersonDays))

		mt, ok := byMilestone[r.Milestone]
		if !ok {
			mt = &MilestoneTotal{Milestone: r.Milestone}
			byMilestone[r.Milestone] = mt
			order = append(order, r.Milestone)
		}
		mt.Resources = round(decimal.NewFromFloat(mt.Resources).Add(decimal.NewFromFloat(r.Resources)))
		mt.PersonDays = round(decimal.NewFromFloat(mt.PersonDays).Add(decimal.NewFromFloat(r.PersonDays)))
	}

	t := Totals{
		Resources:    round(resources),
		PersonDays:   round(days),
		PersonWeeks:  round(days.Div(decimal.NewFromInt(domain.UnitWeeks.WorkingDays()))),
		PersonMonths: round(days.Div(decimal.NewFromInt(domain.UnitMonths.WorkingDays()))),
	}
	for _, name := range order {
		t.Milestones = append(t.Milestones, *byMilestone[name])
	}
	sort.SliceStable(t.Milestones, func(i, j int) bool { return t.Milestones[i].PersonDays > t.Milestones[j].PersonDays })
	return t
}

func round(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
