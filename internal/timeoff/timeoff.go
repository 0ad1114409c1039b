// Package timeoff records resource absences and refuses ranges that overlap
// an existing entry for the same resource.
package timeoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/logging"
)

var (
	ErrInvalidTimeOff = errors.New("invalid time off")
	ErrOverlap        = errors.New("the selected date range overlaps with an existing time off entry for this resource")
)

// Backend is the subset of the REST client used for time off.
type Backend interface {
	ListTimeOff(ctx context.Context) ([]domain.TimeOff, error)
	TimeOffForResource(ctx context.Context, resourceID int64) ([]domain.TimeOff, error)
	AddTimeOff(ctx context.Context, t domain.TimeOff) error
}

// Validate checks an entry before it is sent.
func Validate(t domain.TimeOff) error {
	if t.ResourceID <= 0 {
		return fmt.Errorf("%w: resource is required", ErrInvalidTimeOff)
	}
	start, err := time.Parse(domain.DateLayout, t.StartDate)
	if err != nil {
		return fmt.Errorf("%w: invalid start date %q (want YYYY-MM-DD)", ErrInvalidTimeOff, t.StartDate)
	}
	end, err := time.Parse(domain.DateLayout, t.EndDate)
	if err != nil {
		return fmt.Errorf("%w: invalid end date %q (want YYYY-MM-DD)", ErrInvalidTimeOff, t.EndDate)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidTimeOff, t.EndDate, t.StartDate)
	}
	if !slices.Contains(domain.TimeOffReasons, t.Reason) {
		return fmt.Errorf("%w: unknown reason %q", ErrInvalidTimeOff, t.Reason)
	}
	return nil
}

// Overlapping returns the entries whose inclusive range touches [start, end].
// Dates compare as YYYY-MM-DD strings; entries with empty dates never match.
func Overlapping(existing []domain.TimeOff, start, end string) []domain.TimeOff {
	var out []domain.TimeOff
	for _, e := range existing {
		if e.StartDate == "" || e.EndDate == "" {
			continue
		}
		if start <= e.EndDate && end >= e.StartDate {
			out = append(out, e)
		}
	}
	return out
}

type Service struct {
	backend Backend
	logger  *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logging.OrDiscard(logger)}
}

// List returns one resource's entries, or everyone's when resourceID is 0,
// ordered by start date.
func (s *Service) List(ctx context.Context, resourceID int64) ([]domain.TimeOff, error) {
	var (
		entries []domain.TimeOff
		err     error
	)
	if resourceID > 0 {
		entries, err = s.backend.TimeOffForResource(ctx, resourceID)
	} else {
		entries, err = s.backend.ListTimeOff(ctx)
	}
	if err != nil {
		if resourceID > 0 {
			return nil, fmt.Errorf("loading time off for resource %d: %w", resourceID, err)
		}
		return nil, fmt.Errorf("loading time off: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].StartDate != entries[j].StartDate {
			return entries[i].StartDate < entries[j].StartDate
		}
		return entries[i].ResourceID < entries[j].ResourceID
	})
	return entries, nil
}

// Add validates t, checks it against the resource's existing entries and
// records it.
func (s *Service) Add(ctx context.Context, t domain.TimeOff) error {
	if err := Validate(t); err != nil {
		return err
	}
	existing, err := s.backend.TimeOffForResource(ctx, t.ResourceID)
	if err != nil {
		return fmt.Errorf("loading time off for resource %d: %w", t.ResourceID, err)
	}
	if hits := Overlapping(existing, t.StartDate, t.EndDate); len(hits) > 0 {
		s.logger.Debug("timeoff_overlap", "resource_id", t.ResourceID, "start", t.StartDate, "end", t.EndDate, "existing", len(hits))
		return fmt.Errorf("%w (%s to %s)", ErrOverlap, hits[0].StartDate, hits[0].EndDate)
	}
	if err := s.backend.AddTimeOff(ctx, t); err != nil {
		return fmt.Errorf("adding time off for resource %d: %w", t.ResourceID, err)
	}
	s.logger.Info("timeoff_added", "resource_id", t.ResourceID, "start", t.StartDate, "end", t.EndDate, "reason", t.Reason)
	return nil
}
