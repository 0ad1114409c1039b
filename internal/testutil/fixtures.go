package testutil

import (
	"sync/atomic"
	"time"

	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/google/uuid"
)

var testIDCounter atomic.Int64

func nextID() int64 {
	return testIDCounter.Add(1)
}

// Allocation options
type AllocationOption func(*domain.Allocation)

func WithDates(start, end string) AllocationOption {
	return func(a *domain.Allocation) {
		a.StartDate = start
		a.EndDate = end
	}
}

func WithPct(p float64) AllocationOption {
	return func(a *domain.Allocation) {
		a.Pct = domain.Float64Ptr(p)
	}
}

func WithHrsPerWeek(h float64) AllocationOption {
	return func(a *domain.Allocation) {
		a.HrsPerWeek = domain.Float64Ptr(h)
	}
}

func WithAllocationID(id int64) AllocationOption {
	return func(a *domain.Allocation) {
		a.ID = id
	}
}

// NewTestAllocation returns a persisted allocation with a fresh positive id
// and a first-quarter date range.
func NewTestAllocation(projectID, resourceID int64, opts ...AllocationOption) domain.Allocation {
	a := domain.Allocation{
		ID:         nextID(),
		ProjectID:  projectID,
		ResourceID: resourceID,
		StartDate:  "2025-01-06",
		EndDate:    "2025-03-28",
		State:      domain.StatePersisted,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Resource options
type ResourceOption func(*domain.Resource)

func WithYearlyCapacity(hours float64) ResourceOption {
	return func(r *domain.Resource) {
		r.YearlyCapacity = domain.Float64Ptr(hours)
	}
}

func WithResourceLine(portfolio, productLine string) ResourceOption {
	return func(r *domain.Resource) {
		r.StrategicPortfolio = portfolio
		r.ProductLine = productLine
	}
}

func WithManager(name string) ResourceOption {
	return func(r *domain.Resource) {
		r.ManagerName = name
	}
}

func NewTestResource(id int64, name string, opts ...ResourceOption) domain.Resource {
	r := domain.Resource{
		ID:    id,
		Name:  name,
		Email: "user" + uuid.NewString()[:8] + "@example.com",
		Role:  "Engineer",
		Type:  "Employee",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectLine(portfolio, productLine string) ProjectOption {
	return func(p *domain.Project) {
		p.StrategicPortfolio = portfolio
		p.ProductLine = productLine
	}
}

func WithProjectStatus(status string) ProjectOption {
	return func(p *domain.Project) {
		p.Status = status
	}
}

func NewTestProject(id int64, name string, opts ...ProjectOption) domain.Project {
	p := domain.Project{
		ID:           id,
		Name:         name,
		Status:       "Active",
		RAGStatus:    "Green",
		StartDateEst: "2025-01-01",
		EndDateEst:   "2025-12-31",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewTestSaveRecord returns a successful save record for a resource.
func NewTestSaveRecord(entityID int64, savedAt time.Time) *domain.SaveRecord {
	return &domain.SaveRecord{
		ID:       uuid.NewString(),
		Mode:     domain.ModeResource,
		EntityID: entityID,
		Updates:  1,
		Success:  true,
		SavedAt:  savedAt,
	}
}
