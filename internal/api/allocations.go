package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alexanderramin/pmo/internal/domain"
)

// AllocationPayload is one element of the POST /allocate body. A nil ID
// asks the server to create the allocation; a set ID upserts it.
type AllocationPayload struct {
	ID         *int64   `json:"allocation_id,omitempty"`
	ProjectID  int64    `json:"project_id"`
	ResourceID int64    `json:"resource_id"`
	StartDate  string   `json:"allocation_start_date"`
	EndDate    string   `json:"allocation_end_date"`
	Pct        *float64 `json:"allocation_pct"`
	HrsPerWeek *float64 `json:"allocation_hrs_per_week"`
}

// PayloadFor builds the write payload for an allocation. The ID is only
// included for persisted allocations.
func PayloadFor(a domain.Allocation) AllocationPayload {
	p := AllocationPayload{
		ProjectID:  a.ProjectID,
		ResourceID: a.ResourceID,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
		Pct:        a.Pct,
		HrsPerWeek: a.HrsPerWeek,
	}
	if a.ID > 0 {
		id := a.ID
		p.ID = &id
	}
	return p
}

// ListAllocations returns every allocation known to the server.
func (c *Client) ListAllocations(ctx context.Context) ([]domain.Allocation, error) {
	var rows []allocationRecord
	if err := c.getJSON(ctx, "/allocations", nil, &rows); err != nil {
		return nil, err
	}
	return toAllocations(rows), nil
}

// AllocationsForResource returns the allocations of one resource.
func (c *Client) AllocationsForResource(ctx context.Context, resourceID int64) ([]domain.Allocation, error) {
	var rows []allocationRecord
	path := fmt.Sprintf("/allocations/resource/%d", resourceID)
	if err := c.getJSON(ctx, path, nil, &rows); err != nil {
		return nil, err
	}
	return toAllocations(rows), nil
}

// AllocationsForProjects returns the allocations of one or more projects.
func (c *Client) AllocationsForProjects(ctx context.Context, projectIDs ...int64) ([]domain.Allocation, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, id := range projectIDs {
		q.Add("project_ids", strconv.FormatInt(id, 10))
	}
	var rows []allocationRecord
	if err := c.getJSON(ctx, "/allocations/project", q, &rows); err != nil {
		return nil, err
	}
	return toAllocations(rows), nil
}

// Allocate sends one batch of allocations to POST /allocate.
func (c *Client) Allocate(ctx context.Context, batch []AllocationPayload) error {
	if len(batch) == 0 {
		return nil
	}
	return c.postJSON(ctx, "/allocate", batch, nil)
}

// DeleteAllocation removes a persisted allocation.
func (c *Client) DeleteAllocation(ctx context.Context, allocationID int64) error {
	if allocationID <= 0 {
		return fmt.Errorf("delete allocation: id %d was never persisted", allocationID)
	}
	return c.delete(ctx, fmt.Sprintf("/allocations/%d", allocationID))
}
