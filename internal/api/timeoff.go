package api

import (
	"context"
	"fmt"

	"github.com/alexanderramin/pmo/internal/domain"
)

// ListTimeOff returns every resource's time off.
func (c *Client) ListTimeOff(ctx context.Context) ([]domain.TimeOff, error) {
	var entries []domain.TimeOff
	if err := c.getJSON(ctx, "/timeoff", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) TimeOffForResource(ctx context.Context, resourceID int64) ([]domain.TimeOff, error) {
	var entries []domain.TimeOff
	if err := c.getJSON(ctx, fmt.Sprintf("/timeoff/%d", resourceID), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddTimeOff records one entry. The server does not check for overlaps.
func (c *Client) AddTimeOff(ctx context.Context, t domain.TimeOff) error {
	t.ResourceName = ""
	return c.postJSON(ctx, "/timeoff", t, nil)
}
