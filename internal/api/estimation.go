package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/alexanderramin/pmo/internal/domain"
)

// ProjectEstimations lists the estimation rows of one project.
func (c *Client) ProjectEstimations(ctx context.Context, projectID int64) ([]domain.ProjectEstimation, error) {
	q := url.Values{}
	q.Set("project_id", strconv.FormatInt(projectID, 10))
	var rows []domain.ProjectEstimation
	if err := c.getJSON(ctx, "/project_estimation", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertEstimation creates or updates one estimation row.
func (c *Client) UpsertEstimation(ctx context.Context, e domain.ProjectEstimation) error {
	return c.postJSON(ctx, "/upsert_project_estimation", e, nil)
}
