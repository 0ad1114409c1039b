package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alexanderramin/pmo/internal/domain"
)

// TimesheetFilter narrows GET /timesheet/{resourceId}. Zero values are not sent.
type TimesheetFilter struct {
	ProjectID int64
	From      string
	To        string
}

// Timesheet returns the weekly entries logged by one resource, newest first.
func (c *Client) Timesheet(ctx context.Context, resourceID int64, f TimesheetFilter) ([]domain.TimesheetEntry, error) {
	q := url.Values{}
	if f.ProjectID > 0 {
		q.Set("project_id", strconv.FormatInt(f.ProjectID, 10))
	}
	if f.From != "" {
		q.Set("ts_start_date", f.From)
	}
	if f.To != "" {
		q.Set("ts_end_date", f.To)
	}
	var entries []domain.TimesheetEntry
	if err := c.getJSON(ctx, fmt.Sprintf("/timesheet/%d", resourceID), q, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertTimesheet stores one weekly entry. The endpoint takes form fields.
func (c *Client) UpsertTimesheet(ctx context.Context, e domain.TimesheetEntry) error {
	form := url.Values{}
	form.Set("resource_id", strconv.FormatInt(e.ResourceID, 10))
	form.Set("resource_name", e.ResourceName)
	form.Set("resource_email_id", e.ResourceEmail)
	form.Set("project_id", strconv.FormatInt(e.ProjectID, 10))
	form.Set("project_name", e.ProjectName)
	form.Set("ts_start_date", e.WeekStart)
	form.Set("ts_end_date", e.WeekEnd)
	form.Set("weekly_project_hrs", strconv.FormatFloat(e.Hours, 'f', -1, 64))
	return c.postForm(ctx, "/timesheet/upsert", form, nil)
}
