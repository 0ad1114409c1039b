package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alexanderramin/pmo/internal/domain"
)

// Interval names accepted by the capacity endpoints. An empty interval asks
// the server for change-based blocks.
const (
	IntervalWeekly  = "Weekly"
	IntervalMonthly = "Monthly"
)

// ProjectCapacity is the per-project planned/actual/available breakdown.
type ProjectCapacity struct {
	ProjectID          int64                     `json:"project_id"`
	ProjectName        string                    `json:"project_name"`
	StrategicPortfolio string                    `json:"project_strategic_portfolio"`
	ProductLine        string                    `json:"project_product_line"`
	Intervals          []domain.CapacityInterval `json:"intervals"`
	Blocks             []domain.CapacityInterval `json:"blocks"`
}

// Periods returns intervals, or blocks when the server answered in block mode.
func (p *ProjectCapacity) Periods() []domain.CapacityInterval {
	if len(p.Intervals) > 0 {
		return p.Intervals
	}
	return p.Blocks
}

// ProjectCapacity fetches capacity intervals for one project. A project
// without allocations yields an empty result rather than an error.
func (c *Client) ProjectCapacity(ctx context.Context, projectID int64, interval string) (*ProjectCapacity, error) {
	q := url.Values{}
	q.Set("interval", interval)

	var raw json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf("/project_capacity_allocation/%d", projectID), q, &raw); err != nil {
		return nil, err
	}
	out := &ProjectCapacity{ProjectID: projectID}
	if isJSONArray(raw) {
		return out, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decoding project capacity: %w", err)
	}
	return out, nil
}

// CapacityQuery filters the aggregate capacity endpoints. Empty fields are
// left to server defaults.
type CapacityQuery struct {
	StrategicPortfolio string
	ProductLine        string
	ResourceID         int64
	StartDate          string
	EndDate            string
	Interval           string
}

func (q CapacityQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("strategic_portfolio", q.StrategicPortfolio)
	set("product_line", q.ProductLine)
	set("start_date", q.StartDate)
	set("end_date", q.EndDate)
	if q.ResourceID > 0 {
		v.Set("resource_id", strconv.FormatInt(q.ResourceID, 10))
	}
	v.Set("interval", q.Interval)
	return v
}

// ResourcePeriod is one resource's share of a portfolio interval.
type ResourcePeriod struct {
	ResourceID         int64   `json:"resource_id"`
	ResourceName       string  `json:"resource_name"`
	ResourceRole       string  `json:"resource_role"`
	StrategicPortfolio string  `json:"strategic_portfolio"`
	ProductLine        string  `json:"product_line"`
	TotalCapacity      float64 `json:"total_capacity"`
	Planned            float64 `json:"allocation_hours_planned"`
	Actual             float64 `json:"allocation_hours_actual"`
	Available          float64 `json:"available_capacity"`
}

type PortfolioInterval struct {
	domain.CapacityInterval
	Resources []ResourcePeriod `json:"resources"`
}

type PortfolioCapacity struct {
	Intervals []PortfolioInterval `json:"intervals"`
}

// PortfolioCapacity fetches the portfolio-level aggregate.
func (c *Client) PortfolioCapacity(ctx context.Context, q CapacityQuery) (*PortfolioCapacity, error) {
	q.ResourceID = 0
	var out PortfolioCapacity
	if err := c.getJSON(ctx, "/resource_capacity_allocation_per_portfolio", q.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResourceCapacity is one resource's capacity over time.
type ResourceCapacity struct {
	Resource  *domain.Resource
	Intervals []domain.CapacityInterval
}

// ResourceCapacity fetches per-interval capacity for one resource. The
// server answers either {"resource_details": ..., "data": [...]} or a bare
// array of periods.
func (c *Client) ResourceCapacity(ctx context.Context, q CapacityQuery) (*ResourceCapacity, error) {
	if q.ResourceID <= 0 {
		return nil, fmt.Errorf("resource capacity: resource id is required")
	}
	q.StrategicPortfolio, q.ProductLine = "", ""

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/resource_capacity_allocation", q.values(), &raw); err != nil {
		return nil, err
	}
	out := &ResourceCapacity{}
	if isJSONArray(raw) {
		if err := json.Unmarshal(raw, &out.Intervals); err != nil {
			return nil, fmt.Errorf("decoding resource capacity: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Details *domain.Resource          `json:"resource_details"`
		Data    []domain.CapacityInterval `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding resource capacity: %w", err)
	}
	out.Resource = wrapped.Details
	out.Intervals = wrapped.Data
	return out, nil
}

func isJSONArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
