package api

import (
	"context"
	"net/url"

	"github.com/alexanderramin/pmo/internal/domain"
)

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.getJSON(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) ListResources(ctx context.Context) ([]domain.Resource, error) {
	var resources []domain.Resource
	if err := c.getJSON(ctx, "/resources", nil, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (c *Client) ListBusinessLines(ctx context.Context) ([]domain.BusinessLine, error) {
	var lines []domain.BusinessLine
	if err := c.getJSON(ctx, "/business_lines", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ListStrategicPortfolios returns the distinct portfolio names.
func (c *Client) ListStrategicPortfolios(ctx context.Context) ([]string, error) {
	var rows []domain.BusinessLine
	if err := c.getJSON(ctx, "/strategic_portfolios", nil, &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.StrategicPortfolio != "" {
			names = append(names, r.StrategicPortfolio)
		}
	}
	return names, nil
}

// ListProductLines returns the product lines under one portfolio.
func (c *Client) ListProductLines(ctx context.Context, portfolio string) ([]domain.BusinessLine, error) {
	var lines []domain.BusinessLine
	if err := c.getJSON(ctx, "/product_lines/"+url.PathEscape(portfolio), nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
