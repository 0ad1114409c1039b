package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/pmo/internal/domain"
)

// optFloat decodes a nullable number that the server may also send as a
// numeric string or an empty string.
type optFloat struct {
	v *float64
}

func (o *optFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.v = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			o.v = nil
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		o.v = &f
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	o.v = &f
	return nil
}

// allocationRecord is one row of the allocation listing endpoints. Rows
// that only carry actual hours have no allocation_id.
type allocationRecord struct {
	AllocationID       *int64   `json:"allocation_id"`
	ProjectID          int64    `json:"project_id"`
	ResourceID         int64    `json:"resource_id"`
	StartDate          *string  `json:"allocation_start_date"`
	EndDate            *string  `json:"allocation_end_date"`
	Pct                optFloat `json:"allocation_pct"`
	HrsPerWeek         optFloat `json:"allocation_hrs_per_week"`
	ResourceName       string   `json:"resource_name"`
	ResourceEmail      string   `json:"resource_email"`
	ResourceRole       string   `json:"resource_role"`
	ProjectName        string   `json:"project_name"`
	ProjectPortfolio   string   `json:"project_strategic_portfolio"`
	ProjectProductLine string   `json:"project_product_line"`
	StrategicPortfolio string   `json:"strategic_portfolio"`
	ProductLine        string   `json:"product_line"`
}

func (r allocationRecord) toDomain() domain.Allocation {
	a := domain.Allocation{
		ProjectID:          r.ProjectID,
		ResourceID:         r.ResourceID,
		Pct:                r.Pct.v,
		HrsPerWeek:         r.HrsPerWeek.v,
		State:              domain.StatePersisted,
		ProjectName:        r.ProjectName,
		StrategicPortfolio: domain.CoalesceStr(r.ProjectPortfolio, r.StrategicPortfolio),
		ProductLine:        domain.CoalesceStr(r.ProjectProductLine, r.ProductLine),
		ResourceName:       r.ResourceName,
		ResourceEmail:      r.ResourceEmail,
		ResourceRole:       r.ResourceRole,
	}
	if r.AllocationID != nil {
		a.ID = *r.AllocationID
	}
	if r.StartDate != nil {
		a.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		a.EndDate = *r.EndDate
	}
	return a
}

// toAllocations converts listing rows, dropping rows without an allocation id.
func toAllocations(rows []allocationRecord) []domain.Allocation {
	out := make([]domain.Allocation, 0, len(rows))
	for _, r := range rows {
		if r.AllocationID == nil {
			continue
		}
		out = append(out, r.toDomain())
	}
	return out
}
