package domain

// Uncategorized is the grouping label used when a project or resource has no
// strategic portfolio or product line.
const Uncategorized = "Uncategorized"

type Project struct {
	ID                 int64  `json:"project_id"`
	Name               string `json:"project_name"`
	StrategicPortfolio string `json:"strategic_portfolio"`
	ProductLine        string `json:"product_line"`
	Type               string `json:"project_type,omitempty"`
	Status             string `json:"current_status,omitempty"`
	RAGStatus          string `json:"rag_status,omitempty"`
	StartDateEst       string `json:"start_date_est,omitempty"`
	EndDateEst         string `json:"end_date_est,omitempty"`
}

// Portfolio returns the strategic portfolio, or Uncategorized when unset.
func (p Project) Portfolio() string {
	return CoalesceStr(p.StrategicPortfolio, Uncategorized)
}

// Line returns the product line, or Uncategorized when unset.
func (p Project) Line() string {
	return CoalesceStr(p.ProductLine, Uncategorized)
}

type Resource struct {
	ID                 int64    `json:"resource_id"`
	Name               string   `json:"resource_name"`
	Email              string   `json:"resource_email"`
	Role               string   `json:"resource_role"`
	Type               string   `json:"resource_type"`
	StrategicPortfolio string   `json:"strategic_portfolio"`
	ProductLine        string   `json:"product_line"`
	ManagerName        string   `json:"manager_name,omitempty"`
	ManagerEmail       string   `json:"manager_email,omitempty"`
	YearlyCapacity     *float64 `json:"yearly_capacity"`
}

// BusinessLine pairs a strategic portfolio with one of its product lines.
type BusinessLine struct {
	StrategicPortfolio string `json:"strategic_portfolio"`
	ProductLine        string `json:"product_line"`
}
