package domain

// ProjectEstimation is one milestone/deliverable row of a project's effort
// estimate. ID is nil until the server has stored the row.
type ProjectEstimation struct {
	ID          *int64         `json:"estimation_id,omitempty"`
	ProjectID   int64          `json:"project_id"`
	Milestone   string         `json:"milestone"`
	Deliverable string         `json:"deliverable,omitempty"`
	Resources   float64        `json:"resources"`
	Duration    float64        `json:"duration"`
	Unit        EstimationUnit `json:"unit"`
	PersonDays  float64        `json:"person_days"`
}
