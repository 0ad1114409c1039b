package domain

// TimesheetEntry is the actual hours one resource logged against one
// project for a Monday-to-Sunday week.
type TimesheetEntry struct {
	ResourceID    int64   `json:"resource_id"`
	ResourceName  string  `json:"resource_name"`
	ResourceEmail string  `json:"resource_email_id"`
	ProjectID     int64   `json:"project_id"`
	ProjectName   string  `json:"project_name"`
	WeekStart     string  `json:"ts_start_date"`
	WeekEnd       string  `json:"ts_end_date"`
	Hours         float64 `json:"weekly_project_hrs"`
}
