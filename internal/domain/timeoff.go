package domain

// TimeOff is an inclusive date range during which a resource is away.
type TimeOff struct {
	ResourceID   int64  `json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"`
	StartDate    string `json:"timeoff_start_date"`
	EndDate      string `json:"timeoff_end_date"`
	Reason       string `json:"reason"`
}

// TimeOffReasons are the reasons the server accepts, in display order.
var TimeOffReasons = []string{
	"Vacation",
	"Bank Holiday",
	"Fixed Holiday",
	"Optional Holiday",
	"Annual Leave",
	"Casual Leave",
	"Sick Leave",
	"Parental Leave",
	"Bereavement Leave",
	"Jury Duty",
	"Other",
}
