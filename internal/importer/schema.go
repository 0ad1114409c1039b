// Package importer stages allocation plans read from YAML or JSON files.
package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlanFile is the top-level structure of an allocation plan file. JSON
// files parse too since the decoder accepts flow-style YAML.
type PlanFile struct {
	Mode        string       `yaml:"mode"`
	EntityID    int64        `yaml:"entity_id"`
	Defaults    *RowDefaults `yaml:"defaults,omitempty"`
	Allocations []PlanRow    `yaml:"allocations"`
}

// RowDefaults fill the fields a new row leaves out.
type RowDefaults struct {
	StartDate  string   `yaml:"start_date,omitempty"`
	EndDate    string   `yaml:"end_date,omitempty"`
	Pct        *float64 `yaml:"allocation_pct,omitempty"`
	HrsPerWeek *float64 `yaml:"allocation_hrs_per_week,omitempty"`
}

// PlanRow is one allocation to add, update or delete. Rows without an id
// are new and need a counterpart: a project in resource mode, a resource
// in project mode.
type PlanRow struct {
	ID            int64    `yaml:"id,omitempty"`
	CounterpartID int64    `yaml:"counterpart_id,omitempty"`
	StartDate     *string  `yaml:"start_date,omitempty"`
	EndDate       *string  `yaml:"end_date,omitempty"`
	Pct           *float64 `yaml:"allocation_pct,omitempty"`
	HrsPerWeek    *float64 `yaml:"allocation_hrs_per_week,omitempty"`
	Delete        bool     `yaml:"delete,omitempty"`
}

// IsNew reports whether the row creates an allocation.
func (r PlanRow) IsNew() bool { return r.ID == 0 }

// LoadPlanFile reads and parses a plan file.
func LoadPlanFile(path string) (*PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePlan(data)
}

// ParsePlan parses plan file contents.
func ParsePlan(data []byte) (*PlanFile, error) {
	var plan PlanFile
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	return &plan, nil
}
