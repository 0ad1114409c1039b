package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/spf13/pflag"
)

// idList is a flag and argument type accepting comma-separated positive or
// negative ids. Repeating the flag appends.
type idList []int64

var _ pflag.Value = (*idList)(nil)

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(s string) error {
	ids, err := parseIDs(s)
	if err != nil {
		return err
	}
	*l = append(*l, ids...)
	return nil
}

func (l *idList) Type() string { return "ids" }

// parseIDs splits "1,2, -3" into ids. Zero is rejected.
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids given")
	}
	return ids, nil
}

// parseArgIDs parses every positional argument as an id list.
func parseArgIDs(args []string) ([]int64, error) {
	var out idList
	for _, a := range args {
		if err := out.Set(a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseEntityID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// dateFlag holds an optional YYYY-MM-DD value, checked at parse time.
type dateFlag string

var _ pflag.Value = (*dateFlag)(nil)

func (d *dateFlag) String() string { return string(*d) }

func (d *dateFlag) Set(s string) error {
	if err := validateOptionalDate(s); err != nil {
		return fmt.Errorf("%q: %w", s, err)
	}
	*d = dateFlag(s)
	return nil
}

func (d *dateFlag) Type() string { return "date" }

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// intervalFlag holds the capacity aggregation interval. Empty leaves the
// configured default.
type intervalFlag string

var _ pflag.Value = (*intervalFlag)(nil)

func (f *intervalFlag) String() string { return string(*f) }

func (f *intervalFlag) Set(s string) error {
	switch {
	case strings.EqualFold(s, api.IntervalWeekly):
		*f = api.IntervalWeekly
	case strings.EqualFold(s, api.IntervalMonthly):
		*f = api.IntervalMonthly
	default:
		return fmt.Errorf("want weekly or monthly")
	}
	return nil
}

func (f *intervalFlag) Type() string { return "interval" }

// entityFlags selects the editor mode and entity from --resource/--project.
type entityFlags struct {
	resource int64
	project  int64
}

func (f *entityFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&f.resource, "resource", 0, "Resource ID (edit by resource)")
	fs.Int64Var(&f.project, "project", 0, "Project ID (edit by project)")
}

// resolve returns the chosen mode and entity. Neither flag set yields an
// empty mode; both set is an error.
func (f *entityFlags) resolve() (domain.EditorMode, int64, error) {
	switch {
	case f.resource > 0 && f.project > 0:
		return "", 0, fmt.Errorf("use either --resource or --project, not both")
	case f.resource > 0:
		return domain.ModeResource, f.resource, nil
	case f.project > 0:
		return domain.ModeProject, f.project, nil
	case f.resource < 0 || f.project < 0:
		return "", 0, fmt.Errorf("ids must be positive")
	}
	return "", 0, nil
}
