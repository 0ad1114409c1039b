// Package dashboard builds capacity charts from the server's aggregate
// endpoints and groups them by strategic portfolio and product line.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alexanderramin/pmo/internal/api"
	"github.com/alexanderramin/pmo/internal/domain"
	"github.com/alexanderramin/pmo/internal/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the per-project fan-out.
const DefaultConcurrency = 8

// Source is the subset of the REST client the dashboard reads from.
type Source interface {
	ProjectCapacity(ctx context.Context, projectID int64, interval string) (*api.ProjectCapacity, error)
	PortfolioCapacity(ctx context.Context, q api.CapacityQuery) (*api.PortfolioCapacity, error)
	ResourceCapacity(ctx context.Context, q api.CapacityQuery) (*api.ResourceCapacity, error)
}

type Config struct {
	Interval    string
	Concurrency int
}

func DefaultConfig() Config {
	return Config{Interval: api.IntervalWeekly, Concurrency: DefaultConcurrency}
}

type Service struct {
	source Source
	cfg    Config
	logger *slog.Logger
}

func NewService(source Source, cfg Config, logger *slog.Logger) *Service {
	if cfg.Interval == "" {
		cfg.Interval = api.IntervalWeekly
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Service{source: source, cfg: cfg, logger: logging.OrDiscard(logger)}
}

// Dashboard is the grouped per-project view plus the projects whose fetch failed.
type Dashboard struct {
	Groups []PortfolioGroup
	Failed []int64
}

// Charts counts the charts across all groups.
func (d *Dashboard) Charts() int {
	n := 0
	for _, g := range d.Groups {
		for _, l := range g.Lines {
			n += len(l.Projects)
		}
	}
	return n
}

// Build fetches every project's chart and groups the successes.
func (s *Service) Build(ctx context.Context, projects []domain.Project) (*Dashboard, error) {
	charts, err := s.ProjectCharts(ctx, projects)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Groups: Group(projects, charts)}
	for i, c := range charts {
		if c == nil {
			d.Failed = append(d.Failed, projects[i].ID)
		}
	}
	return d, nil
}

// ProjectCharts fetches capacity for every project concurrently. The result
// is aligned with projects; a failed fetch leaves a nil entry and does not
// stop the others. Only cancellation of ctx is returned as an error.
func (s *Service) ProjectCharts(ctx context.Context, projects []domain.Project) ([]*Chart, error) {
	charts := make([]*Chart, len(projects))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, p := range projects {
		g.Go(func() error {
			pc, err := s.source.ProjectCapacity(ctx, p.ID, s.cfg.Interval)
			if err != nil {
				s.logger.Warn("project capacity unavailable", "project_id", p.ID, "error", err)
				return nil
			}
			chart := BuildChart(domain.CoalesceStr(p.Name, pc.ProjectName), pc.Periods())
			chart.ProjectID = p.ID
			charts[i] = &chart
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading project charts: %w", err)
	}
	return charts, nil
}

// Portfolio fetches the portfolio aggregate and charts it along with the
// per-resource totals over the whole range.
func (s *Service) Portfolio(ctx context.Context, q api.CapacityQuery) (*PortfolioView, error) {
	if q.Interval == "" {
		q.Interval = s.cfg.Interval
	}
	pc, err := s.source.PortfolioCapacity(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading portfolio capacity: %w", err)
	}

	periods := make([]domain.CapacityInterval, 0, len(pc.Intervals))
	for _, iv := range pc.Intervals {
		periods = append(periods, iv.CapacityInterval)
	}
	title := domain.CoalesceStr(q.StrategicPortfolio, "All portfolios")
	return &PortfolioView{
		Chart:     BuildChart(title, periods),
		Resources: ResourceTotals(pc),
	}, nil
}

// ResourceSeries fetches one resource's capacity over time.
func (s *Service) ResourceSeries(ctx context.Context, q api.CapacityQuery) (*Chart, error) {
	if q.Interval == "" {
		q.Interval = s.cfg.Interval
	}
	rc, err := s.source.ResourceCapacity(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading resource capacity: %w", err)
	}
	title := fmt.Sprintf("Resource %d", q.ResourceID)
	if rc.Resource != nil && rc.Resource.Name != "" {
		title = rc.Resource.Name
	}
	chart := BuildChart(title, rc.Intervals)
	return &chart, nil
}

// PortfolioGroup holds one strategic portfolio's product lines, sorted by name.
type PortfolioGroup struct {
	Portfolio string
	Lines     []LineGroup
}

type LineGroup struct {
	ProductLine string
	Projects    []ProjectChart
}

type ProjectChart struct {
	Project domain.Project
	Chart   *Chart
}

// Group joins charts back to their projects (charts[i] belongs to
// projects[i]) and groups them by portfolio then product line. Nil charts
// are skipped. Missing names group under domain.Uncategorized.
func Group(projects []domain.Project, charts []*Chart) []PortfolioGroup {
	byPortfolio := make(map[string]map[string][]ProjectChart)
	for i, p := range projects {
		if i >= len(charts) || charts[i] == nil {
			continue
		}
		portfolio, line := p.Portfolio(), p.Line()
		if byPortfolio[portfolio] == nil {
			byPortfolio[portfolio] = make(map[string][]ProjectChart)
		}
		byPortfolio[portfolio][line] = append(byPortfolio[portfolio][line], ProjectChart{Project: p, Chart: charts[i]})
	}

	groups := make([]PortfolioGroup, 0, len(byPortfolio))
	for portfolio, lines := range byPortfolio {
		g := PortfolioGroup{Portfolio: portfolio}
		for line, pcs := range lines {
			sort.SliceStable(pcs, func(i, j int) bool { return pcs[i].Project.Name < pcs[j].Project.Name })
			g.Lines = append(g.Lines, LineGroup{ProductLine: line, Projects: pcs})
		}
		sort.Slice(g.Lines, func(i, j int) bool { return g.Lines[i].ProductLine < g.Lines[j].ProductLine })
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Portfolio < groups[j].Portfolio })
	return groups
}
