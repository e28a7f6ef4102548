package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/export"
	"github.com/brickgo/crm-bfa-go/internal/format"
	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/port"
	"github.com/brickgo/crm-bfa-go/internal/stats"
)

var tracer = otel.Tracer("service/prospect")

const prospectCacheKey = "prospects:all"

// recentCount is how many leads the activity panel shows.
const recentCount = 5

// ProspectService owns the lead list: CRUD, search, the dashboard
// aggregation and the CSV export. Reads go through a TTL cache that the
// refresh coordinator invalidates when the change feed fires.
type ProspectService struct {
	prospects port.ProspectStore
	profiles  port.ProfileStore
	settings  *SettingsService
	cache     port.Cache[[]domain.Prospect]
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewProspectService creates the prospect service with all dependencies
// injected. now defaults to time.Now when nil.
func NewProspectService(
	prospects port.ProspectStore,
	profiles port.ProfileStore,
	settings *SettingsService,
	cache port.Cache[[]domain.Prospect],
	metrics *observability.Metrics,
	logger *zap.Logger,
	now func() time.Time,
) *ProspectService {
	if now == nil {
		now = time.Now
	}
	return &ProspectService{
		prospects: prospects,
		profiles:  profiles,
		settings:  settings,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       now,
	}
}

// InvalidateCache drops the cached list. Called by the refresh coordinator
// and after every local mutation.
func (s *ProspectService) InvalidateCache() {
	s.cache.Delete(prospectCacheKey)
}

// fetchAll returns the full prospect list, newest first, from cache when
// fresh.
func (s *ProspectService) fetchAll(ctx context.Context) ([]domain.Prospect, error) {
	if cached, ok := s.cache.Get(prospectCacheKey); ok {
		s.metrics.IncrCacheHit("prospects")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("prospects")

	list, err := s.prospects.ListProspects(ctx, port.ProspectFilter{})
	if err != nil {
		s.metrics.IncrExternalError("prospects")
		return nil, err
	}
	s.cache.Set(prospectCacheKey, list)
	return list, nil
}

// List returns prospects filtered by free-text query and/or status. Both
// filters are applied in memory on the cached list, the way the dashboard
// search box works.
func (s *ProspectService) List(ctx context.Context, query, status string) ([]domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Prospect.List")
	defer span.End()
	span.SetAttributes(attribute.String("filter.status", status))

	list, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	list = stats.Filter(list, query)
	if status == "" {
		return list, nil
	}

	want := domain.NormalizeStatus(status)
	out := make([]domain.Prospect, 0, len(list))
	for _, p := range list {
		if p.NormalizedStatus().Code == want.Code {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListForRep returns one rep's prospects straight from the store, bypassing
// the shared cache. This is the field-app "my leads" view.
func (s *ProspectService) ListForRep(ctx context.Context, repID string) ([]domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Prospect.ListForRep")
	defer span.End()
	span.SetAttributes(attribute.String("rep.id", repID))

	return s.prospects.ListProspects(ctx, port.ProspectFilter{AssignedTo: repID})
}

// Create validates and inserts a new lead. New leads always start in status
// "new" regardless of what the client sent.
func (s *ProspectService) Create(ctx context.Context, req *domain.CreateProspectRequest) (*domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Prospect.Create")
	defer span.End()

	if strings.TrimSpace(req.FirstName) == "" {
		return nil, &domain.ErrValidation{Field: "first_name", Message: "required"}
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, &domain.ErrValidation{Field: "last_name", Message: "required"}
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, &domain.ErrValidation{Field: "phone", Message: "required"}
	}

	p, err := s.prospects.CreateProspect(ctx, req, domain.NormalizeStatus("new").CanonicalValue())
	if err != nil {
		s.metrics.IncrExternalError("prospects")
		return nil, err
	}
	s.InvalidateCache()

	s.logger.Info("prospect created",
		zap.String("prospect_id", p.ID),
		zap.String("name", p.FullName()),
	)
	return p, nil
}

// Update patches the sent fields of a lead. Legacy status spellings read
// back verbatim, but writes must use a recognized spelling so the
// aggregation keeps a meaning for every new row.
func (s *ProspectService) Update(ctx context.Context, id string, req *domain.UpdateProspectRequest) (*domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Prospect.Update")
	defer span.End()
	span.SetAttributes(attribute.String("prospect.id", id))

	updates := make(map[string]any)
	if req.Status != nil {
		if domain.NormalizeStatus(*req.Status).Code == domain.StatusUnknown {
			return nil, &domain.ErrValidation{Field: "status", Message: "unknown status"}
		}
		updates["status"] = *req.Status
	}
	if req.DealValue != nil {
		if *req.DealValue < 0 {
			return nil, &domain.ErrValidation{Field: "deal_value", Message: "must not be negative"}
		}
		updates["deal_value"] = *req.DealValue
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			updates["assigned_to"] = nil
		} else {
			updates["assigned_to"] = *req.AssignedTo
		}
	}
	if req.Need != nil {
		updates["need"] = *req.Need
	}
	if req.Comments != nil {
		updates["comments"] = *req.Comments
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no updatable fields sent"}
	}

	p, err := s.prospects.UpdateProspect(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.InvalidateCache()

	s.logger.Info("prospect updated",
		zap.String("prospect_id", id),
		zap.Int("fields", len(updates)),
	)
	return p, nil
}

// Delete removes a lead.
func (s *ProspectService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Prospect.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("prospect.id", id))

	if err := s.prospects.DeleteProspect(ctx, id); err != nil {
		return err
	}
	s.InvalidateCache()

	s.logger.Info("prospect deleted", zap.String("prospect_id", id))
	return nil
}

// Recent returns the latest leads with the assignee name joined in.
func (s *ProspectService) Recent(ctx context.Context) ([]domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Prospect.Recent")
	defer span.End()

	list, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > recentCount {
		list = list[:recentCount]
	}
	return list, nil
}

// Dashboard assembles the admin dashboard: prospect aggregates and the
// active rep count, fetched concurrently.
func (s *ProspectService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "Prospect.Dashboard")
	defer span.End()

	start := s.now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	var (
		list       []domain.Prospect
		activeReps int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := s.fetchAll(gCtx)
		if err != nil {
			s.logger.Error("dashboard: prospect fetch failed", zap.Error(err))
			return err
		}
		list = l
		return nil
	})
	g.Go(func() error {
		n, err := s.profiles.CountActiveReps(gCtx)
		if err != nil {
			s.logger.Error("dashboard: rep count failed", zap.Error(err))
			s.metrics.IncrExternalError("profiles")
			return err
		}
		activeReps = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	summary := stats.Summarize(list, now)
	weekly := len(stats.NewerThan(list, now, 7))
	fmtr := s.settings.Formatter(ctx)

	top := make([]domain.AssigneeStat, 0, len(summary.TopAssignees))
	for _, r := range summary.TopAssignees {
		top = append(top, domain.AssigneeStat{
			AssigneeID:     r.AssigneeID,
			Name:           r.Name,
			Leads:          r.Leads,
			Won:            r.Won,
			SalesRevenue:   r.SalesRevenue,
			FormattedSales: fmtr.Money(r.SalesRevenue),
			Conversion:     r.Conversion,
		})
	}

	return &domain.DashboardStats{
		TotalCount:       summary.TotalCount,
		WonCount:         summary.WonCount,
		NewThisWeek:      weekly,
		ActiveReps:       activeReps,
		Revenue:          summary.Revenue,
		FormattedRevenue: fmtr.Money(summary.Revenue),
		ConversionRate:   summary.ConversionRate,
		FormattedRate:    format.Percent(summary.ConversionRate),
		DailyCounts:      summary.DailyCounts[:],
		TopAssignees:     top,
		StatusCounts:     summary.StatusCounts,
	}, nil
}

// Activity returns the rep's activity screen: their own leads rolled up by
// state, the count created in the trailing week, and the latest few.
func (s *ProspectService) Activity(ctx context.Context, repID string) (*domain.ActivityFeed, error) {
	ctx, span := tracer.Start(ctx, "Prospect.Activity")
	defer span.End()
	span.SetAttributes(attribute.String("rep.id", repID))

	list, err := s.ListForRep(ctx, repID)
	if err != nil {
		return nil, err
	}

	feed := &domain.ActivityFeed{
		Total:       len(list),
		NewThisWeek: len(stats.NewerThan(list, s.now(), 7)),
	}
	for _, p := range list {
		switch domain.NormalizeStatus(p.Status).Code {
		case domain.StatusNew:
			feed.New++
		case domain.StatusQualified:
			feed.Qualified++
		}
	}

	recent := list
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	feed.Recent = recent
	return feed, nil
}

// ExportCSV renders the current list (after the same query/status filters
// as List) as a CSV download.
func (s *ProspectService) ExportCSV(ctx context.Context, query, status string) (string, []byte, error) {
	ctx, span := tracer.Start(ctx, "Prospect.ExportCSV")
	defer span.End()

	list, err := s.List(ctx, query, status)
	if err != nil {
		return "", nil, err
	}

	data, err := export.ProspectsCSV(list)
	if err != nil {
		return "", nil, err
	}
	s.metrics.IncrExport()

	s.logger.Info("prospects exported", zap.Int("rows", len(list)))
	return export.Filename(s.now()), data, nil
}
