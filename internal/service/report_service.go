package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"costedge/backend/internal/dto"
	"costedge/backend/internal/repository"
)

const (
	reportCachePrefix     = "report:bom:"
	reportKeyByModel      = reportCachePrefix + "summary:model"
	reportKeyByChangeType = reportCachePrefix + "summary:change-type"
	defaultReportCacheTTL = 5 * time.Minute
)

// ReportCache JSON cache used for BOM summaries. Implemented by pkg/redis.Client.
type ReportCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ReportService BOM impact reports.
//
// Summaries are cached under report:bom:* when a cache is configured; every
// BOM write drops the prefix. Without a cache every call hits the database.
type ReportService interface {
	SummaryByModel(ctx context.Context) (map[string]dto.ImpactSummary, error)
	SummaryByChangeType(ctx context.Context) (map[string]dto.ImpactSummary, error)
	// HighImpact changes with impact strictly above threshold.
	HighImpact(ctx context.Context, threshold string) ([]dto.BomChangeResponse, error)
	// CostSavings changes with impact strictly below threshold.
	CostSavings(ctx context.Context, threshold string) ([]dto.BomChangeResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	cache  ReportCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewReportService creates a ReportService. cache may be nil; ttl <= 0 uses five minutes.
func NewReportService(repo *repository.Repository, cache ReportCache, ttl time.Duration, logger *zap.Logger) ReportService {
	if ttl <= 0 {
		ttl = defaultReportCacheTTL
	}
	return &reportService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *reportService) SummaryByModel(ctx context.Context) (map[string]dto.ImpactSummary, error) {
	return s.summary(ctx, reportKeyByModel, s.repo.BomChange.SummaryByModel)
}

func (s *reportService) SummaryByChangeType(ctx context.Context) (map[string]dto.ImpactSummary, error) {
	return s.summary(ctx, reportKeyByChangeType, s.repo.BomChange.SummaryByChangeType)
}

func (s *reportService) HighImpact(ctx context.Context, threshold string) ([]dto.BomChangeResponse, error) {
	t, err := parseThreshold(threshold)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.BomChange.ListByImpactAbove(ctx, t)
	if err != nil {
		s.logger.Error("high impact query failed", zap.String("threshold", t.String()), zap.Error(err))
		return nil, err
	}
	return toBomChangeResponses(recs), nil
}

func (s *reportService) CostSavings(ctx context.Context, threshold string) ([]dto.BomChangeResponse, error) {
	t, err := parseThreshold(threshold)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.BomChange.ListByImpactBelow(ctx, t)
	if err != nil {
		s.logger.Error("cost savings query failed", zap.String("threshold", t.String()), zap.Error(err))
		return nil, err
	}
	return toBomChangeResponses(recs), nil
}

// summary reads through the cache. A cache error falls back to the database.
func (s *reportService) summary(ctx context.Context, key string, query func(context.Context) ([]repository.GroupSummary, error)) (map[string]dto.ImpactSummary, error) {
	if s.cache != nil {
		var cached map[string]dto.ImpactSummary
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	rows, err := query(ctx)
	if err != nil {
		s.logger.Error("summary query failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	out := make(map[string]dto.ImpactSummary, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = dto.ImpactSummary{
			Changes: r.Changes,
			Impact:  nullDecimalPtr(r.Impact),
		}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}
