package service

import (
	"go.uber.org/zap"

	"costedge/backend/config"
	"costedge/backend/internal/repository"
)

// Service aggregate entry point of every service.
type Service struct {
	BomChange  BomChangeService
	Milestone  MilestoneService
	ImportCost ImportCostService
	Report     ReportService
	Export     ExportService
}

// NewService wires every service. cache may be nil.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache ReportCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		BomChange:  NewBomChangeService(repo, cache, logger),
		Milestone:  NewMilestoneService(repo, logger),
		ImportCost: NewImportCostService(repo, logger),
		Report:     NewReportService(repo, cache, cfg.Redis.CacheTTL, logger),
		Export:     NewExportService(repo, logger),
	}
}
