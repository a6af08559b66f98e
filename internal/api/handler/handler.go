package handler

import (
	"costedge/backend/internal/repository"
	"costedge/backend/internal/service"
)

// Handler aggregate entry point of every handler.
type Handler struct {
	BomChange  *BomChangeHandler
	Milestone  *MilestoneHandler
	ImportCost *ImportCostHandler
	Health     *HealthHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(svc *service.Service, repo *repository.Repository) *Handler {
	return &Handler{
		BomChange:  NewBomChangeHandler(svc.BomChange, svc.Report, svc.Export),
		Milestone:  NewMilestoneHandler(svc.Milestone),
		ImportCost: NewImportCostHandler(svc.ImportCost),
		Health:     NewHealthHandler(repo),
	}
}
