package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"costedge/backend/config"
	"costedge/backend/internal/api/handler"
	"costedge/backend/internal/api/middleware"
	"costedge/backend/pkg/jwt"
	"costedge/backend/pkg/redis"
)

// Setup builds the gin engine. A nil jwtMgr leaves /api/v1 open; a nil rdb
// disables rate limiting.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.UseJSONFieldNames()

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── health ──
	r.GET("/health", h.Health.Health)

	allow := roleGuard(jwtMgr != nil)
	limit := middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
	upload := middleware.BodyLimit(cfg.Server.MaxUploadBytes())

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	if jwtMgr != nil {
		v1.Use(middleware.JWTAuth(jwtMgr))
	} else {
		logger.Warn("auth disabled: /api/v1 accepts unauthenticated requests")
	}
	{
		// BOM changes
		bom := v1.Group("/bom-changes")
		{
			bom.GET("", h.BomChange.List)
			bom.GET("/:id", h.BomChange.Get)
			bom.GET("/part-number/:partNumber", h.BomChange.GetByPartNumber)
			bom.POST("", allow(jwt.RoleAdmin, jwt.RoleManager), h.BomChange.Create)
			bom.POST("/batch", allow(jwt.RoleAdmin, jwt.RoleDataEntry), limit, h.BomChange.BatchCreate)
			bom.POST("/import", allow(jwt.RoleAdmin, jwt.RoleDataEntry), limit, upload, h.BomChange.Import)
			bom.PUT("/:id", allow(jwt.RoleAdmin, jwt.RoleManager), h.BomChange.Update)
			bom.DELETE("/:id", allow(jwt.RoleAdmin), h.BomChange.Delete)

			bom.GET("/status/:status", h.BomChange.ListByStatus)
			bom.GET("/department/:department", h.BomChange.ListByDepartment)
			bom.GET("/model/:model", h.BomChange.ListByModel)
			bom.GET("/supplier/:supplier", h.BomChange.ListBySupplier)
			bom.GET("/change-type/:changeType", h.BomChange.ListByChangeType)
			bom.GET("/model/:model/status/:status", h.BomChange.ListByModelAndStatus)
			bom.GET("/supplier/:supplier/change-type/:changeType", h.BomChange.ListBySupplierAndChangeType)
			bom.GET("/date-range", h.BomChange.ListByDateRange)
			bom.GET("/search", h.BomChange.Search)

			bom.GET("/summary/model", h.BomChange.SummaryByModel)
			bom.GET("/summary/change-type", h.BomChange.SummaryByChangeType)
			bom.GET("/high-impact", h.BomChange.HighImpact)
			bom.GET("/cost-savings", h.BomChange.CostSavings)
			bom.GET("/export", h.BomChange.Export)
		}

		// milestone costs
		milestones := v1.Group("/milestones")
		{
			milestones.GET("", h.Milestone.List)
			milestones.GET("/calendar.ics", h.Milestone.Calendar)
			milestones.GET("/:id", h.Milestone.Get)
			milestones.POST("", allow(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleDataEntry), h.Milestone.Create)
			milestones.PUT("/:id", allow(jwt.RoleAdmin, jwt.RoleDataEntry), h.Milestone.Update)
			milestones.DELETE("/:id", allow(jwt.RoleAdmin), h.Milestone.Delete)
			milestones.PUT("/:id/approval", allow(jwt.RoleAdmin, jwt.RoleManager), h.Milestone.SubmitApproval)

			milestones.GET("/project/:projectID", h.Milestone.ListByProjectID)
			milestones.GET("/name/:projectName", h.Milestone.ListByProjectName)
			milestones.GET("/milestone/:milestone", h.Milestone.ListByMilestone)
			milestones.GET("/approval-status/:status", h.Milestone.ListByApprovalStatus)
		}

		// import costs
		importCosts := v1.Group("/import-costs")
		{
			importCosts.GET("", h.ImportCost.List)
			importCosts.GET("/:id", h.ImportCost.Get)
			importCosts.GET("/supplier/:supplier", h.ImportCost.ListBySupplier)
			importCosts.POST("", allow(jwt.RoleAdmin, jwt.RoleManager), h.ImportCost.Create)
			importCosts.POST("/batch", allow(jwt.RoleAdmin, jwt.RoleDataEntry), limit, h.ImportCost.BatchCreate)
			importCosts.PUT("/:id", allow(jwt.RoleAdmin, jwt.RoleManager), h.ImportCost.Update)
			importCosts.DELETE("/:id", allow(jwt.RoleAdmin), h.ImportCost.Delete)
		}
	}

	return r
}

// roleGuard returns RoleAuth when auth is on, a pass-through otherwise.
func roleGuard(enabled bool) func(roles ...string) gin.HandlerFunc {
	return func(roles ...string) gin.HandlerFunc {
		if !enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RoleAuth(roles...)
	}
}
