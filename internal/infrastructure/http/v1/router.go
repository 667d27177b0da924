// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/catalog"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/ledger"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/planning"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1/handlers"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1/middleware"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres"
	"github.com/codigix/Aluminium-erp-sub005/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	BOMService      *bom.Service
	LedgerService   *ledger.Service
	PlanningService *planning.Service
	CatalogService  *catalog.Service

	// JWTValidator is optional; nil runs every request as the system actor.
	JWTValidator middleware.JWTValidator

	// AuthOptional accepts anonymous requests while still attaching the actor
	// when a valid token is sent. Used for staged auth rollout.
	AuthOptional bool

	// CompressionEnabled gzips responses for clients that accept it.
	CompressionEnabled bool
}

// stockAdminRole may delete ledger entries, the only destructive correction.
const stockAdminRole = "stock-admin"

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	if cfg.CompressionEnabled {
		router.Use(middleware.Compression())
	}

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	var corrections []gin.HandlerFunc
	if cfg.JWTValidator != nil {
		if cfg.AuthOptional {
			api.Use(middleware.OptionalAuth(cfg.JWTValidator))
		} else {
			api.Use(middleware.Auth(cfg.JWTValidator))
		}
		corrections = append(corrections, middleware.RequireRole(stockAdminRole))
	}

	baseHandler := handlers.NewBaseHandler()

	bomHandler := handlers.NewBOMHandler(baseHandler, cfg.BOMService)
	bomHandler.RegisterRoutes(api.Group("/bom"))

	ledgerHandler := handlers.NewLedgerHandler(baseHandler, cfg.LedgerService)
	ledgerHandler.RegisterRoutes(api.Group("/ledger"), corrections...)

	planningHandler := handlers.NewPlanningHandler(baseHandler, cfg.PlanningService)
	planningHandler.RegisterRoutes(api.Group("/planning"))

	catalogHandler := handlers.NewCatalogHandler(baseHandler, cfg.CatalogService)
	catalogHandler.RegisterRoutes(api.Group("/catalog"))

	return router
}
