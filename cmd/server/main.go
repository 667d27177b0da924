// Package main is the entry point for the manufacturing core API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/catalog"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/ledger"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/planning"
	v1 "github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1/middleware"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres/bom_repo"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/codigix/Aluminium-erp-sub005/pkg/logger"
	"github.com/codigix/Aluminium-erp-sub005/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting mfg-core server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	bomRepo := bom_repo.NewBOMRepo(txManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	itemRepo := catalog_repo.NewItemRepo(txManager)

	// --- Sub-assembly classification ---
	classifier := bom.NewClassifier(splitEnvList("BOM_SUBASSEMBLY_TOKENS"))
	if rule := getEnv("BOM_CLASSIFIER_RULE", ""); rule != "" {
		if err := classifier.WithRule(rule); err != nil {
			log.Fatalw("invalid classification rule", "error", err)
		}
		log.Infow("classification rule installed", "rule", rule)
	}

	// --- Domain services ---
	catalogService := catalog.NewService(itemRepo)

	resolver := bom.NewResolver(bomRepo)
	engine := bom.NewEngine(resolver, classifier).WithItemLookup(catalogService)
	if maxLines := getEnvInt("BOM_MAX_EXPLODED_LINES", 0); maxLines > 0 {
		engine = engine.WithMaxLines(maxLines)
	}
	bomService := bom.NewService(bomRepo, resolver, engine, txManager, catalogService)

	numbers := numerator.New(pool)
	ledgerService := ledger.NewService(ledgerRepo, txManager, numbers)

	planningService := planning.NewService(bomService, ledgerService)

	// --- Auth ---
	var jwtValidator middleware.JWTValidator
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		jwtValidator = middleware.NewHMACValidator(secret)
	} else {
		log.Warn("JWT_SECRET not set, API runs without authentication")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		Logger:             log,
		BOMService:         bomService,
		LedgerService:      ledgerService,
		PlanningService:    planningService,
		CatalogService:     catalogService,
		JWTValidator:       jwtValidator,
		AuthOptional:       getEnv("JWT_OPTIONAL", "false") == "true",
		CompressionEnabled: getEnv("HTTP_COMPRESSION", "true") == "true",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func splitEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
