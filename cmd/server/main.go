package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/partmatch/backend/config"
	httpDelivery "github.com/partmatch/backend/internal/delivery/http"
	"github.com/partmatch/backend/internal/domain"
	"github.com/partmatch/backend/internal/infrastructure/cache"
	"github.com/partmatch/backend/internal/infrastructure/catalog"
	"github.com/partmatch/backend/internal/infrastructure/hierarchy"
	"github.com/partmatch/backend/internal/usecase"
)

// catalogStore is what main needs from either store implementation.
type catalogStore interface {
	domain.CatalogRepository
	UpsertItems(ctx context.Context, items []domain.InventoryItem) error
	Count(ctx context.Context) (int, error)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting partmatch backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("catalogType", cfg.Catalog.Type))

	ctx := context.Background()

	// Initialize infrastructure dependencies
	store, err := openCatalog(cfg)
	if err != nil {
		logger.Fatal("failed to open catalog store", zap.Error(err))
	}

	if cfg.Catalog.SeedPath != "" {
		items, err := catalog.LoadSeedFile(cfg.Catalog.SeedPath)
		if err != nil {
			logger.Fatal("failed to load catalog seed", zap.Error(err))
		}
		if err := store.UpsertItems(ctx, items); err != nil {
			logger.Fatal("failed to seed catalog", zap.Error(err))
		}
		logger.Info("catalog seeded", zap.Int("items", len(items)))
	}

	if count, err := store.Count(ctx); err == nil {
		logger.Info("catalog ready", zap.Int("items", count))
	}

	hierarchySource := hierarchy.NewFileSource(cfg.Hierarchy.Path)
	provider := usecase.NewHierarchyProvider(hierarchySource)

	// Initialize usecase layer
	filter := usecase.NewProgressiveFilter(store, provider, logger, usecase.FilterConfig{
		ContinueThreshold:  cfg.Matching.ContinueThreshold,
		FuzzyThreshold:     cfg.Matching.FuzzyThreshold,
		InclusiveThreshold: cfg.Matching.InclusiveThreshold,
	})
	scorer := usecase.NewScoringService(usecase.LevenshteinRatio, cfg.Matching.FuzzyThreshold, logger)
	reviewer := usecase.NewReviewService(cfg.Matching.ReviewThreshold)
	service := usecase.NewMatchingService(filter, scorer, reviewer, usecase.MatchDefaults{
		MaxMatches: cfg.Matching.MaxMatches,
		MinScore:   cfg.Matching.MinScore,
	}, logger)
	batch := usecase.NewBatchMatcher(service, cfg.Batch.Concurrency, cfg.Batch.QueryRate, logger)

	logger.Info("matching engine configured",
		zap.Float64("minScore", cfg.Matching.MinScore),
		zap.Float64("fuzzyThreshold", cfg.Matching.FuzzyThreshold),
		zap.Int("continueThreshold", cfg.Matching.ContinueThreshold),
		zap.Int("batchConcurrency", cfg.Batch.Concurrency))

	// Create HTTP handler with dependencies
	memoryCache := cache.NewMemoryCache()
	handler := httpDelivery.NewHandler(service, batch, memoryCache, cfg.Cache.TTL, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func openCatalog(cfg *config.Config) (catalogStore, error) {
	normalize := catalog.NormalizeFunc(usecase.Normalize)
	similarity := catalog.SimilarityFunc(usecase.LevenshteinRatio)

	switch cfg.Catalog.Type {
	case "memory":
		return catalog.NewMemoryStore(normalize, similarity), nil
	default:
		return catalog.OpenSQLite(cfg.Catalog.Path, normalize, similarity)
	}
}
