package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"labscope/adapters/api"
	"labscope/adapters/excel"
	"labscope/adapters/postgres"
	statsengine "labscope/adapters/stats/engine"
	"labscope/app"
	"labscope/domain/catalog"
	"labscope/internal"
	"labscope/internal/compare"
	"labscope/internal/config"
	"labscope/internal/fetch"
	"labscope/internal/store"
	"labscope/internal/vocab"
	"labscope/ports"
	"labscope/ui"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	source, err := buildSource(cfg)
	if err != nil {
		log.Fatalf("source setup failed: %v", err)
	}

	eng := statsengine.NewStatsEngine(statsengine.Options{
		GroupLimit:  cfg.Engine.GroupLimit,
		BucketWidth: cfg.Engine.BucketWidth,
	})

	sessions := make(map[catalog.Resource]*app.ExplorerService)
	for _, resource := range []catalog.Resource{catalog.ResourceTests, catalog.ResourcePricing} {
		st := store.New()
		ctrl := fetch.NewController(resource, source, st, fetch.Options{
			Delay:      cfg.Engine.DebounceDelay,
			FetchLimit: cfg.Engine.FetchLimit,
			Logger:     logger,
		})
		cmp := compare.NewManager(st, cfg.Engine.CompareLimit)
		sess := app.NewExplorerService(resource, st, eng, cmp, ctrl, app.ExplorerOptions{
			GroupBy:        catalog.DimDepartment,
			PageSize:       cfg.Engine.PageSize,
			TypeaheadLimit: cfg.Engine.TypeaheadLimit,
		})
		sess.Load()
		sessions[resource] = sess
	}

	loader := vocab.NewLoader(source, cfg.Engine.VocabConcurrency, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	loader.Prefetch(ctx, catalog.Dimensions)
	cancel()

	server := ui.NewServer(sessions, loader, logger)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// buildSource picks the catalog source adapter from configuration
func buildSource(cfg *config.Config) (ports.CatalogSource, error) {
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		return postgres.NewCatalogSource(cfg.Source.DatabaseURL)
	case config.SourceWorkbook:
		return excel.NewSource(cfg.Source.WorkbookPath), nil
	default:
		return api.NewSource(cfg.Source.BaseURL, cfg.Source.Timeout), nil
	}
}
