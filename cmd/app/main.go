package main

import (
	"context"
	"log"
	"os"

	"smartshodhai/internal/adapters/cli"
	"smartshodhai/internal/ai"
	"smartshodhai/internal/app"
	"smartshodhai/internal/core"
	"smartshodhai/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <ask|scan|apply|speak|stock|dash> [args]")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}

	ids := core.NewIDGenerator()
	clock := core.SystemClock()
	catalog := core.NewCatalogService(pool, ids)
	orders := core.NewOrderService(pool)
	customers := core.NewCustomerService(pool)
	reconciler := core.NewReconciler(ids, clock)
	scans := core.NewScanService(pool, reconciler, catalog, orders, customers)

	svc := app.NewAppService(pool, app.Services{
		Catalog:   catalog,
		Orders:    orders,
		Customers: customers,
		Scans:     scans,
		Analytics: core.NewAnalyticsService(pool, clock),
		Users:     core.NewUserService(pool),
		Assistant: ai.NewAssistant(apiKey),
		Scanner:   ai.NewScanner(apiKey),
		Speech:    ai.NewSpeech(apiKey),
		IDs:       ids,
		Clock:     clock,
	})

	cli.Run(ctx, svc, os.Args[1:])
}
