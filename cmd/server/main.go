package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "smartshodhai/internal/adapters/web"
	"smartshodhai/internal/ai"
	"smartshodhai/internal/app"
	"smartshodhai/internal/core"
	"smartshodhai/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
