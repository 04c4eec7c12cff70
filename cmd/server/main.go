package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "retail-pos/internal/adapters/web"
	"retail-pos/internal/ai"
	"retail-pos/internal/app"
	"retail-pos/internal/core"
	"retail-pos/internal/db"

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

	seq := core.NewSequenceService(pool)
	userService := core.NewUserService(pool)
	catalogService := core.NewCatalogService(pool)
	checkoutService := core.NewCheckoutService(pool, seq)
	inventoryService := core.NewInventoryService(pool)
	purchaseOrderService := core.NewPurchaseOrderService(pool, seq)
	reportingService := core.NewReportingService(pool)
	directoryService := core.NewDirectoryService(pool)

	var assistant *ai.Assistant
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		registry := ai.NewPOSRegistry(reportingService, inventoryService, catalogService)
		assistant = ai.NewAssistant(apiKey, registry)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, assistant disabled")
	}

	remote := app.NewRemoteSource(catalogService, inventoryService, reportingService)
	source, err := app.SelectReadSource(remote)
	if err != nil {
		log.Fatalf("read source: %v", err)
	}

	svc := app.NewAppService(
		userService,
		catalogService,
		checkoutService,
		inventoryService,
		purchaseOrderService,
		reportingService,
		directoryService,
		source,
		assistant,
	)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

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
