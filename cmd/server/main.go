package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"explorer/backend/internal/api"
	"explorer/backend/internal/auth"
	"explorer/backend/internal/config"
	"explorer/backend/internal/models"
	"explorer/backend/internal/provider"
	"explorer/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	tokens := auth.NewService(cfg.JWTSecret, cfg.TokenTTL)
	searchClient := provider.NewSearchClient(cfg.TavilyKey)
	imageClient := provider.NewImageClient(cfg.FluxKey)

	if cfg.TavilyKey == "" {
		log.Println("TAVILY_API_KEY not set, /search/query will be unavailable")
	}
	if cfg.FluxKey == "" {
		log.Println("FLUX_API_KEY not set, /image/generate will be unavailable")
	}

	// Initialize activity feed hub
	hub := ws.NewHub()
	go hub.Run()

	server := api.NewServer(db, cfg, tokens, searchClient, imageClient, hub)

	log.Printf("Starting HTTP server on 0.0.0.0:%s", cfg.Port)
	log.Printf("Activity feed endpoint: ws://0.0.0.0:%s/ws/activity", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, server.GetRouter()); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

// openDatabase connects to postgres when DATABASE_URL looks like a
// postgres DSN, and falls back to a local SQLite file otherwise.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.Contains(cfg.DatabaseURL, "host=") {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	}
	return gorm.Open(sqlite.Open(cfg.DatabaseURL), gormConfig)
}
