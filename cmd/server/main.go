package main

import (
	"log"

	"github.com/joho/godotenv"

	"linkup/config"
	"linkup/internal/database"
	"linkup/internal/di"
	"linkup/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.NewLogger("linkup", cfg.LogLevel)

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	server, err := di.InitializeServer(cfg, db.SQL(), logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
