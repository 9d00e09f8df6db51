package main

import (
	"log"

	"github.com/marmgroup/atlas-best-practices/internal/api"
	"github.com/marmgroup/atlas-best-practices/internal/config"
	"github.com/marmgroup/atlas-best-practices/internal/database"

	// Import to register the residence analyzer
	_ "github.com/marmgroup/atlas-best-practices/internal/analysis"
)

func main() {
	cfg := config.Load()

	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	router := api.SetupRouter(cfg, database.GetDB())

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
