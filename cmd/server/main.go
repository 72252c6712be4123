package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/storeadmin/internal/config"
	"github.com/example/storeadmin/internal/database"
	"github.com/example/storeadmin/internal/routes"
	"github.com/example/storeadmin/internal/storage"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	store, err := storage.NewS3Store(cfg)
	if err != nil {
		log.Fatalf("failed to build storage client: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "Store Admin Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, store, cfg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
