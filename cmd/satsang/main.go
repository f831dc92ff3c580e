package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ashram-web/satsang-server/app/controllers"
	"github.com/ashram-web/satsang-server/internal/pkg/cache"
	"github.com/ashram-web/satsang-server/internal/pkg/database"
	"github.com/ashram-web/satsang-server/internal/pkg/download"
	"github.com/ashram-web/satsang-server/internal/pkg/env"
	"github.com/ashram-web/satsang-server/internal/pkg/router"
	"github.com/ashram-web/satsang-server/internal/pkg/s3store"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	var signer download.Signer
	if cfg, err := s3store.LoadConfig(); err != nil {
		log.Printf("Object storage disabled: %v", err)
	} else if client, err := s3store.NewClient(cfg); err != nil {
		log.Printf("Object storage unavailable: %v", err)
	} else {
		signer = client
	}

	controllers.InitializeControllers(database.GetDB(), signer)

	app := fiber.New(fiber.Config{
		AppName: "satsang-server",
	})

	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app)

	return app
}
