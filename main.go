package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/meditrack/hospital-api/config"
	"github.com/meditrack/hospital-api/cron"
	"github.com/meditrack/hospital-api/db"
	"github.com/meditrack/hospital-api/redis"
	"github.com/meditrack/hospital-api/routes"
	"github.com/meditrack/hospital-api/utils"
)

func main() {
	app := fiber.New()
	db.Init()
	redis.InitRedis()
	utils.InitializeLogger()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.SetupScheduleRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupQueueRoutes(app)

	cron.StartCronJobs()

	log.Fatal(app.Listen(":" + config.AppConfig.AppPort))
}
