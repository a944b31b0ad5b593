package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meditrack/hospital-api/controllers"
	"github.com/meditrack/hospital-api/middleware"
)

// SetupQueueRoutes configures the daily patient queue routes
func SetupQueueRoutes(app *fiber.App) {
	app.Post("/queue/check-in", middleware.Protected(), controllers.CheckIn)

	doctors := app.Group("/doctors", middleware.Protected())
	doctors.Get("/:id/queue", controllers.GetQueue)
	doctors.Post("/:id/queue/next", controllers.CallNext)
}
