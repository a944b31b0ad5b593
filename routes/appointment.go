package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meditrack/hospital-api/controllers"
	"github.com/meditrack/hospital-api/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App) {
	appointment := app.Group("/appointments", middleware.Protected())
	appointment.Get("/", controllers.GetAllAppointments)
	appointment.Get("/:id", controllers.GetAppointment)
	appointment.Post("/", controllers.CreateAppointment)
	appointment.Patch("/:id/status", controllers.UpdateAppointmentStatus)
}
