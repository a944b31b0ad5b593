package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meditrack/hospital-api/controllers"
	"github.com/meditrack/hospital-api/middleware"
)

// SetupScheduleRoutes configures the shift schedule, time-off and
// slot-regeneration routes. Mutations are restricted to hospital managers;
// the preview/commit pair implements the two-phase conflict protocol.
func SetupScheduleRoutes(app *fiber.App) {
	manager := middleware.RequireRole("manager", "admin")

	doctors := app.Group("/doctors", middleware.Protected())
	doctors.Get("/:id/schedule", controllers.GetDoctorSchedule)
	doctors.Put("/:id/schedule", manager, controllers.UpdateDoctorSchedule)
	doctors.Put("/:id/schedule/timings", manager, controllers.UpdateDoctorTimings)
	doctors.Put("/:id/schedule/duration", manager, controllers.UpdateDoctorDuration)
	doctors.Get("/:id/time-off", controllers.GetTimeOff)
	doctors.Post("/:id/time-off", manager, controllers.CreateTimeOff)
	doctors.Get("/:id/slots", controllers.GetDoctorSlots)

	app.Delete("/time-off/:id", middleware.Protected(), manager, controllers.DeleteTimeOff)

	app.Post("/conflicts/check", middleware.Protected(), manager, controllers.CheckConflicts)
	app.Post("/slots/regenerate", middleware.Protected(), manager, controllers.RegenerateSlots)
}
