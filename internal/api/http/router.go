package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-garage-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Parking *handlers.ParkingHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	parking := app.Group("/api/parking")
	parking.Post("/checkin", cfg.Parking.CheckIn)
	parking.Post("/checkin-with-upgrade", cfg.Parking.CheckInWithUpgrade)
	parking.Post("/checkout", cfg.Parking.CheckOut)
	parking.Post("/async-checkin", cfg.Parking.AsyncCheckIn)
	parking.Get("/garage-state", cfg.Parking.GarageState)
	parking.Get("/vehicles-by-ticket-type/:ticketType", cfg.Parking.VehiclesByTicketType)
	parking.Get("/generate-random-data", cfg.Parking.GenerateRandomData)
}
