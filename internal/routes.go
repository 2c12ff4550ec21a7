package internal

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	v1 "raporbot/api/v1"
)

// MountAppRoutes mounts all application routes on the fiber app.
func MountAppRoutes(app *fiber.App, a *Application) {
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handler := v1.NewHandler(a.Config, a.Logger, a.NewSession)
	handler.Register(app)
}
