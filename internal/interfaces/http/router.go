package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmadist-core/internal/application/assembly"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Documents *assembly.Service
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	documentHandler := NewDocumentHandler(deps.Documents, deps.Logger)
	documents := protected.Group("/documents")
	documents.Post("/", documentHandler.Create)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Put("/:id", documentHandler.Update)
	documents.Patch("/:id/enabled", documentHandler.SetEnabled)

	protected.Post("/tax-preview", documentHandler.TaxPreview)
}
