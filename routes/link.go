package routes

import (
	handlers "formlar.link/handlers/link"

	"github.com/gofiber/fiber/v2"
)

// registerPublicFormRoutes public form linklerini (örn. /<uuid>) yönetecek
// rotaları tanımlar. Diğer özel rotalardan SONRA tanımlanmalı.
func registerPublicFormRoutes(app *fiber.App) {
	submitHandler := handlers.NewFormSubmitHandler()

	app.Get("/:key", submitHandler.ShowForm)
	app.Post("/:key", submitHandler.SubmitForm)
}
