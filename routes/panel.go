package routes

import (
	panel_handlers "formlar.link/handlers/panel"
	"formlar.link/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerPanelRoutes /panel altındaki rotaları ve middleware'leri tanımlar.
// Sadece normal kullanıcıların (IsSystem == false) erişimine izin verilir.
func registerPanelRoutes(app *fiber.App) {
	formHandler := panel_handlers.NewPanelFormHandler()
	submissionHandler := panel_handlers.NewPanelSubmissionHandler()

	panelGroup := app.Group("/panel")
	panelGroup.Use(
		middlewares.AuthMiddleware, // 1. Giriş yapmış mı?
		middlewares.RequireUser(),  // 2. Normal kullanıcı mı?
	)

	// --- Kullanıcının Kendi Formları ---
	panelGroup.Get("/forms", formHandler.ListForms)                                      // GET /panel/forms
	panelGroup.Get("/forms/create", formHandler.ShowCreateForm)                          // GET /panel/forms/create
	panelGroup.Post("/forms/create", formHandler.CreateForm)                             // POST /panel/forms/create
	panelGroup.Post("/forms/create/stencil/:stencilId", formHandler.CreateFormFromStencil) // POST /panel/forms/create/stencil/{stencilId}
	panelGroup.Get("/forms/update/:id", formHandler.ShowUpdateForm)                      // GET /panel/forms/update/{id}
	panelGroup.Post("/forms/update/:id", formHandler.UpdateForm)                         // POST /panel/forms/update/{id}
	panelGroup.Post("/forms/delete/:id", formHandler.DeleteForm)                         // POST /panel/forms/delete/{id}
	panelGroup.Delete("/forms/delete/:id", formHandler.DeleteForm)                       // DELETE /panel/forms/delete/{id}

	// --- Form Gönderimleri ---
	panelGroup.Get("/forms/:formId/submissions", submissionHandler.ListSubmissions)                // GET /panel/forms/{formId}/submissions
	panelGroup.Get("/forms/:formId/submissions/:id", submissionHandler.ShowSubmission)             // GET /panel/forms/{formId}/submissions/{id}
	panelGroup.Post("/forms/:formId/submissions/:id/spam", submissionHandler.MarkSpam)             // POST /panel/forms/{formId}/submissions/{id}/spam
	panelGroup.Post("/forms/:formId/submissions/delete/:id", submissionHandler.DeleteSubmission)   // POST /panel/forms/{formId}/submissions/delete/{id}
	panelGroup.Delete("/forms/:formId/submissions/delete/:id", submissionHandler.DeleteSubmission) // DELETE /panel/forms/{formId}/submissions/delete/{id}
}
