package routes

import (
	dashboard_handlers "formlar.link/handlers/dashboard"
	"formlar.link/middlewares"

	"github.com/gofiber/fiber/v2"
)

// registerDashboardRoutes /dashboard altındaki rotaları tanımlar.
// Sadece sistem kullanıcılarının erişimine izin verilir.
func registerDashboardRoutes(app *fiber.App) {
	stencilHandler := dashboard_handlers.NewDashboardStencilHandler()

	dashboardGroup := app.Group("/dashboard")
	dashboardGroup.Use(
		middlewares.AuthMiddleware,
		middlewares.RequireSystem(),
	)

	// --- Form Şablonları ---
	dashboardGroup.Get("/stencils", stencilHandler.ListStencils)                // GET /dashboard/stencils
	dashboardGroup.Get("/stencils/create", stencilHandler.ShowCreateStencil)    // GET /dashboard/stencils/create
	dashboardGroup.Post("/stencils/create", stencilHandler.CreateStencil)       // POST /dashboard/stencils/create
	dashboardGroup.Get("/stencils/update/:id", stencilHandler.ShowUpdateStencil) // GET /dashboard/stencils/update/{id}
	dashboardGroup.Post("/stencils/update/:id", stencilHandler.UpdateStencil)   // POST /dashboard/stencils/update/{id}
	dashboardGroup.Post("/stencils/delete/:id", stencilHandler.DeleteStencil)   // POST /dashboard/stencils/delete/{id}
	dashboardGroup.Delete("/stencils/delete/:id", stencilHandler.DeleteStencil) // DELETE /dashboard/stencils/delete/{id}
}
