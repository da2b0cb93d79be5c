package middlewares

import (
	"formlar.link/pkg/flashmessages"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware giriş yapmamış kullanıcıları login sayfasına yönlendirir.
func AuthMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Bu sayfa için giriş yapmalısınız.")
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}
	return c.Next()
}

// GuestMiddleware giriş yapmış kullanıcıları login/register sayfalarından uzaklaştırır.
func GuestMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if ok && userID != 0 {
		if isSystem, _ := c.Locals("isSystem").(bool); isSystem {
			return c.Redirect("/dashboard/stencils", fiber.StatusFound)
		}
		return c.Redirect("/panel/forms", fiber.StatusFound)
	}
	return c.Next()
}

// RequireUser sadece normal kullanıcıların (IsSystem == false) erişimine izin verir.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isSystem, _ := c.Locals("isSystem").(bool); isSystem {
			return c.Redirect("/dashboard/stencils", fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireSystem sadece sistem kullanıcılarının erişimine izin verir.
func RequireSystem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isSystem, _ := c.Locals("isSystem").(bool); !isSystem {
			return c.Redirect("/panel/forms", fiber.StatusFound)
		}
		return c.Next()
	}
}
