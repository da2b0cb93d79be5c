package renderer

import (
	"formlar.link/pkg/flashmessages"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKeyView = "FlashSuccess"
	FlashErrorKeyView   = "FlashError"
)

// Render verilen view'ı layout ile birlikte çizer.
func Render(c *fiber.Ctx, view string, layout string, data fiber.Map, status ...int) error {
	if len(status) > 0 {
		c.Status(status[0])
	}
	if data == nil {
		data = fiber.Map{}
	}
	return c.Render(view, data, layout)
}

// SetFlashMessages flash mesajlarını view verisine taşır.
func SetFlashMessages(data fiber.Map, messages map[string]string) {
	if msg, ok := messages[flashmessages.FlashSuccessKey]; ok {
		data[FlashSuccessKeyView] = msg
	}
	if msg, ok := messages[flashmessages.FlashErrorKey]; ok {
		data[FlashErrorKeyView] = msg
	}
}
