package flashmessages

import (
	"encoding/json"

	"formlar.link/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	FlashSuccessKey  = "flash_success"
	FlashErrorKey    = "flash_error"
	flashFormDataKey = "flash_form_data"
)

// SetFlashMessage bir sonraki istekte gösterilecek mesajı session'a yazar.
func SetFlashMessage(c *fiber.Ctx, key string, message string) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	sess.Set(key, message)
	return sess.Save()
}

// GetFlashMessages mesajları okur ve session'dan temizler.
func GetFlashMessages(c *fiber.Ctx) map[string]string {
	messages := map[string]string{}
	sess, err := utils.SessionStart(c)
	if err != nil {
		return messages
	}

	for _, key := range []string{FlashSuccessKey, FlashErrorKey} {
		if value, ok := sess.Get(key).(string); ok && value != "" {
			messages[key] = value
			sess.Delete(key)
		}
	}
	_ = sess.Save()
	return messages
}

// SetFlashFormData doğrulama hatası sonrası form verisini saklar.
func SetFlashFormData(c *fiber.Ctx, data any) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sess.Set(flashFormDataKey, string(raw))
	return sess.Save()
}

// GetFlashFormData saklanan form verisini okur ve temizler.
func GetFlashFormData(c *fiber.Ctx) map[string]any {
	data := map[string]any{}
	sess, err := utils.SessionStart(c)
	if err != nil {
		return data
	}
	if raw, ok := sess.Get(flashFormDataKey).(string); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &data)
		sess.Delete(flashFormDataKey)
		_ = sess.Save()
	}
	return data
}
