package handlers

import (
	"errors"

	"formlar.link/configs/configslog"
	"formlar.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FormSubmitHandler public form görüntüleme ve gönderim isteklerini yönetir.
type FormSubmitHandler struct {
	formService       services.IFormService
	submissionService services.ISubmissionService
}

// NewFormSubmitHandler yeni bir FormSubmitHandler örneği oluşturur.
func NewFormSubmitHandler() *FormSubmitHandler {
	return &FormSubmitHandler{
		formService:       services.NewFormService(),
		submissionService: services.NewSubmissionService(),
	}
}

// ShowForm gelen :key parametresine göre formu gösterir.
func (h *FormSubmitHandler) ShowForm(c *fiber.Ctx) error {
	key := c.Params("key")
	if len(key) != 36 { // UUID uzunluğu
		configslog.SLog.Warnf("Geçersiz formatta form anahtarı denendi: %s", key)
		return h.renderNotFound(c, "Geçersiz Bağlantı")
	}

	form, err := h.formService.GetFormByKey(c.UserContext(), key)
	if err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			return h.renderNotFound(c, "Form Bulunamadı")
		}
		configslog.Log.Error("ShowForm: GetFormByKey error", zap.String("key", key), zap.Error(err))
		return h.renderError(c, "Form yüklenirken bir sorun oluştu.")
	}

	pages, err := form.Detail.Pages()
	if err != nil {
		configslog.Log.Error("ShowForm: alan düzeni çözümlenemedi", zap.Uint("formID", form.ID), zap.Error(err))
		return h.renderError(c, "Form yüklenirken bir sorun oluştu.")
	}

	return c.Render("public/form_fill", fiber.Map{
		"Form":   form,
		"Detail": form.Detail,
		"Pages":  pages,
	})
}

// SubmitForm formu işleyip sonucu gösterir. Gönderim hattının tamamı
// (spam kontrolü, kalıcılaştırma, bildirim ve entegrasyon dağıtımı)
// servis katmanında çalışır.
func (h *FormSubmitHandler) SubmitForm(c *fiber.Ctx) error {
	key := c.Params("key")
	if len(key) != 36 {
		return h.renderNotFound(c, "Geçersiz Bağlantı")
	}

	values := map[string]any{}
	c.Request().PostArgs().VisitAll(func(k []byte, v []byte) {
		values[string(k)] = string(v)
	})

	ctx := services.WithRequestMeta(c.UserContext(), services.RequestMeta{
		Referrer:  c.Get(fiber.HeaderReferer),
		IPAddress: c.IP(),
	})

	var userID *uint
	if id, ok := c.Locals("userID").(uint); ok && id != 0 {
		userID = &id
	}

	submission, err := h.submissionService.SubmitForm(ctx, key, values, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSubmissionFormNotFound):
			return h.renderNotFound(c, "Form Bulunamadı")
		case errors.Is(err, services.ErrFormNotAcceptingNew):
			return h.renderError(c, "Bu form şu anda gönderim kabul etmiyor.")
		case errors.Is(err, services.ErrSubmissionUserRequired):
			return c.Redirect("/auth/login", fiber.StatusSeeOther)
		case errors.Is(err, services.ErrSubmissionRejected):
			return h.renderError(c, "Gönderiminiz kabul edilmedi.")
		default:
			configslog.Log.Error("SubmitForm: gönderim hatası", zap.String("key", key), zap.Error(err))
			return h.renderError(c, "Gönderim kaydedilirken bir sorun oluştu.")
		}
	}

	// Spam gönderimlere de normal teşekkür akışı gösterilir.
	detail := submission.Form.Detail
	if detail.RedirectURLOnSubmit != "" {
		return c.Redirect(detail.RedirectURLOnSubmit, fiber.StatusFound)
	}
	return c.Render("public/form_done", fiber.Map{
		"Form":    submission.Form,
		"Message": detail.ConfirmationMessage,
	})
}

// renderNotFound standart 404 sayfasını render eder.
func (h *FormSubmitHandler) renderNotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"Title":   "Bulunamadı",
		"Message": message,
	}, "layouts/error_layout")
}

// renderError standart 500 hata sayfasını render eder.
func (h *FormSubmitHandler) renderError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{
		"Title":   "Sunucu Hatası",
		"Message": message,
	}, "layouts/error_layout")
}
