package handlers // handlers/panel paketi

import (
	"errors"
	"fmt"
	"net/http"

	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/flashmessages"
	"formlar.link/pkg/queryparams"
	"formlar.link/pkg/renderer"
	"formlar.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PanelSubmissionHandler kullanıcının formlarına gelen gönderimler için handler.
type PanelSubmissionHandler struct {
	service     services.ISubmissionService
	formService services.IFormService
}

// NewPanelSubmissionHandler yeni bir PanelSubmissionHandler örneği oluşturur.
func NewPanelSubmissionHandler() *PanelSubmissionHandler {
	return &PanelSubmissionHandler{
		service:     services.NewSubmissionService(),
		formService: services.NewFormService(),
	}
}

// formFromParams :formId parametresini çözer ve yetki kontrolü yapar.
func (h *PanelSubmissionHandler) formFromParams(c *fiber.Ctx, userID uint) (*models.Form, error) {
	formID, err := c.ParamsInt("formId")
	if err != nil || formID <= 0 {
		return nil, services.ErrFormNotFound
	}
	return h.formService.GetFormByID(c.UserContext(), uint(formID), userID)
}

// ListSubmissions bir formun gönderimlerini listeler. Status parametresi ile
// spam veya tamamlanmamış gönderimler filtrelenebilir.
func (h *PanelSubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	form, err := h.formFromParams(c, userID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Form bulunamadı veya yetkiniz yok.")
		return c.Redirect("/panel/forms")
	}

	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	paginatedResult, err := h.service.GetSubmissionsForForm(c.UserContext(), form.ID, params)

	renderData := fiber.Map{
		"Title":  "Gönderimler: " + form.Detail.Title,
		"Form":   form,
		"Result": paginatedResult,
		"Params": params,
	}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Gönderimler listelenirken hata."
		renderData["Result"] = &queryparams.PaginatedResult{Data: []models.Submission{}, Meta: queryparams.PaginationMeta{}}
		configslog.Log.Error("Panel - ListSubmissions Error", zap.Uint("formID", form.ID), zap.Error(err))
	}
	return renderer.Render(c, "panel/submissions/list", "layouts/panel_layout", renderData, http.StatusOK)
}

// ShowSubmission tek bir gönderimin alan değerlerini gösterir.
func (h *PanelSubmissionHandler) ShowSubmission(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	form, err := h.formFromParams(c, userID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Form bulunamadı veya yetkiniz yok.")
		return c.Redirect("/panel/forms")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect(fmt.Sprintf("/panel/forms/%d/submissions", form.ID))
	}

	submission, err := h.service.GetSubmissionByID(c.UserContext(), uint(id))
	if err != nil || submission.FormID != form.ID {
		if err != nil && !errors.Is(err, services.ErrSubmissionNotFound) {
			configslog.Log.Error("Panel - ShowSubmission Error", zap.Int("id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Gönderim bulunamadı.")
		return c.Redirect(fmt.Sprintf("/panel/forms/%d/submissions", form.ID))
	}

	renderData := fiber.Map{
		"Title":      "Gönderim Detayı",
		"Form":       form,
		"Submission": submission,
		"Values":     submission.FieldValues,
	}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))
	return renderer.Render(c, "panel/submissions/show", "layouts/panel_layout", renderData)
}

// MarkSpam gönderimi elle spam olarak işaretler veya işareti kaldırır.
func (h *PanelSubmissionHandler) MarkSpam(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	form, err := h.formFromParams(c, userID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Form bulunamadı veya yetkiniz yok.")
		return c.Redirect("/panel/forms")
	}
	listPath := fmt.Sprintf("/panel/forms/%d/submissions", form.ID)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect(listPath)
	}

	isSpam := c.FormValue("is_spam", "true") == "true"
	err = h.service.MarkSubmissionSpam(c.UserContext(), form.ID, uint(id), isSpam, "Kullanıcı tarafından işaretlendi")
	if err != nil {
		configslog.Log.Error("Panel - MarkSpam Error", zap.Int("id", id), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "İşaretleme hatası: "+err.Error())
	} else if isSpam {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Gönderim spam olarak işaretlendi.")
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Spam işareti kaldırıldı.")
	}
	return c.Redirect(listPath, fiber.StatusSeeOther)
}

// DeleteSubmission gönderimi siler.
func (h *PanelSubmissionHandler) DeleteSubmission(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	form, err := h.formFromParams(c, userID)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Form bulunamadı veya yetkiniz yok.")
		return c.Redirect("/panel/forms")
	}
	listPath := fmt.Sprintf("/panel/forms/%d/submissions", form.ID)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect(listPath)
	}

	if err := h.service.DeleteSubmission(c.UserContext(), form.ID, uint(id), userID); err != nil {
		if !errors.Is(err, services.ErrSubmissionNotFound) {
			configslog.Log.Error("Panel - DeleteSubmission Error", zap.Int("id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Silme hatası: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Gönderim silindi.")
	}
	return c.Redirect(listPath, fiber.StatusSeeOther)
}
