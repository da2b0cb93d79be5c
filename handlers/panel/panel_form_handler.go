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

// PanelFormHandler kullanıcının kendi formları için handler.
type PanelFormHandler struct {
	service        services.IFormService
	stencilService services.IStencilService
}

// NewPanelFormHandler yeni bir PanelFormHandler örneği oluşturur.
func NewPanelFormHandler() *PanelFormHandler {
	return &PanelFormHandler{
		service:        services.NewFormService(),
		stencilService: services.NewStencilService(),
	}
}

// ListForms kullanıcının kendi formlarını listeler.
func (h *PanelFormHandler) ListForms(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	paginatedResult, err := h.service.GetFormsForUser(c.UserContext(), userID, params)

	renderData := fiber.Map{
		"Title":  "Formlarım",
		"Result": paginatedResult,
		"Params": params,
	}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Formlar listelenirken hata."
		renderData["Result"] = &queryparams.PaginatedResult{Data: []models.Form{}, Meta: queryparams.PaginationMeta{}}
		configslog.Log.Error("Panel - ListForms Error", zap.Uint("userID", userID), zap.Error(err))
	}
	return renderer.Render(c, "panel/forms/list", "layouts/panel_layout", renderData, http.StatusOK)
}

// ShowCreateForm yeni form oluşturma formunu gösterir. Şablon listesi de
// sunulur; kullanıcı boş form yerine şablondan başlayabilir.
func (h *PanelFormHandler) ShowCreateForm(c *fiber.Ctx) error {
	formData := flashmessages.GetFlashFormData(c)
	stencils, err := h.stencilService.GetAllStencils(c.UserContext(), false)
	if err != nil {
		configslog.Log.Error("Panel - ShowCreateForm: şablonlar alınamadı", zap.Error(err))
	}
	return renderer.Render(c, "panel/forms/create", "layouts/panel_layout", fiber.Map{
		"Title":    "Yeni Form Oluştur",
		"FormData": formData,
		"Stencils": stencils,
	})
}

// CreateForm yeni form oluşturur.
func (h *PanelFormHandler) CreateForm(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	var detail models.FormDetail
	if err := c.BodyParser(&detail); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz form verisi.")
		_ = flashmessages.SetFlashFormData(c, detail)
		return c.Redirect("/panel/forms/create", fiber.StatusSeeOther)
	}

	if err := services.ValidateFormDetail(detail); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, detail)
		return c.Redirect("/panel/forms/create", fiber.StatusSeeOther)
	}

	_, err := h.service.CreateForm(c.UserContext(), userID, detail)
	if err != nil {
		configslog.Log.Error("Panel - CreateForm Error", zap.Uint("creatorUserID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Oluşturma hatası: "+err.Error())
		_ = flashmessages.SetFlashFormData(c, detail)
		return c.Redirect("/panel/forms/create", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Form başarıyla oluşturuldu.")
	return c.Redirect("/panel/forms", fiber.StatusFound)
}

// CreateFormFromStencil seçilen şablondan yeni form oluşturur.
func (h *PanelFormHandler) CreateFormFromStencil(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	stencilID, err := c.ParamsInt("stencilId")
	if err != nil || stencilID <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz şablon.")
		return c.Redirect("/panel/forms/create", fiber.StatusSeeOther)
	}

	form, err := h.service.CreateFormFromStencil(c.UserContext(), userID, uint(stencilID))
	if err != nil {
		configslog.Log.Error("Panel - CreateFormFromStencil Error",
			zap.Uint("creatorUserID", userID), zap.Int("stencilID", stencilID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Şablondan oluşturma hatası: "+err.Error())
		return c.Redirect("/panel/forms/create", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Form şablondan oluşturuldu.")
	return c.Redirect(fmt.Sprintf("/panel/forms/update/%d", form.ID), fiber.StatusFound)
}

// ShowUpdateForm form düzenleme formunu gösterir.
func (h *PanelFormHandler) ShowUpdateForm(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/panel/forms")
	}
	formID := uint(id)

	form, err := h.service.GetFormByID(c.UserContext(), formID, userID) // Yetki kontrolü yapar
	if err != nil {
		errMsg := "Form bulunamadı veya bu formu düzenleme yetkiniz yok."
		if !errors.Is(err, services.ErrFormNotFound) && !errors.Is(err, services.ErrFormForbidden) {
			errMsg = "Form bilgileri alınırken bir hata oluştu."
			configslog.Log.Error("Panel - ShowUpdateForm Error", zap.Uint("id", formID), zap.Uint("userID", userID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
		return c.Redirect("/panel/forms")
	}

	formData := flashmessages.GetFlashFormData(c)

	return renderer.Render(c, "panel/forms/update", "layouts/panel_layout", fiber.Map{
		"Title":    "Formu Düzenle",
		"Form":     form,
		"Detail":   form.Detail,
		"FormData": formData,
	})
}

// UpdateForm form bilgilerini günceller.
func (h *PanelFormHandler) UpdateForm(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/panel/forms")
	}
	formID := uint(id)
	redirectPathOnError := fmt.Sprintf("/panel/forms/update/%d", formID)

	var detailUpdates models.FormDetail
	if err := c.BodyParser(&detailUpdates); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz form verisi.")
		_ = flashmessages.SetFlashFormData(c, detailUpdates)
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}
	isEnabledStr := c.FormValue("is_enabled", "false")
	isEnabled := isEnabledStr == "true" || isEnabledStr == "on"

	if err := services.ValidateFormDetail(detailUpdates); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		_ = flashmessages.SetFlashFormData(c, detailUpdates)
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	// Servisi çağır (userID ile, servis yetki kontrolü yapar)
	err = h.service.UpdateForm(c.UserContext(), formID, userID, detailUpdates, isEnabled)
	if err != nil {
		errMsg := "Güncelleme hatası: " + err.Error()
		if errors.Is(err, services.ErrFormNotFound) || errors.Is(err, services.ErrFormForbidden) {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
			return c.Redirect("/panel/forms")
		}
		configslog.Log.Error("Panel - UpdateForm Error", zap.Uint("id", formID), zap.Uint("userID", userID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
		_ = flashmessages.SetFlashFormData(c, detailUpdates)
		return c.Redirect(redirectPathOnError, fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Form başarıyla güncellendi.")
	return c.Redirect(redirectPathOnError, fiber.StatusFound)
}

// DeleteForm formu siler.
func (h *PanelFormHandler) DeleteForm(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/panel/forms")
	}
	formID := uint(id)

	// Servisi çağır (userID ile, servis yetki kontrolü yapar)
	err = h.service.DeleteForm(c.UserContext(), formID, userID)
	if err != nil {
		errMsg := "Silme hatası: " + err.Error()
		if !errors.Is(err, services.ErrFormNotFound) && !errors.Is(err, services.ErrFormForbidden) {
			configslog.Log.Error("Panel - DeleteForm Error", zap.Uint("id", formID), zap.Uint("userID", userID), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, errMsg)
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Form başarıyla silindi.")
	}
	return c.Redirect("/panel/forms", fiber.StatusSeeOther)
}
