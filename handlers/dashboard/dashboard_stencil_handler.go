package handlers // handlers/dashboard paketi

import (
	"encoding/json"
	"errors"
	"net/http"

	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/flashmessages"
	"formlar.link/pkg/renderer"
	"formlar.link/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DashboardStencilHandler form şablonlarının yönetimi için handler
// (sadece sistem kullanıcıları).
type DashboardStencilHandler struct {
	service services.IStencilService
}

// NewDashboardStencilHandler yeni bir DashboardStencilHandler örneği oluşturur.
func NewDashboardStencilHandler() *DashboardStencilHandler {
	return &DashboardStencilHandler{
		service: services.NewStencilService(),
	}
}

// ListStencils tüm şablonları listeler, arşivlenmişler dahil.
func (h *DashboardStencilHandler) ListStencils(c *fiber.Ctx) error {
	withTrashed := c.Query("archived") == "true"
	stencils, err := h.service.GetAllStencils(c.UserContext(), withTrashed)

	renderData := fiber.Map{
		"Title":    "Form Şablonları",
		"Stencils": stencils,
		"Archived": withTrashed,
	}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Şablonlar listelenirken hata."
		renderData["Stencils"] = []models.Stencil{}
		configslog.Log.Error("Dashboard - ListStencils Error", zap.Error(err))
	}
	return renderer.Render(c, "dashboard/stencils/list", "layouts/dashboard_layout", renderData, http.StatusOK)
}

// ShowCreateStencil yeni şablon oluşturma formunu gösterir.
func (h *DashboardStencilHandler) ShowCreateStencil(c *fiber.Ctx) error {
	formData := flashmessages.GetFlashFormData(c)
	return renderer.Render(c, "dashboard/stencils/create", "layouts/dashboard_layout", fiber.Map{
		"Title":    "Yeni Şablon",
		"FormData": formData,
	})
}

// stencilFromBody istek gövdesinden şablon alanlarını okur. Veri bloğu JSON
// metni olarak gelir.
func stencilFromBody(c *fiber.Ctx, stencil *models.Stencil) error {
	stencil.Name = c.FormValue("name")
	stencil.Handle = c.FormValue("handle")

	rawData := c.FormValue("data")
	if rawData == "" {
		return nil
	}
	var data models.StencilData
	if err := json.Unmarshal([]byte(rawData), &data); err != nil {
		return err
	}
	return stencil.SetDataStruct(data)
}

// CreateStencil yeni şablon kaydeder.
func (h *DashboardStencilHandler) CreateStencil(c *fiber.Ctx) error {
	var stencil models.Stencil
	if err := stencilFromBody(c, &stencil); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz şablon verisi.")
		return c.Redirect("/dashboard/stencils/create", fiber.StatusSeeOther)
	}

	if err := h.service.SaveStencil(c.UserContext(), &stencil); err != nil {
		if !errors.Is(err, services.ErrStencilHandleTaken) {
			configslog.Log.Error("Dashboard - CreateStencil Error", zap.String("handle", stencil.Handle), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Kaydetme hatası: "+err.Error())
		_ = flashmessages.SetFlashFormData(c, stencil)
		return c.Redirect("/dashboard/stencils/create", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Şablon kaydedildi.")
	return c.Redirect("/dashboard/stencils", fiber.StatusFound)
}

// ShowUpdateStencil şablon düzenleme formunu gösterir.
func (h *DashboardStencilHandler) ShowUpdateStencil(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/stencils")
	}

	stencil, err := h.service.GetStencilByID(c.UserContext(), uint(id))
	if err != nil {
		if !errors.Is(err, services.ErrStencilNotFound) {
			configslog.Log.Error("Dashboard - ShowUpdateStencil Error", zap.Int("id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Şablon bulunamadı.")
		return c.Redirect("/dashboard/stencils")
	}

	return renderer.Render(c, "dashboard/stencils/update", "layouts/dashboard_layout", fiber.Map{
		"Title":   "Şablonu Düzenle",
		"Stencil": stencil,
	})
}

// UpdateStencil şablonu günceller.
func (h *DashboardStencilHandler) UpdateStencil(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/stencils")
	}

	stencil, err := h.service.GetStencilByID(c.UserContext(), uint(id))
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Şablon bulunamadı.")
		return c.Redirect("/dashboard/stencils")
	}

	if err := stencilFromBody(c, stencil); err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz şablon verisi.")
		return c.Redirect("/dashboard/stencils", fiber.StatusSeeOther)
	}

	if err := h.service.SaveStencil(c.UserContext(), stencil); err != nil {
		if !errors.Is(err, services.ErrStencilHandleTaken) {
			configslog.Log.Error("Dashboard - UpdateStencil Error", zap.Int("id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Güncelleme hatası: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Şablon güncellendi.")
	}
	return c.Redirect("/dashboard/stencils", fiber.StatusSeeOther)
}

// DeleteStencil şablonu arşivler.
func (h *DashboardStencilHandler) DeleteStencil(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geçersiz ID.")
		return c.Redirect("/dashboard/stencils")
	}

	if err := h.service.DeleteStencilByID(c.UserContext(), uint(id)); err != nil {
		if !errors.Is(err, services.ErrStencilNotFound) {
			configslog.Log.Error("Dashboard - DeleteStencil Error", zap.Int("id", id), zap.Error(err))
		}
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Silme hatası: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Şablon arşivlendi.")
	}
	return c.Redirect("/dashboard/stencils", fiber.StatusSeeOther)
}
