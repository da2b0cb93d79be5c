package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/configstore"
	"formlar.link/pkg/events"
	"formlar.link/repositories"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StencilConfigSection config deposundaki şablon bölümünün adı.
const StencilConfigSection = "stencils"

// StencilServiceError özel servis hataları
type StencilServiceError string

func (e StencilServiceError) Error() string { return string(e) }

const (
	ErrStencilNotFound       StencilServiceError = "şablon bulunamadı"
	ErrStencilNameRequired   StencilServiceError = "şablon adı zorunludur"
	ErrStencilHandleRequired StencilServiceError = "şablon tanıtıcısı zorunludur"
	ErrStencilHandleTaken    StencilServiceError = "bu tanıtıcıya sahip bir şablon zaten var"
	ErrStencilSaveFailed     StencilServiceError = "şablon kaydedilemedi"
	ErrStencilDeleteFailed   StencilServiceError = "şablon silinemedi"
)

// IStencilService form şablonu işlemleri için arayüz. Yazma işlemleri config
// deposu üzerinden akar: depo önce dosyaya yazar, sonra değişiklik işleyicisi
// veritabanına uygular.
type IStencilService interface {
	GetAllStencils(ctx context.Context, withTrashed bool) ([]models.Stencil, error)
	GetStencilByID(ctx context.Context, id uint) (*models.Stencil, error)
	GetStencilByHandle(ctx context.Context, handle string) (*models.Stencil, error)
	GetStencilByUID(ctx context.Context, uid string, withTrashed bool) (*models.Stencil, error)
	SaveStencil(ctx context.Context, stencil *models.Stencil) error
	DeleteStencilByID(ctx context.Context, id uint) error
	ApplyStencil(form *models.Form, stencil *models.Stencil) error
	RegisterConfigHandlers(store *configstore.Store)
}

// StencilService IStencilService arayüzünü uygular.
type StencilService struct {
	repo         repositories.IStencilRepository
	integrations IIntegrationService
	store        *configstore.Store
	db           *gorm.DB
}

// NewStencilService yeni bir StencilService örneği oluşturur.
// Config deposu RegisterConfigHandlers ile bağlanana kadar bellek içi
// depo kullanılır.
func NewStencilService() IStencilService {
	return &StencilService{
		repo:         repositories.NewStencilRepository(),
		integrations: NewIntegrationService(),
		store:        configstore.NewMemoryStore(),
		db:           configs.GetDB(),
	}
}

// NewStencilServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewStencilServiceWith(
	repo repositories.IStencilRepository,
	integrations IIntegrationService,
	store *configstore.Store,
	db *gorm.DB,
) IStencilService {
	return &StencilService{
		repo:         repo,
		integrations: integrations,
		store:        store,
		db:           db,
	}
}

// GetAllStencils tüm şablonları isme göre sıralı döndürür.
func (s *StencilService) GetAllStencils(ctx context.Context, withTrashed bool) ([]models.Stencil, error) {
	return s.repo.FindAll(ctx, withTrashed)
}

// GetStencilByID şablonu ID ile getirir.
func (s *StencilService) GetStencilByID(ctx context.Context, id uint) (*models.Stencil, error) {
	stencil, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStencilNotFound
		}
		return nil, err
	}
	return stencil, nil
}

// GetStencilByHandle şablonu tanıtıcısı ile getirir (yalnızca aktif kayıtlar).
func (s *StencilService) GetStencilByHandle(ctx context.Context, handle string) (*models.Stencil, error) {
	if handle == "" {
		return nil, ErrStencilNotFound
	}
	stencils, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range stencils {
		if stencils[i].Handle == handle {
			return &stencils[i], nil
		}
	}
	return nil, ErrStencilNotFound
}

// GetStencilByUID şablonu UID ile getirir.
func (s *StencilService) GetStencilByUID(ctx context.Context, uid string, withTrashed bool) (*models.Stencil, error) {
	stencil, err := s.repo.FindByUID(ctx, uid, withTrashed)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStencilNotFound
		}
		return nil, err
	}
	return stencil, nil
}

// validateStencil tüm doğrulama hatalarını birlikte döndürür.
func validateStencil(stencil *models.Stencil) error {
	var err error
	if stencil.Name == "" {
		err = multierr.Append(err, ErrStencilNameRequired)
	}
	if stencil.Handle == "" {
		err = multierr.Append(err, ErrStencilHandleRequired)
	}
	return err
}

// SaveStencil şablonu doğrular ve config deposuna yazar. Depo değişikliği,
// kayıtlı işleyici üzerinden veritabanına uygulanır. Yeni şablonlara UID
// atanır ve global aktif captcha'lar şablonda otomatik açılır.
func (s *StencilService) SaveStencil(ctx context.Context, stencil *models.Stencil) error {
	if err := validateStencil(stencil); err != nil {
		return err
	}

	// Tanıtıcı aktif şablonlar arasında benzersiz olmalı (kendisi hariç).
	existing, err := s.repo.FindAll(ctx, false)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].Handle == stencil.Handle && existing[i].UID != stencil.UID {
			return ErrStencilHandleTaken
		}
	}

	isNew := stencil.UID == ""
	result := BeforeSaveStencilHooks.Emit(StencilEvent{Stencil: stencil, IsNew: isNew}, events.HookResult{})
	if result.Cancelled {
		return nil
	}

	if isNew {
		stencil.UID = uuid.NewString()

		// Global aktif captcha'lar yeni şablonda açık başlar.
		captchas, err := s.integrations.GetAllEnabledCaptchas(ctx)
		if err != nil {
			configslog.Log.Error("Şablon için captcha listesi alınamadı", zap.Error(err))
		} else if len(captchas) > 0 {
			data, dataErr := stencil.DataStruct()
			if dataErr != nil {
				return fmt.Errorf("%w: %v", ErrStencilSaveFailed, dataErr)
			}
			if data.Integrations == nil {
				data.Integrations = map[string]models.StencilIntegrationToggle{}
			}
			for _, captcha := range captchas {
				data.Integrations[captcha.Handle] = models.StencilIntegrationToggle{Enabled: true}
			}
			if err := stencil.SetDataStruct(data); err != nil {
				return fmt.Errorf("%w: %v", ErrStencilSaveFailed, err)
			}
		}
	}

	configData, err := stencilConfigMap(stencil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStencilSaveFailed, err)
	}
	if err := s.store.Set(StencilConfigSection+"."+stencil.UID, configData); err != nil {
		return fmt.Errorf("%w: %v", ErrStencilSaveFailed, err)
	}

	AfterSaveStencilHooks.Emit(StencilEvent{Stencil: stencil, IsNew: isNew}, events.HookResult{})
	configslog.SLog.Infof("Şablon kaydedildi: %s (UID: %s)", stencil.Handle, stencil.UID)
	return nil
}

// DeleteStencilByID şablonu config deposundan kaldırır; işleyici veritabanında
// arşivler.
func (s *StencilService) DeleteStencilByID(ctx context.Context, id uint) error {
	stencil, err := s.GetStencilByID(ctx, id)
	if err != nil {
		return err
	}

	result := BeforeDeleteStencilHooks.Emit(StencilEvent{Stencil: stencil}, events.HookResult{})
	if result.Cancelled {
		return nil
	}

	if err := s.store.Remove(StencilConfigSection + "." + stencil.UID); err != nil {
		return fmt.Errorf("%w: %v", ErrStencilDeleteFailed, err)
	}

	AfterDeleteStencilHooks.Emit(StencilEvent{Stencil: stencil}, events.HookResult{})
	configslog.SLog.Infof("Şablon arşivlendi: %s (UID: %s)", stencil.Handle, stencil.UID)
	return nil
}

// ApplyStencil şablonun ayarlarını, alan düzenini ve bildirimlerini forma
// kopyalar. Form kalıcılaştırılmaz; çağıran kaydeder. Bozuk tarih alanları
// sessizce atlanır.
func (s *StencilService) ApplyStencil(form *models.Form, stencil *models.Stencil) error {
	data, err := stencil.DataStruct()
	if err != nil {
		return err
	}

	form.Detail.Title = stencil.Name
	form.Detail.Handle = stencil.Handle
	form.Detail.RequireUser = data.RequireUser
	if data.UserDeletedAction != "" {
		form.Detail.UserDeletedAction = data.UserDeletedAction
	}
	if data.FileUploadsAction != "" {
		form.Detail.FileUploadsAction = data.FileUploadsAction
	}
	if data.DataRetention != "" {
		form.Detail.DataRetention = models.DataRetention(data.DataRetention)
		form.Detail.DataRetentionValue = data.DataRetentionValue
	}
	form.Detail.AvailabilitySubmissions = data.AvailabilitySubmissions
	if from, err := time.Parse(time.RFC3339, data.AvailabilityFrom); err == nil {
		form.Detail.AvailabilityFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, data.AvailabilityTo); err == nil {
		form.Detail.AvailabilityTo = &to
	}

	if len(data.Pages) > 0 {
		layout, err := json.Marshal(data.Pages)
		if err != nil {
			return err
		}
		form.Detail.FieldLayout = layout
	}

	form.Notifications = nil
	for _, item := range data.Notifications {
		conditions, err := json.Marshal(item.Conditions)
		if err != nil {
			return err
		}
		form.Notifications = append(form.Notifications, models.Notification{
			Name:       item.Name,
			Enabled:    item.Enabled,
			Subject:    item.Subject,
			ToEmail:    item.ToEmail,
			FromEmail:  item.FromEmail,
			Template:   item.Template,
			Conditions: conditions,
		})
	}
	return nil
}

// RegisterConfigHandlers şablon bölümünün değişiklik işleyicilerini depoya
// bağlar. Uygulama transaction içinde çalışır; hata depo çağrısına geri döner.
func (s *StencilService) RegisterConfigHandlers(store *configstore.Store) {
	s.store = store
	store.OnChange(StencilConfigSection, configstore.ChangeHandler{
		Apply:  s.applyStencilConfig,
		Remove: s.removeStencilConfig,
	})
}

// applyStencilConfig config verisini veritabanına uygular (upsert).
func (s *StencilService) applyStencilConfig(uid string, data map[string]any) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewStencilRepositoryTx(tx)
		ctx := context.Background()

		stencil, err := repoTx.FindByUID(ctx, uid, true)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
			stencil = &models.Stencil{UID: uid}
		}

		if name, ok := data["name"].(string); ok {
			stencil.Name = name
		}
		if handle, ok := data["handle"].(string); ok {
			stencil.Handle = handle
		}
		if raw, ok := data["data"]; ok {
			encoded, err := json.Marshal(raw)
			if err != nil {
				return err
			}
			stencil.Data = encoded
		}

		// Arşivden geri yazım kaydı yeniden açar.
		stencil.DeletedAt = gorm.DeletedAt{}
		stencil.DeletedBy = nil

		return repoTx.Save(ctx, stencil)
	})
}

// removeStencilConfig config kaydı silinince şablonu arşivler.
func (s *StencilService) removeStencilConfig(uid string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repoTx := repositories.NewStencilRepositoryTx(tx)
		err := repoTx.SoftDeleteByUID(context.Background(), uid)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	})
}

// stencilConfigMap şablonu config deposuna yazılacak veri haline getirir.
func stencilConfigMap(stencil *models.Stencil) (map[string]any, error) {
	var dataBlock map[string]any
	if len(stencil.Data) > 0 {
		if err := json.Unmarshal(stencil.Data, &dataBlock); err != nil {
			return nil, err
		}
	}
	return map[string]any{
		"name":   stencil.Name,
		"handle": stencil.Handle,
		"data":   dataBlock,
	}, nil
}

var _ IStencilService = (*StencilService)(nil)
