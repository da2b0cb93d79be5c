package repositories

import (
	"context"
	"errors"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IIntegrationRepository entegrasyon veritabanı işlemleri için arayüz.
type IIntegrationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Integration, error)
	FindAllEnabledForForm(ctx context.Context, formID uint) ([]models.Integration, error)
	FindAllEnabledCaptchas(ctx context.Context) ([]models.Integration, error)
}

// IntegrationRepository IIntegrationRepository arayüzünü uygular.
type IntegrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository yeni bir IntegrationRepository örneği oluşturur.
func NewIntegrationRepository() IIntegrationRepository {
	return &IntegrationRepository{db: configs.GetDB()}
}

// NewIntegrationRepositoryTx transaction içinde çalışan repository oluşturur.
func NewIntegrationRepositoryTx(tx *gorm.DB) IIntegrationRepository {
	return &IntegrationRepository{db: tx}
}

func (r *IntegrationRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// FindByID entegrasyonu ID'sine göre bulur.
func (r *IntegrationRepository) FindByID(ctx context.Context, id uint) (*models.Integration, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Integration ID")
	}
	var integration models.Integration
	err := r.getDB(ctx).First(&integration, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("IntegrationRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &integration, nil
}

// FindAllEnabledForForm form için geçerli aktif entegrasyonları döndürür.
// Global (form_id IS NULL) ve forma özel kayıtlar birlikte, ID sırasıyla gelir.
func (r *IntegrationRepository) FindAllEnabledForForm(ctx context.Context, formID uint) ([]models.Integration, error) {
	if formID == 0 {
		return nil, errors.New("geçersiz Form ID")
	}
	var integrations []models.Integration
	err := r.getDB(ctx).
		Where("enabled = ?", true).
		Where("form_id IS NULL OR form_id = ?", formID).
		Order("id ASC").
		Find(&integrations).Error
	if err != nil {
		configslog.Log.Error("IntegrationRepository.FindAllEnabledForForm: DB error", zap.Uint("formID", formID), zap.Error(err))
		return nil, err
	}
	return integrations, nil
}

// FindAllEnabledCaptchas global olarak aktif captcha entegrasyonlarını döndürür.
// Yeni şablonlar bu captcha'ları otomatik olarak açık devralır.
func (r *IntegrationRepository) FindAllEnabledCaptchas(ctx context.Context) ([]models.Integration, error) {
	var integrations []models.Integration
	err := r.getDB(ctx).
		Where("enabled = ? AND kind = ?", true, models.IntegrationKindCaptcha).
		Order("id ASC").
		Find(&integrations).Error
	if err != nil {
		configslog.Log.Error("IntegrationRepository.FindAllEnabledCaptchas: DB error", zap.Error(err))
		return nil, err
	}
	return integrations, nil
}

var _ IIntegrationRepository = (*IntegrationRepository)(nil)
