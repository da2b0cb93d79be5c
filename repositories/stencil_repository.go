package repositories

import (
	"context"
	"errors"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IStencilRepository form şablonu (stencil) veritabanı işlemleri için arayüz.
type IStencilRepository interface {
	FindAll(ctx context.Context, withTrashed bool) ([]models.Stencil, error)
	FindByID(ctx context.Context, id uint) (*models.Stencil, error)
	FindByUID(ctx context.Context, uid string, withTrashed bool) (*models.Stencil, error)
	Save(ctx context.Context, stencil *models.Stencil) error
	SoftDeleteByUID(ctx context.Context, uid string) error
}

// StencilRepository IStencilRepository arayüzünü uygular.
type StencilRepository struct {
	db *gorm.DB
}

// NewStencilRepository yeni bir StencilRepository örneği oluşturur.
func NewStencilRepository() IStencilRepository {
	return &StencilRepository{db: configs.GetDB()}
}

// NewStencilRepositoryTx transaction içinde çalışan repository oluşturur.
func NewStencilRepositoryTx(tx *gorm.DB) IStencilRepository {
	return &StencilRepository{db: tx}
}

func (r *StencilRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// FindAll tüm şablonları isme göre sıralı döndürür.
// withTrashed=true arşivlenmiş (soft delete) kayıtları da içerir.
func (r *StencilRepository) FindAll(ctx context.Context, withTrashed bool) ([]models.Stencil, error) {
	query := r.getDB(ctx).Order("name ASC")
	if withTrashed {
		query = query.Unscoped()
	}
	var stencils []models.Stencil
	if err := query.Find(&stencils).Error; err != nil {
		configslog.Log.Error("StencilRepository.FindAll: DB error", zap.Error(err))
		return nil, err
	}
	return stencils, nil
}

// FindByID şablonu ID'sine göre bulur (yalnızca aktif kayıtlar).
func (r *StencilRepository) FindByID(ctx context.Context, id uint) (*models.Stencil, error) {
	if id == 0 {
		return nil, errors.New("geçersiz stencil ID")
	}
	var stencil models.Stencil
	err := r.getDB(ctx).First(&stencil, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("StencilRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &stencil, nil
}

// FindByUID şablonu UID'sine göre bulur.
func (r *StencilRepository) FindByUID(ctx context.Context, uid string, withTrashed bool) (*models.Stencil, error) {
	if uid == "" {
		return nil, errors.New("geçersiz stencil UID")
	}
	query := r.getDB(ctx)
	if withTrashed {
		query = query.Unscoped()
	}
	var stencil models.Stencil
	err := query.Where("uid = ?", uid).First(&stencil).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("StencilRepository.FindByUID: DB error", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	return &stencil, nil
}

// Save şablonu oluşturur veya günceller.
func (r *StencilRepository) Save(ctx context.Context, stencil *models.Stencil) error {
	if stencil == nil || stencil.UID == "" {
		return errors.New("kaydedilecek stencil geçerli değil")
	}
	return r.getDB(ctx).Save(stencil).Error
}

// SoftDeleteByUID şablonu arşivler; kayıt silinmez, deleted_at doldurulur.
func (r *StencilRepository) SoftDeleteByUID(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("geçersiz stencil UID")
	}
	result := r.getDB(ctx).Model(&models.Stencil{}).
		Where("uid = ? AND deleted_at IS NULL", uid).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var _ IStencilRepository = (*StencilRepository)(nil)
