package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/queryparams"
	"formlar.link/pkg/turkishsearch"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IFormRepository form veritabanı işlemleri için arayüz.
type IFormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id uint) (*models.Form, error)
	FindByKey(ctx context.Context, key string) (*models.Form, error)
	FindAllByUserIDPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Form, int64, error)
	FindAllWithRetention(ctx context.Context) ([]models.Form, error)
	Update(ctx context.Context, form *models.Form) error
	UpdateDetail(ctx context.Context, detail *models.FormDetail) error
	Delete(ctx context.Context, form *models.Form, deletedByUserID uint) error
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}

// FormRepository IFormRepository arayüzünü uygular.
type FormRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Form]
}

// NewFormRepository yeni bir FormRepository örneği oluşturur.
func NewFormRepository() IFormRepository {
	return newFormRepository(configs.GetDB())
}

// NewFormRepositoryTx transaction içinde çalışan repository oluşturur.
func NewFormRepositoryTx(tx *gorm.DB) IFormRepository {
	return newFormRepository(tx)
}

func newFormRepository(db *gorm.DB) *FormRepository {
	base := NewBaseRepository[models.Form](db)
	base.SetAllowedSortColumns([]string{"id", "created_at", "is_enabled"})
	return &FormRepository{db: db, base: base}
}

func (r *FormRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create yeni bir form ve detayını oluşturur.
func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	if form == nil || form.Key == "" {
		return errors.New("geçersiz veya eksik anahtar bilgisi olan form oluşturulamaz")
	}
	return r.getDB(ctx).Create(form).Error // BeforeCreate hook çalışır
}

// FindByID belirli bir ID'ye sahip formu detay ve bildirimleriyle bulur.
func (r *FormRepository) FindByID(ctx context.Context, id uint) (*models.Form, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Form ID")
	}
	var form models.Form
	err := r.getDB(ctx).Preload("Detail").
		Preload("Notifications", func(db *gorm.DB) *gorm.DB { return db.Order("notifications.id ASC") }).
		First(&form, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// FindByKey public link anahtarı ile formu bulur.
func (r *FormRepository) FindByKey(ctx context.Context, key string) (*models.Form, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var form models.Form
	err := r.getDB(ctx).Preload("Detail").
		Preload("Notifications", func(db *gorm.DB) *gorm.DB { return db.Order("notifications.id ASC") }).
		Where("key = ?", key).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository.FindByKey: DB error", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// applyFormFilters ortak filtreleme ve sıralama mantığını uygular.
func (r *FormRepository) applyFormFilters(db *gorm.DB, params queryparams.ListParams) (*gorm.DB, bool) {
	query := db
	needsJoin := false

	// Başlık filtresi
	if params.Name != "" {
		sqlFragment, args := turkishsearch.SQLFilter("form_details.title", params.Name)
		query = query.Joins("JOIN form_details ON form_details.form_id = forms.id").Where(sqlFragment, args...)
		needsJoin = true
	}
	// Status filtresi
	if params.Status != "" {
		query = query.Where("forms.is_enabled = ?", params.Status == "true")
	}

	// Sıralama
	orderBy := strings.ToLower(params.OrderBy)
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = queryparams.DefaultOrderBy
	}

	allowedSortColumns := map[string]string{
		"id":         "forms.id",
		"created_at": "forms.created_at",
		"is_enabled": "forms.is_enabled",
		"title":      "form_details.title",
	}
	orderColumn := "forms.created_at"
	if dbCol, ok := allowedSortColumns[params.SortBy]; ok {
		orderColumn = dbCol
		if params.SortBy == "title" && !needsJoin {
			query = query.Joins("JOIN form_details ON form_details.form_id = forms.id")
			needsJoin = true
		}
	} else if params.SortBy != "" {
		configslog.SLog.Warnw("Geçersiz Form sıralama alanı istendi, varsayılan kullanılıyor.", "requestedSortBy", params.SortBy)
	}
	query = query.Order(orderColumn + " " + orderBy)

	return query, needsJoin
}

// FindAllByUserIDPaginated belirli bir kullanıcıya ait formları sayfalayarak bulur.
func (r *FormRepository) FindAllByUserIDPaginated(ctx context.Context, creatorUserID uint, params queryparams.ListParams) ([]models.Form, int64, error) {
	if creatorUserID == 0 {
		return nil, 0, errors.New("geçersiz Creator User ID")
	}
	var forms []models.Form
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Form{}).Where("forms.creator_user_id = ?", creatorUserID)
	query, needsJoin := r.applyFormFilters(query, params)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("FormRepository.Count (Paginated by User): DB error", zap.Uint("creatorUserID", creatorUserID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return forms, 0, nil
	}

	query = query.Preload("Detail")
	query = query.Limit(params.PerPage).Offset(params.CalculateOffset())
	if needsJoin {
		query = query.Select("forms.*")
	}
	if err := query.Find(&forms).Error; err != nil {
		configslog.Log.Error("FormRepository.Find (Paginated by User): DB error", zap.Uint("creatorUserID", creatorUserID), zap.Error(err))
		return nil, totalCount, err
	}

	return forms, totalCount, nil
}

// FindAllWithRetention saklama politikası "forever" olmayan formları döndürür.
// Budama servisi tarafından kullanılır.
func (r *FormRepository) FindAllWithRetention(ctx context.Context) ([]models.Form, error) {
	var forms []models.Form
	err := r.getDB(ctx).
		Joins("JOIN form_details ON form_details.form_id = forms.id").
		Where("form_details.data_retention <> ?", models.DataRetentionForever).
		Select("forms.*").
		Preload("Detail").
		Find(&forms).Error
	if err != nil {
		configslog.Log.Error("FormRepository.FindAllWithRetention: DB error", zap.Error(err))
		return nil, err
	}
	return forms, nil
}

// Update sadece ana Form modelini günceller.
func (r *FormRepository) Update(ctx context.Context, form *models.Form) error {
	if form == nil || form.ID == 0 {
		return errors.New("güncellenecek form geçerli değil")
	}
	return r.getDB(ctx).Save(form).Error
}

// UpdateDetail sadece FormDetail modelini günceller.
func (r *FormRepository) UpdateDetail(ctx context.Context, detail *models.FormDetail) error {
	if detail == nil || detail.ID == 0 {
		return errors.New("güncellenecek form detayı geçerli değil")
	}
	return r.getDB(ctx).Save(detail).Error
}

// Delete formu soft delete ile siler, deleted_by alanını doldurur.
func (r *FormRepository) Delete(ctx context.Context, form *models.Form, deletedByUserID uint) error {
	if form == nil || form.ID == 0 {
		return errors.New("silinecek form geçerli değil")
	}

	now := time.Now().UTC()
	updateData := map[string]interface{}{"deleted_at": now, "deleted_by": &deletedByUserID}
	result := r.getDB(ctx).Model(form).Where("id = ? AND deleted_at IS NULL", form.ID).Updates(updateData)
	if result.Error != nil {
		configslog.Log.Error("FormRepository.Delete: Update sırasında hata", zap.Uint("id", form.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound // Zaten silinmiş veya yok
	}
	return nil
}

// CountByUserID belirli bir kullanıcıya ait form sayısını döndürür.
func (r *FormRepository) CountByUserID(ctx context.Context, creatorUserID uint) (int64, error) {
	if creatorUserID == 0 {
		return 0, errors.New("geçersiz Creator User ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Form{}).Where("creator_user_id = ?", creatorUserID).Count(&count).Error
	return count, err
}

var _ IFormRepository = (*FormRepository)(nil)
