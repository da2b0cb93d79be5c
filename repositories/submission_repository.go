package repositories

import (
	"context"
	"errors"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionFilters gönderim sorgularında kullanılan filtre kümesi.
// nil alanlar filtreye dahil edilmez.
type SubmissionFilters struct {
	FormID        *uint
	UserID        *uint
	IsIncomplete  *bool
	IsSpam        *bool
	CreatedBefore *time.Time
	UpdatedBefore *time.Time
	WithTrashed   bool

	OrderByCreatedDesc bool
	Offset             int
	Limit              int
}

// ISubmissionRepository gönderim veritabanı işlemleri için arayüz.
type ISubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id uint) (*models.Submission, error)
	FindAllByFilters(ctx context.Context, filters SubmissionFilters) ([]models.Submission, error)
	FindAllByFormIDPaginated(ctx context.Context, formID uint, params queryparams.ListParams) ([]models.Submission, int64, error)
	Update(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, submission *models.Submission) error
	HardDelete(ctx context.Context, submission *models.Submission) error
	Restore(ctx context.Context, submission *models.Submission) error
	TransferOwnership(ctx context.Context, fromUserID uint, toUserID uint) (int64, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	CountByFormID(ctx context.Context, formID uint) (int64, error)
}

// SubmissionRepository ISubmissionRepository arayüzünü uygular.
type SubmissionRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Submission]
}

// NewSubmissionRepository yeni bir SubmissionRepository örneği oluşturur.
func NewSubmissionRepository() ISubmissionRepository {
	return newSubmissionRepository(configs.GetDB())
}

// NewSubmissionRepositoryTx transaction içinde çalışan repository oluşturur.
func NewSubmissionRepositoryTx(tx *gorm.DB) ISubmissionRepository {
	return newSubmissionRepository(tx)
}

func newSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	base := NewBaseRepository[models.Submission](db)
	base.SetAllowedSortColumns([]string{"id", "created_at", "is_spam", "is_incomplete"})
	return &SubmissionRepository{db: db, base: base}
}

func (r *SubmissionRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create yeni bir gönderim kaydı oluşturur.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.FormID == 0 {
		return errors.New("geçersiz veya formsuz gönderim oluşturulamaz")
	}
	return r.getDB(ctx).Create(submission).Error
}

// FindByID gönderimi form detayı ve bildirimleriyle birlikte getirir.
func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*models.Submission, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Submission ID")
	}
	var submission models.Submission
	err := r.getDB(ctx).
		Preload("Form.Detail").
		Preload("Form.Notifications", func(db *gorm.DB) *gorm.DB { return db.Order("notifications.id ASC") }).
		First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SubmissionRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &submission, nil
}

// FindAllByFilters filtre kümesine uyan gönderimleri döndürür.
func (r *SubmissionRepository) FindAllByFilters(ctx context.Context, filters SubmissionFilters) ([]models.Submission, error) {
	query := r.getDB(ctx).Model(&models.Submission{})

	if filters.WithTrashed {
		query = query.Unscoped()
	}
	if filters.FormID != nil {
		query = query.Where("form_id = ?", *filters.FormID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.IsIncomplete != nil {
		query = query.Where("is_incomplete = ?", *filters.IsIncomplete)
	}
	if filters.IsSpam != nil {
		query = query.Where("is_spam = ?", *filters.IsSpam)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filters.CreatedBefore)
	}
	if filters.UpdatedBefore != nil {
		query = query.Where("updated_at < ?", *filters.UpdatedBefore)
	}
	if filters.OrderByCreatedDesc {
		query = query.Order("created_at DESC")
	} else {
		query = query.Order("created_at ASC")
	}
	if filters.Offset > 0 {
		// Offset'li sorgularda GORM limit olmadan offset uygulamaz
		limit := filters.Limit
		if limit <= 0 {
			limit = -1
		}
		query = query.Offset(filters.Offset).Limit(limit)
	} else if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		configslog.Log.Error("SubmissionRepository.FindAllByFilters: DB error", zap.Error(err))
		return nil, err
	}
	return submissions, nil
}

// FindAllByFormIDPaginated bir formun gönderimlerini sayfalayarak döndürür.
func (r *SubmissionRepository) FindAllByFormIDPaginated(ctx context.Context, formID uint, params queryparams.ListParams) ([]models.Submission, int64, error) {
	if formID == 0 {
		return nil, 0, errors.New("geçersiz Form ID")
	}
	var submissions []models.Submission
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Submission{}).Where("form_id = ?", formID)

	if params.Status == "spam" {
		query = query.Where("is_spam = ?", true)
	} else if params.Status == "incomplete" {
		query = query.Where("is_incomplete = ?", true)
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("SubmissionRepository.Count (Paginated): DB error", zap.Uint("formID", formID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return submissions, 0, nil
	}

	orderBy := params.OrderBy
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = queryparams.DefaultOrderBy
	}
	sortBy := "created_at"
	if r.base.AllowedSortColumn(params.SortBy) {
		sortBy = params.SortBy
	}

	err := query.Order(sortBy + " " + orderBy).
		Limit(params.PerPage).Offset(params.CalculateOffset()).
		Find(&submissions).Error
	if err != nil {
		configslog.Log.Error("SubmissionRepository.Find (Paginated): DB error", zap.Uint("formID", formID), zap.Error(err))
		return nil, totalCount, err
	}
	return submissions, totalCount, nil
}

// Update gönderimi günceller.
func (r *SubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("güncellenecek gönderim geçerli değil")
	}
	return r.getDB(ctx).Save(submission).Error
}

// Delete gönderimi soft delete ile siler.
func (r *SubmissionRepository) Delete(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("silinecek gönderim geçerli değil")
	}
	return r.getDB(ctx).Delete(submission).Error
}

// HardDelete gönderimi kalıcı olarak siler. Budama servisi kullanır.
func (r *SubmissionRepository) HardDelete(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("silinecek gönderim geçerli değil")
	}
	return r.getDB(ctx).Unscoped().Delete(submission).Error
}

// Restore soft delete edilmiş gönderimi geri getirir.
func (r *SubmissionRepository) Restore(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("geri getirilecek gönderim geçerli değil")
	}
	return r.getDB(ctx).Unscoped().Model(submission).
		Updates(map[string]interface{}{"deleted_at": nil, "deleted_by": nil}).Error
}

// TransferOwnership bir kullanıcının tüm gönderimlerini başka kullanıcıya aktarır.
// Kullanıcı silinirken mirasçıya devretmek için kullanılır.
func (r *SubmissionRepository) TransferOwnership(ctx context.Context, fromUserID uint, toUserID uint) (int64, error) {
	if fromUserID == 0 || toUserID == 0 {
		return 0, errors.New("geçersiz kullanıcı ID")
	}
	result := r.getDB(ctx).Model(&models.Submission{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID)
	if result.Error != nil {
		configslog.Log.Error("SubmissionRepository.TransferOwnership: DB error",
			zap.Uint("fromUserID", fromUserID), zap.Uint("toUserID", toUserID), zap.Error(result.Error))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByUserID kullanıcıya ait gönderim sayısını döndürür.
func (r *SubmissionRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.New("geçersiz kullanıcı ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Submission{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByFormID formun gönderim sayısını döndürür (spam hariç).
func (r *SubmissionRepository) CountByFormID(ctx context.Context, formID uint) (int64, error) {
	if formID == 0 {
		return 0, errors.New("geçersiz Form ID")
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Submission{}).
		Where("form_id = ? AND is_spam = ? AND is_incomplete = ?", formID, false, false).
		Count(&count).Error
	return count, err
}

var _ ISubmissionRepository = (*SubmissionRepository)(nil)
