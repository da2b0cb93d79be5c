package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/queryparams"
	"formlar.link/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FormServiceError özel servis hataları
type FormServiceError string

func (e FormServiceError) Error() string { return string(e) }

const (
	ErrFormNotFound       FormServiceError = "form bulunamadı"
	ErrFormCreationFailed FormServiceError = "form oluşturulamadı"
	ErrFormUpdateFailed   FormServiceError = "form güncellenemedi"
	ErrFormDeletionFailed FormServiceError = "form silinemedi"
	ErrFormForbidden      FormServiceError = "bu işlem için yetkiniz yok"
	ErrFrmInvalidInput    FormServiceError = "geçersiz girdi verisi"
	ErrFormTitleRequired  FormServiceError = "form başlığı zorunludur"
	ErrFrmStencilNotFound FormServiceError = "form için şablon bulunamadı"
)

// IFormService form işlemleri için arayüz.
type IFormService interface {
	CreateForm(ctx context.Context, creatorUserID uint, detailData models.FormDetail) (*models.Form, error)
	CreateFormFromStencil(ctx context.Context, creatorUserID uint, stencilID uint) (*models.Form, error)
	GetFormByID(ctx context.Context, id uint, requestingUserID uint) (*models.Form, error)
	GetFormByKey(ctx context.Context, key string) (*models.Form, error) // Public erişim
	GetFormsForUser(ctx context.Context, creatorUserID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateForm(ctx context.Context, id uint, updatingUserID uint, detailData models.FormDetail, isEnabled bool) error
	DeleteForm(ctx context.Context, id uint, deletingUserID uint) error
	GetFormCountForUser(ctx context.Context, creatorUserID uint) (int64, error)
}

// FormService IFormService arayüzünü uygular.
type FormService struct {
	repo           repositories.IFormRepository
	userService    IUserService
	stencilService IStencilService
	db             *gorm.DB
}

// NewFormService yeni bir FormService örneği oluşturur (DI ile).
func NewFormService() IFormService {
	return &FormService{
		repo:           repositories.NewFormRepository(),
		userService:    NewUserService(),
		stencilService: NewStencilService(),
		db:             configs.GetDB(),
	}
}

// NewFormServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewFormServiceWith(
	repo repositories.IFormRepository,
	userService IUserService,
	stencilService IStencilService,
	db *gorm.DB,
) IFormService {
	return &FormService{
		repo:           repo,
		userService:    userService,
		stencilService: stencilService,
		db:             db,
	}
}

// --- Yardımcı Metodlar ---

// ValidateFormDetail temel validasyonları yapar.
func ValidateFormDetail(detail models.FormDetail) error {
	if detail.Title == "" {
		return ErrFormTitleRequired
	}
	if detail.AvailabilitySubmissions != nil && *detail.AvailabilitySubmissions < 0 {
		return fmt.Errorf("%w: gönderim limiti negatif olamaz", ErrFrmInvalidInput)
	}
	if detail.AvailabilityFrom != nil && detail.AvailabilityTo != nil &&
		detail.AvailabilityTo.Before(*detail.AvailabilityFrom) {
		return fmt.Errorf("%w: bitiş tarihi başlangıçtan önce olamaz", ErrFrmInvalidInput)
	}
	if detail.RedirectURLOnSubmit != "" {
		if _, err := url.ParseRequestURI(detail.RedirectURLOnSubmit); err != nil {
			return fmt.Errorf("%w: geçersiz yönlendirme adresi", ErrFrmInvalidInput)
		}
	}
	if detail.DataRetention != "" && detail.DataRetention != models.DataRetentionForever && detail.DataRetentionValue <= 0 {
		return fmt.Errorf("%w: saklama süresi pozitif olmalı", ErrFrmInvalidInput)
	}
	return nil
}

// contextWithUserID (BaseModel hook'ları için).
func contextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, models.ContextUserIDKey, userID)
}

// --- Servis Metodları ---

// CreateForm yeni bir form ve detayını oluşturur. Public erişim anahtarı
// olarak benzersiz bir UUID atanır.
func (s *FormService) CreateForm(ctx context.Context, creatorUserID uint, detailData models.FormDetail) (*models.Form, error) {
	if err := ValidateFormDetail(detailData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrmInvalidInput, err)
	}
	if creatorUserID == 0 {
		return nil, fmt.Errorf("%w: Geçersiz oluşturan kullanıcı ID", ErrFrmInvalidInput)
	}

	var createdForm *models.Form
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextWithUserID(ctx, creatorUserID)
		formRepoTx := repositories.NewFormRepositoryTx(tx)

		form := models.Form{
			Key:           uuid.NewString(),
			CreatorUserID: creatorUserID,
			IsEnabled:     true,
			Detail:        detailData,
		}
		if err := formRepoTx.Create(txCtx, &form); err != nil {
			return ErrFormCreationFailed
		}
		createdForm = &form
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Form başarıyla oluşturuldu: ID %d, Başlık: %s, Key: %s",
		createdForm.ID, createdForm.Detail.Title, createdForm.Key)
	return createdForm, nil
}

// CreateFormFromStencil bir şablonun ayarlarını ve alan düzenini kopyalayarak
// yeni bir form oluşturur.
func (s *FormService) CreateFormFromStencil(ctx context.Context, creatorUserID uint, stencilID uint) (*models.Form, error) {
	if creatorUserID == 0 {
		return nil, fmt.Errorf("%w: Geçersiz oluşturan kullanıcı ID", ErrFrmInvalidInput)
	}
	stencil, err := s.stencilService.GetStencilByID(ctx, stencilID)
	if err != nil {
		return nil, ErrFrmStencilNotFound
	}

	var createdForm *models.Form
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextWithUserID(ctx, creatorUserID)
		formRepoTx := repositories.NewFormRepositoryTx(tx)

		form := models.Form{
			Key:           uuid.NewString(),
			CreatorUserID: creatorUserID,
			IsEnabled:     true,
		}
		if err := s.stencilService.ApplyStencil(&form, stencil); err != nil {
			return fmt.Errorf("%w: %v", ErrFormCreationFailed, err)
		}
		if err := formRepoTx.Create(txCtx, &form); err != nil {
			return ErrFormCreationFailed
		}
		createdForm = &form
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Şablondan form oluşturuldu: Form ID %d, Şablon: %s",
		createdForm.ID, stencil.Handle)
	return createdForm, nil
}

// GetFormByID belirli bir formu ID ve kullanıcı yetkisine göre getirir.
func (s *FormService) GetFormByID(ctx context.Context, id uint, requestingUserID uint) (*models.Form, error) {
	form, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	// Yetki Kontrolü
	requestingUser, userErr := s.userService.GetUserByID(ctx, requestingUserID)
	if userErr != nil {
		return nil, ErrFormForbidden
	}
	if !requestingUser.IsSystem && form.CreatorUserID != requestingUserID {
		return nil, ErrFormForbidden
	}

	return form, nil
}

// GetFormByKey public erişim anahtarı ile formu getirir. Pasif formlar
// bulunamadı sayılır; erişilebilirlik penceresi gönderim anında ayrıca
// kontrol edilir.
func (s *FormService) GetFormByKey(ctx context.Context, key string) (*models.Form, error) {
	if key == "" {
		return nil, ErrFormNotFound
	}
	form, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	if !form.IsEnabled {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// GetFormsForUser kullanıcıya ait formları sayfalayarak getirir.
func (s *FormService) GetFormsForUser(ctx context.Context, creatorUserID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if creatorUserID == 0 {
		return nil, errors.New("geçersiz kullanıcı ID")
	}
	params.Validate()

	forms, totalCount, err := s.repo.FindAllByUserIDPaginated(ctx, creatorUserID, params)
	if err != nil {
		return nil, err
	}

	totalPages := queryparams.CalculateTotalPages(totalCount, params.PerPage)
	return &queryparams.PaginatedResult{
		Data: forms,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  totalCount,
			TotalPages:  totalPages,
		},
	}, nil
}

// UpdateForm mevcut bir formu ve detaylarını günceller.
func (s *FormService) UpdateForm(ctx context.Context, id uint, updatingUserID uint, detailData models.FormDetail, isEnabled bool) error {
	if err := ValidateFormDetail(detailData); err != nil {
		return fmt.Errorf("%w: %v", ErrFrmInvalidInput, err)
	}
	if id == 0 || updatingUserID == 0 {
		return fmt.Errorf("%w: Geçersiz ID veya güncelleyen kullanıcı ID", ErrFrmInvalidInput)
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextWithUserID(ctx, updatingUserID)
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		userRepoTx := repositories.NewUserRepositoryTx(tx)

		// a. Kaydı kilitli al
		var existingForm models.Form
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Detail").First(&existingForm, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFormNotFound
			}
			return err
		}

		// b. Yetki Kontrolü
		requestingUser, userErr := userRepoTx.FindByID(txCtx, updatingUserID)
		if userErr != nil {
			return ErrFormForbidden
		}
		if !requestingUser.IsSystem && existingForm.CreatorUserID != updatingUserID {
			return ErrFormForbidden
		}

		// c. Ana model güncelle
		existingForm.IsEnabled = isEnabled

		// d. Detay model güncelle
		existingDetail := existingForm.Detail
		existingDetail.Title = detailData.Title
		existingDetail.Handle = detailData.Handle
		existingDetail.Description = detailData.Description
		existingDetail.ConfirmationMessage = detailData.ConfirmationMessage
		existingDetail.RedirectURLOnSubmit = detailData.RedirectURLOnSubmit
		existingDetail.RequireUser = detailData.RequireUser
		existingDetail.UserDeletedAction = detailData.UserDeletedAction
		existingDetail.FileUploadsAction = detailData.FileUploadsAction
		existingDetail.AvailabilityFrom = detailData.AvailabilityFrom
		existingDetail.AvailabilityTo = detailData.AvailabilityTo
		existingDetail.AvailabilitySubmissions = detailData.AvailabilitySubmissions
		existingDetail.DataRetention = detailData.DataRetention
		existingDetail.DataRetentionValue = detailData.DataRetentionValue
		if detailData.FieldLayout != nil {
			existingDetail.FieldLayout = detailData.FieldLayout
		}

		// e. Detail'i kaydet
		if err := formRepoTx.UpdateDetail(txCtx, &existingDetail); err != nil {
			return ErrFormUpdateFailed
		}
		// f. Form'u kaydet
		if err := formRepoTx.Update(txCtx, &existingForm); err != nil {
			return ErrFormUpdateFailed
		}

		return nil // Commit
	})

	if txErr != nil {
		configslog.Log.Error("UpdateForm transaction failed", zap.Uint("id", id), zap.Uint("userID", updatingUserID), zap.Error(txErr))
		return txErr
	}
	configslog.SLog.Infof("Form başarıyla güncellendi: ID %d (Güncelleyen: %d)", id, updatingUserID)
	return nil
}

// DeleteForm bir formu soft delete ile siler.
func (s *FormService) DeleteForm(ctx context.Context, id uint, deletingUserID uint) error {
	if id == 0 || deletingUserID == 0 {
		return fmt.Errorf("%w: Geçersiz ID veya silen kullanıcı ID", ErrFrmInvalidInput)
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextWithUserID(ctx, deletingUserID)
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		userRepoTx := repositories.NewUserRepositoryTx(tx)

		// a. Kaydı kilitli al ve yetki kontrolü yap
		var formToDelete models.Form
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&formToDelete, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFormNotFound
			}
			return err
		}

		requestingUser, userErr := userRepoTx.FindByID(txCtx, deletingUserID)
		if userErr != nil {
			return ErrFormForbidden
		}
		if !requestingUser.IsSystem && formToDelete.CreatorUserID != deletingUserID {
			return ErrFormForbidden
		}

		// b. Formu sil
		if err := formRepoTx.Delete(txCtx, &formToDelete, deletingUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFormNotFound
			}
			return ErrFormDeletionFailed
		}

		return nil // Commit
	})

	if txErr != nil {
		configslog.Log.Error("DeleteForm transaction failed", zap.Uint("id", id), zap.Uint("userID", deletingUserID), zap.Error(txErr))
		return txErr
	}
	configslog.SLog.Infof("Form başarıyla silindi: ID %d (Silen: %d)", id, deletingUserID)
	return nil
}

// GetFormCountForUser kullanıcıya ait form sayısını alır.
func (s *FormService) GetFormCountForUser(ctx context.Context, creatorUserID uint) (int64, error) {
	return s.repo.CountByUserID(ctx, creatorUserID)
}

var _ IFormService = (*FormService)(nil)
