package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/fields"
	"formlar.link/models"
	"formlar.link/pkg/events"
	"formlar.link/pkg/queryparams"
	"formlar.link/repositories"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SubmissionServiceError özel servis hataları
type SubmissionServiceError string

func (e SubmissionServiceError) Error() string { return string(e) }

const (
	ErrSubmissionFormNotFound SubmissionServiceError = "gönderim için form bulunamadı"
	ErrFormNotAcceptingNew    SubmissionServiceError = "form şu anda gönderim kabul etmiyor"
	ErrSubmissionUserRequired SubmissionServiceError = "bu form için oturum açmış kullanıcı gerekli"
	ErrSubmissionRejected     SubmissionServiceError = "gönderim reddedildi"
	ErrSubmissionNotFound     SubmissionServiceError = "gönderim bulunamadı"
	ErrSubmissionCreateFailed SubmissionServiceError = "gönderim kaydedilemedi"
	ErrInheritorRequired      SubmissionServiceError = "devralacak kullanıcı bulunamadı"
)

// ISubmissionService gönderim yaşam döngüsü için arayüz.
type ISubmissionService interface {
	SubmitForm(ctx context.Context, formKey string, values map[string]any, userID *uint) (*models.Submission, error)
	OnBeforeSubmission(submission *models.Submission) bool
	OnAfterSubmission(ctx context.Context, success bool, submission *models.Submission)
	GetSubmissionByID(ctx context.Context, id uint) (*models.Submission, error)
	GetSubmissionsForForm(ctx context.Context, formID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	DeleteSubmission(ctx context.Context, formID uint, id uint, deletingUserID uint) error
	MarkSubmissionSpam(ctx context.Context, formID uint, id uint, isSpam bool, reason string) error
	PopulateFakeSubmission(form *models.Form) (*models.Submission, error)
	CountSubmissionsForUser(ctx context.Context, userID uint) (int64, error)
	DeleteUserSubmissions(ctx context.Context, userID uint, inheritorID *uint) error
	RestoreUserSubmissions(ctx context.Context, userID uint) error
}

// SubmissionService ISubmissionService arayüzünü uygular.
type SubmissionService struct {
	repo          repositories.ISubmissionRepository
	formRepo      repositories.IFormRepository
	spam          ISpamService
	notifications INotificationService
	integrations  IIntegrationService
	settings      func() *configs.Settings
	rng           *rand.Rand
	now           func() time.Time
}

// NewSubmissionService yeni bir SubmissionService örneği oluşturur.
func NewSubmissionService() ISubmissionService {
	return &SubmissionService{
		repo:          repositories.NewSubmissionRepository(),
		formRepo:      repositories.NewFormRepository(),
		spam:          NewSpamService(),
		notifications: NewNotificationService(),
		integrations:  NewIntegrationService(),
		settings:      configs.GetSettings,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
	}
}

// NewSubmissionServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewSubmissionServiceWith(
	repo repositories.ISubmissionRepository,
	formRepo repositories.IFormRepository,
	spam ISpamService,
	notifications INotificationService,
	integrations IIntegrationService,
	settings func() *configs.Settings,
) ISubmissionService {
	return &SubmissionService{
		repo:          repo,
		formRepo:      formRepo,
		spam:          spam,
		notifications: notifications,
		integrations:  integrations,
		settings:      settings,
		rng:           rand.New(rand.NewSource(1)),
		now:           time.Now,
	}
}

// isAcceptingSubmissions formun şu anda gönderim kabul edip etmediğini kontrol eder.
func (s *SubmissionService) isAcceptingSubmissions(ctx context.Context, form *models.Form) bool {
	if !form.IsEnabled {
		return false
	}
	now := s.now()
	detail := form.Detail
	if detail.AvailabilityFrom != nil && now.Before(*detail.AvailabilityFrom) {
		return false
	}
	if detail.AvailabilityTo != nil && now.After(*detail.AvailabilityTo) {
		return false
	}
	if detail.AvailabilitySubmissions != nil && *detail.AvailabilitySubmissions > 0 {
		count, err := s.repo.CountByFormID(ctx, form.ID)
		if err != nil {
			configslog.Log.Error("Gönderim sayısı alınamadı", zap.Uint("formID", form.ID), zap.Error(err))
			return false
		}
		if count >= int64(*detail.AvailabilitySubmissions) {
			return false
		}
	}
	return true
}

// SubmitForm public gönderim hattının tamamını çalıştırır: form kontrolü,
// spam kontrolü, yaşam döngüsü olayları, kalıcılaştırma ve sonuç dağıtımı.
// İstek bağlamı (referrer, IP) WithRequestMeta ile context'e konmuş olmalıdır.
func (s *SubmissionService) SubmitForm(ctx context.Context, formKey string, values map[string]any, userID *uint) (*models.Submission, error) {
	form, err := s.formRepo.FindByKey(ctx, formKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubmissionFormNotFound
		}
		return nil, err
	}
	if !s.isAcceptingSubmissions(ctx, form) {
		return nil, ErrFormNotAcceptingNew
	}
	if form.Detail.RequireUser && userID == nil {
		return nil, ErrSubmissionUserRequired
	}

	meta := RequestMetaFromContext(ctx)
	submission := &models.Submission{
		FormID:      form.ID,
		FieldValues: datatypes.JSONMap(values),
		IPAddress:   meta.IPAddress,
		UserID:      userID,
		Form:        *form,
	}

	s.spam.SpamChecks(submission, form)

	if !s.OnBeforeSubmission(submission) {
		return nil, ErrSubmissionRejected
	}

	settings := s.settings()
	persisted := true
	if submission.IsSpam && !settings.SaveSpam {
		persisted = false
	} else {
		if err := s.repo.Create(ctx, submission); err != nil {
			configslog.Log.Error("Gönderim kaydedilemedi", zap.Uint("formID", form.ID), zap.Error(err))
			persisted = false
		}
	}

	if submission.IsSpam {
		s.spam.LogSpam(submission)
	}

	s.OnAfterSubmission(ctx, persisted, submission)

	if !persisted && !submission.IsSpam {
		return submission, ErrSubmissionCreateFailed
	}
	return submission, nil
}

// OnBeforeSubmission kalıcılaştırma öncesi olayı yayınlar. Tamamlanmamış
// gönderimler ayrı bir olay kümesi kullanır. Dinleyici iptal ederse false döner.
func (s *SubmissionService) OnBeforeSubmission(submission *models.Submission) bool {
	event := SubmissionEvent{Submission: submission}
	var result events.HookResult
	if submission.IsIncomplete {
		result = BeforeIncompleteSubmissionHooks.Emit(event, events.HookResult{})
	} else {
		result = BeforeSubmissionHooks.Emit(event, events.HookResult{})
	}
	return !result.Cancelled
}

// OnAfterSubmission kalıcılaştırma sonrası dağıtımı yürütür.
//
// Tamamlanmamış gönderimlerde dinleyiciler devreye girmezse hiçbir dağıtım
// yapılmaz. Spam gönderim hiçbir zaman başarılı sayılmaz; yine de ayarlara
// göre e-posta bildirimleri gönderilebilir, entegrasyonlar asla tetiklenmez.
func (s *SubmissionService) OnAfterSubmission(ctx context.Context, success bool, submission *models.Submission) {
	if submission.IsIncomplete {
		result := AfterIncompleteSubmissionHooks.Emit(
			SubmissionEvent{Submission: submission, Success: success},
			events.HookResult{Handled: true},
		)
		if result.Handled {
			return
		}
	}

	if submission.IsSpam {
		success = false
	}

	AfterSubmissionHooks.Emit(SubmissionEvent{Submission: submission, Success: success}, events.HookResult{})

	settings := s.settings()
	if success {
		s.notifications.SendNotifications(ctx, submission)
		s.integrations.TriggerIntegrations(ctx, submission)
		return
	}
	if submission.IsSpam && settings.SpamEmailNotifications {
		s.notifications.SendNotifications(ctx, submission)
	}
}

// GetSubmissionByID gönderimi formu ve bildirimleriyle birlikte getirir.
func (s *SubmissionService) GetSubmissionByID(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// GetSubmissionsForForm panel listesi için sayfalanmış gönderimleri döndürür.
func (s *SubmissionService) GetSubmissionsForForm(ctx context.Context, formID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	submissions, totalCount, err := s.repo.FindAllByFormIDPaginated(ctx, formID, params)
	if err != nil {
		return nil, err
	}
	totalPages := queryparams.CalculateTotalPages(totalCount, params.PerPage)
	return &queryparams.PaginatedResult{
		Data: submissions,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  totalCount,
			TotalPages:  totalPages,
		},
	}, nil
}

// getSubmissionForForm gönderimi getirir ve verilen forma ait olduğunu doğrular.
// Panel mutasyonları form üzerinden yetkilendirilir; başka formun gönderimi
// çağıran için bulunamadı sayılır.
func (s *SubmissionService) getSubmissionForForm(ctx context.Context, formID uint, id uint) (*models.Submission, error) {
	submission, err := s.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.FormID != formID {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// DeleteSubmission formun gönderimini soft delete ile siler.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, formID uint, id uint, deletingUserID uint) error {
	submission, err := s.getSubmissionForForm(ctx, formID, id)
	if err != nil {
		return err
	}
	ctx = contextWithUserID(ctx, deletingUserID)
	if err := s.repo.Delete(ctx, submission); err != nil {
		configslog.Log.Error("Gönderim silinemedi", zap.Uint("id", id), zap.Error(err))
		return err
	}
	configslog.SLog.Infow("Gönderim silindi", "id", id, "deletingUserID", deletingUserID)
	return nil
}

// MarkSubmissionSpam panelden spam işaretini elle değiştirir.
func (s *SubmissionService) MarkSubmissionSpam(ctx context.Context, formID uint, id uint, isSpam bool, reason string) error {
	submission, err := s.getSubmissionForForm(ctx, formID, id)
	if err != nil {
		return err
	}
	submission.IsSpam = isSpam
	if isSpam {
		submission.SpamReason = reason
	} else {
		submission.SpamReason = ""
	}
	return s.repo.Update(ctx, submission)
}

// PopulateFakeSubmission formun alan düzeninden rastgele değerlerle doldurulmuş,
// kalıcılaştırılmamış bir gönderim üretir. Önizleme ve test için kullanılır.
func (s *SubmissionService) PopulateFakeSubmission(form *models.Form) (*models.Submission, error) {
	pages, err := form.Detail.Pages()
	if err != nil {
		return nil, err
	}
	values := fields.FakeValues(fields.LayoutFields(pages), s.rng)
	return &models.Submission{
		FormID:      form.ID,
		FieldValues: datatypes.JSONMap(values),
		Form:        *form,
	}, nil
}

// CountSubmissionsForUser kullanıcıya ait gönderim sayısını döndürür.
func (s *SubmissionService) CountSubmissionsForUser(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountByUserID(ctx, userID)
}

// DeleteUserSubmissions bir kullanıcı silinirken gönderimlerini işler:
// mirasçı verilirse sahiplik topluca devredilir, verilmezse gönderimler
// tek tek soft delete edilir. Tek kayıttaki hata diğerlerini engellemez.
func (s *SubmissionService) DeleteUserSubmissions(ctx context.Context, userID uint, inheritorID *uint) error {
	if inheritorID != nil {
		if *inheritorID == 0 || *inheritorID == userID {
			return ErrInheritorRequired
		}
		transferred, err := s.repo.TransferOwnership(ctx, userID, *inheritorID)
		if err != nil {
			return err
		}
		configslog.SLog.Infow("Kullanıcı gönderimleri devredildi.",
			"fromUserID", userID, "toUserID", *inheritorID, "count", transferred)
		return nil
	}

	submissions, err := s.repo.FindAllByFilters(ctx, repositories.SubmissionFilters{UserID: &userID})
	if err != nil {
		return err
	}
	for i := range submissions {
		if err := s.repo.Delete(ctx, &submissions[i]); err != nil {
			configslog.Log.Error("Kullanıcı gönderimi silinemedi",
				zap.Uint("submissionID", submissions[i].ID), zap.Uint("userID", userID), zap.Error(err))
		}
	}
	configslog.SLog.Infow("Kullanıcı gönderimleri silindi.", "userID", userID, "count", len(submissions))
	return nil
}

// RestoreUserSubmissions bir kullanıcı geri getirildiğinde soft delete edilmiş
// gönderimlerini geri açar.
func (s *SubmissionService) RestoreUserSubmissions(ctx context.Context, userID uint) error {
	submissions, err := s.repo.FindAllByFilters(ctx, repositories.SubmissionFilters{
		UserID:      &userID,
		WithTrashed: true,
	})
	if err != nil {
		return err
	}
	restored := 0
	for i := range submissions {
		if !submissions[i].DeletedAt.Valid {
			continue
		}
		if err := s.repo.Restore(ctx, &submissions[i]); err != nil {
			configslog.Log.Error("Kullanıcı gönderimi geri getirilemedi",
				zap.Uint("submissionID", submissions[i].ID), zap.Uint("userID", userID), zap.Error(err))
			continue
		}
		restored++
	}
	configslog.SLog.Infow("Kullanıcı gönderimleri geri getirildi.", "userID", userID, "count", restored)
	return nil
}

var _ ISubmissionService = (*SubmissionService)(nil)
