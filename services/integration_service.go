package services

import (
	"context"
	"errors"
	"fmt"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/events"
	"formlar.link/repositories"

	"go.uber.org/zap"
)

// IntegrationServiceError özel servis hataları
type IntegrationServiceError string

func (e IntegrationServiceError) Error() string { return string(e) }

const (
	ErrIntegrationNotFound   IntegrationServiceError = "entegrasyon bulunamadı"
	ErrIntSubmissionNotFound IntegrationServiceError = "entegrasyon için gönderim bulunamadı"
	ErrIntegrationSendFailed IntegrationServiceError = "entegrasyon verisi gönderilemedi"
)

// RequestMeta gönderim isteğinin taşıdığı bağlam; entegrasyonlara eklenir.
type RequestMeta struct {
	Referrer  string
	IPAddress string
}

type requestMetaKey struct{}

// WithRequestMeta istek bağlamını context'e ekler.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext context'teki istek bağlamını döndürür.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// IIntegrationService entegrasyon seçimi ve tetiklemesi için arayüz.
type IIntegrationService interface {
	TriggerIntegrations(ctx context.Context, submission *models.Submission)
	SendIntegrationPayload(ctx context.Context, integration *models.Integration, submission *models.Submission) bool
	SendQueuedIntegration(ctx context.Context, payload models.TriggerIntegrationPayload) error
	GetAllEnabledCaptchas(ctx context.Context) ([]models.Integration, error)
}

// IntegrationService IIntegrationService arayüzünü uygular.
type IntegrationService struct {
	repo           repositories.IIntegrationRepository
	submissionRepo repositories.ISubmissionRepository
	queue          IQueueClient
	sender         IPayloadSender
	settings       func() *configs.Settings
}

// NewIntegrationService yeni bir IntegrationService örneği oluşturur.
func NewIntegrationService() IIntegrationService {
	return &IntegrationService{
		repo:           repositories.NewIntegrationRepository(),
		submissionRepo: repositories.NewSubmissionRepository(),
		queue:          NewQueueService(),
		sender:         LogPayloadSender{},
		settings:       configs.GetSettings,
	}
}

// NewIntegrationServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewIntegrationServiceWith(
	repo repositories.IIntegrationRepository,
	submissionRepo repositories.ISubmissionRepository,
	queue IQueueClient,
	sender IPayloadSender,
	settings func() *configs.Settings,
) IIntegrationService {
	return &IntegrationService{
		repo:           repo,
		submissionRepo: submissionRepo,
		queue:          queue,
		sender:         sender,
		settings:       settings,
	}
}

// TriggerIntegrations formun aktif, payload gönderebilen entegrasyonlarını
// sırayla tetikler. İstek bağlamı (referrer, IP) entegrasyon kopyasına eklenir,
// kalıcılaştırılmaz. Tek entegrasyondaki hata diğerlerini engellemez.
func (s *IntegrationService) TriggerIntegrations(ctx context.Context, submission *models.Submission) {
	settings := s.settings()
	meta := RequestMetaFromContext(ctx)

	integrations, err := s.repo.FindAllEnabledForForm(ctx, submission.FormID)
	if err != nil {
		configslog.Log.Error("Form entegrasyonları alınamadı",
			zap.Uint("submissionID", submission.ID), zap.Error(err))
		return
	}

	for i := range integrations {
		integration := integrations[i] // Kopya; istek bağlamı kopyaya yazılır
		if !integration.SupportsPayloadSending() {
			continue
		}

		integration.Referrer = meta.Referrer
		integration.IPAddress = meta.IPAddress

		if settings.UseQueueForIntegrations {
			payload := models.TriggerIntegrationPayload{
				SubmissionID:  submission.ID,
				IntegrationID: integration.ID,
				Referrer:      integration.Referrer,
				IPAddress:     integration.IPAddress,
			}
			if err := s.queue.Enqueue(ctx, models.JobKindTriggerIntegration, payload); err != nil {
				configslog.Log.Error("Entegrasyon görevi kuyruğa eklenemedi",
					zap.Uint("submissionID", submission.ID),
					zap.Uint("integrationID", integration.ID),
					zap.Error(err))
			}
			continue
		}

		s.SendIntegrationPayload(ctx, &integration, submission)
	}
}

// SendIntegrationPayload tek bir entegrasyonu tetikler. Normalde kuyruk görevi çağırır.
// Gönderim öncesi kontrol iptal ederse iletim hatasız atlanır (true döner).
func (s *IntegrationService) SendIntegrationPayload(ctx context.Context, integration *models.Integration, submission *models.Submission) bool {
	result := BeforeTriggerIntegrationHooks.Emit(TriggerIntegrationEvent{
		Submission:  submission,
		Integration: integration,
	}, events.HookResult{})
	if result.Cancelled {
		return true
	}

	if err := s.sender.SendPayload(ctx, integration, submission); err != nil {
		configslog.Log.Error("Entegrasyon verisi gönderilemedi",
			zap.Uint("submissionID", submission.ID),
			zap.Uint("integrationID", integration.ID),
			zap.String("kind", string(integration.Kind)),
			zap.Error(err))
		return false
	}
	return true
}

// SendQueuedIntegration kuyruk görevinden gelen entegrasyonu işler.
func (s *IntegrationService) SendQueuedIntegration(ctx context.Context, payload models.TriggerIntegrationPayload) error {
	submission, err := s.submissionRepo.FindByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			configslog.SLog.Warnw("Kuyruktaki entegrasyon görevi için gönderim bulunamadı.", "submissionID", payload.SubmissionID)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrIntSubmissionNotFound, err)
	}

	integration, err := s.repo.FindByID(ctx, payload.IntegrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			configslog.SLog.Warnw("Kuyruktaki entegrasyon görevi için entegrasyon bulunamadı.", "integrationID", payload.IntegrationID)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrIntegrationNotFound, err)
	}

	// Görev anında dondurulan istek bağlamı geri yüklenir.
	integration.Referrer = payload.Referrer
	integration.IPAddress = payload.IPAddress

	if !s.SendIntegrationPayload(ctx, integration, submission) {
		return fmt.Errorf("%w: submission %d, integration %d", ErrIntegrationSendFailed, submission.ID, integration.ID)
	}
	return nil
}

// GetAllEnabledCaptchas global olarak aktif captcha entegrasyonlarını döndürür.
func (s *IntegrationService) GetAllEnabledCaptchas(ctx context.Context) ([]models.Integration, error) {
	return s.repo.FindAllEnabledCaptchas(ctx)
}

var _ IIntegrationService = (*IntegrationService)(nil)
