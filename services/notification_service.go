package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/events"
	"formlar.link/repositories"

	"go.uber.org/zap"
)

// NotificationServiceError özel servis hataları
type NotificationServiceError string

func (e NotificationServiceError) Error() string { return string(e) }

const (
	ErrNotificationNotFound   NotificationServiceError = "bildirim bulunamadı"
	ErrNtfSubmissionNotFound  NotificationServiceError = "bildirim için gönderim bulunamadı"
	ErrNotificationSendFailed NotificationServiceError = "bildirim gönderilemedi"
)

// INotificationService bildirim seçimi ve gönderimi için arayüz.
type INotificationService interface {
	SendNotifications(ctx context.Context, submission *models.Submission)
	SendNotificationEmail(ctx context.Context, notification *models.Notification, submission *models.Submission) bool
	EvaluateConditions(notification *models.Notification, submission *models.Submission) bool
	SendQueuedNotification(ctx context.Context, payload models.SendNotificationPayload) error
}

// NotificationService INotificationService arayüzünü uygular.
type NotificationService struct {
	submissionRepo repositories.ISubmissionRepository
	queue          IQueueClient
	sender         IEmailSender
	settings       func() *configs.Settings
}

// NewNotificationService yeni bir NotificationService örneği oluşturur.
func NewNotificationService() INotificationService {
	return &NotificationService{
		submissionRepo: repositories.NewSubmissionRepository(),
		queue:          NewQueueService(),
		sender:         LogEmailSender{},
		settings:       configs.GetSettings,
	}
}

// NewNotificationServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewNotificationServiceWith(
	submissionRepo repositories.ISubmissionRepository,
	queue IQueueClient,
	sender IEmailSender,
	settings func() *configs.Settings,
) INotificationService {
	return &NotificationService{
		submissionRepo: submissionRepo,
		queue:          queue,
		sender:         sender,
		settings:       settings,
	}
}

// SendNotifications formun aktif bildirimlerini sırayla işler.
// Koşulu tutmayanlar atlanır; kuyruk ayarı açıksa görevler kuyruğa eklenir.
// Tek bildirimdeki hata diğerlerini engellemez.
func (s *NotificationService) SendNotifications(ctx context.Context, submission *models.Submission) {
	settings := s.settings()

	for i := range submission.Form.Notifications {
		notification := &submission.Form.Notifications[i]
		if !notification.Enabled {
			continue
		}
		if !s.EvaluateConditions(notification, submission) {
			continue
		}

		if settings.UseQueueForNotifications {
			payload := models.SendNotificationPayload{
				SubmissionID:   submission.ID,
				NotificationID: notification.ID,
			}
			if err := s.queue.Enqueue(ctx, models.JobKindSendNotification, payload); err != nil {
				configslog.Log.Error("Bildirim görevi kuyruğa eklenemedi",
					zap.Uint("submissionID", submission.ID),
					zap.Uint("notificationID", notification.ID),
					zap.Error(err))
			}
			continue
		}

		s.SendNotificationEmail(ctx, notification, submission)
	}
}

// SendNotificationEmail tek bir bildirimi iletir. Normalde kuyruk görevi çağırır.
// Gönderim öncesi kontrol iptal ederse iletim hatasız atlanır (true döner).
func (s *NotificationService) SendNotificationEmail(ctx context.Context, notification *models.Notification, submission *models.Submission) bool {
	result := BeforeSendNotificationHooks.Emit(SendNotificationEvent{
		Submission:   submission,
		Notification: notification,
	}, events.HookResult{})
	if result.Cancelled {
		return true
	}

	if err := s.sender.Send(ctx, notification, submission); err != nil {
		configslog.Log.Error("Bildirim e-postası gönderilemedi",
			zap.Uint("submissionID", submission.ID),
			zap.Uint("notificationID", notification.ID),
			zap.Error(err))
		return false
	}
	return true
}

// SendQueuedNotification kuyruk görevinden gelen bildirimi işler.
func (s *NotificationService) SendQueuedNotification(ctx context.Context, payload models.SendNotificationPayload) error {
	submission, err := s.submissionRepo.FindByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Gönderim bu arada silinmiş olabilir (örn. budama); görev başarısız sayılmaz.
			configslog.SLog.Warnw("Kuyruktaki bildirim görevi için gönderim bulunamadı.", "submissionID", payload.SubmissionID)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrNtfSubmissionNotFound, err)
	}

	var notification *models.Notification
	for i := range submission.Form.Notifications {
		if submission.Form.Notifications[i].ID == payload.NotificationID {
			notification = &submission.Form.Notifications[i]
			break
		}
	}
	if notification == nil {
		configslog.SLog.Warnw("Kuyruktaki bildirim görevi için bildirim bulunamadı.", "notificationID", payload.NotificationID)
		return nil
	}

	if !s.SendNotificationEmail(ctx, notification, submission) {
		return fmt.Errorf("%w: submission %d, notification %d", ErrNotificationSendFailed, submission.ID, notification.ID)
	}
	return nil
}

// EvaluateConditions bildirimin koşul kümesini gönderime karşı değerlendirir.
// Koşul tanımlanmamışsa veya kapalıysa bildirim gönderilir.
func (s *NotificationService) EvaluateConditions(notification *models.Notification, submission *models.Submission) bool {
	set, err := notification.ConditionSet()
	if err != nil {
		configslog.SLog.Warnw("Bildirim koşulları çözümlenemedi, bildirim gönderilecek.",
			"notificationID", notification.ID, "error", err)
		return true
	}
	if !set.Enabled || len(set.Items) == 0 {
		return true
	}

	for _, condition := range set.Items {
		matched := evaluateCondition(condition, submission.FieldValues[condition.Field])
		if set.MatchAll && !matched {
			return false
		}
		if !set.MatchAll && matched {
			return true
		}
	}
	return set.MatchAll
}

func evaluateCondition(condition models.NotificationCondition, value any) bool {
	actual := fmt.Sprint(value)
	if value == nil {
		actual = ""
	}

	switch condition.Operator {
	case models.OperatorEquals:
		return actual == condition.Value
	case models.OperatorNotEquals:
		return actual != condition.Value
	case models.OperatorContains:
		return strings.Contains(actual, condition.Value)
	case models.OperatorStartsWith:
		return strings.HasPrefix(actual, condition.Value)
	case models.OperatorEndsWith:
		return strings.HasSuffix(actual, condition.Value)
	case models.OperatorGreaterThan, models.OperatorLessThan:
		actualNum, err1 := strconv.ParseFloat(strings.TrimSpace(actual), 64)
		expectedNum, err2 := strconv.ParseFloat(strings.TrimSpace(condition.Value), 64)
		if err1 != nil || err2 != nil {
			return false
		}
		if condition.Operator == models.OperatorGreaterThan {
			return actualNum > expectedNum
		}
		return actualNum < expectedNum
	default:
		return false
	}
}

var _ INotificationService = (*NotificationService)(nil)
