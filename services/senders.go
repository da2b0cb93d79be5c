package services

import (
	"context"

	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
)

// IEmailSender bildirim e-postalarını fiilen ileten bileşen.
// SMTP/servis sağlayıcı taşıması bu çekirdeğin dışındadır; hat yalnızca
// hangi bildirimin ne zaman iletileceğine karar verir.
type IEmailSender interface {
	Send(ctx context.Context, notification *models.Notification, submission *models.Submission) error
}

// IPayloadSender entegrasyon verisini dış servise ileten bileşen.
type IPayloadSender interface {
	SendPayload(ctx context.Context, integration *models.Integration, submission *models.Submission) error
}

// LogEmailSender e-postayı göndermek yerine loglar. Geliştirme ortamı ve
// gerçek taşıyıcı yapılandırılmadığında kullanılır.
type LogEmailSender struct{}

func (LogEmailSender) Send(_ context.Context, notification *models.Notification, submission *models.Submission) error {
	configslog.Log.Info("Bildirim e-postası (log sender)",
		zap.Uint("submissionID", submission.ID),
		zap.Uint("notificationID", notification.ID),
		zap.String("to", notification.ToEmail),
		zap.String("subject", notification.Subject))
	return nil
}

// LogPayloadSender entegrasyon verisini göndermek yerine loglar.
type LogPayloadSender struct{}

func (LogPayloadSender) SendPayload(_ context.Context, integration *models.Integration, submission *models.Submission) error {
	configslog.Log.Info("Entegrasyon verisi (log sender)",
		zap.Uint("submissionID", submission.ID),
		zap.Uint("integrationID", integration.ID),
		zap.String("kind", string(integration.Kind)),
		zap.String("referrer", integration.Referrer),
		zap.String("ipAddress", integration.IPAddress))
	return nil
}

var (
	_ IEmailSender   = LogEmailSender{}
	_ IPayloadSender = LogPayloadSender{}
)
