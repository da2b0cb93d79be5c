package services

import (
	"formlar.link/models"
	"formlar.link/pkg/events"
)

// SubmissionEvent gönderim yaşam döngüsü olaylarının veri yükü.
type SubmissionEvent struct {
	Submission *models.Submission
	Success    bool
}

// SpamCheckEvent spam kontrolü öncesi/sonrası olay yükü.
type SpamCheckEvent struct {
	Submission *models.Submission
}

// SendNotificationEvent bildirim gönderimi öncesi kontrol yükü.
// Dinleyici result.Cancelled=true yaparsa gönderim sessizce atlanır.
type SendNotificationEvent struct {
	Submission   *models.Submission
	Notification *models.Notification
}

// TriggerIntegrationEvent entegrasyon tetiklemesi öncesi kontrol yükü.
type TriggerIntegrationEvent struct {
	Submission  *models.Submission
	Integration *models.Integration
}

// StencilEvent şablon kaydetme/silme olaylarının yükü.
type StencilEvent struct {
	Stencil *models.Stencil
	IsNew   bool
}

// Gönderim işleme hattının gözlem noktaları. Dinleyiciler Register ile
// bağlanır; eklenti davranışını HookResult alanları üzerinden değiştirir.
var (
	BeforeSubmissionHooks           = events.NewRegistry[SubmissionEvent]()
	BeforeIncompleteSubmissionHooks = events.NewRegistry[SubmissionEvent]()
	AfterSubmissionHooks            = events.NewRegistry[SubmissionEvent]()
	AfterIncompleteSubmissionHooks  = events.NewRegistry[SubmissionEvent]()

	BeforeSpamCheckHooks = events.NewRegistry[SpamCheckEvent]()
	AfterSpamCheckHooks  = events.NewRegistry[SpamCheckEvent]()

	BeforeSendNotificationHooks   = events.NewRegistry[SendNotificationEvent]()
	BeforeTriggerIntegrationHooks = events.NewRegistry[TriggerIntegrationEvent]()

	BeforeSaveStencilHooks   = events.NewRegistry[StencilEvent]()
	AfterSaveStencilHooks    = events.NewRegistry[StencilEvent]()
	BeforeDeleteStencilHooks = events.NewRegistry[StencilEvent]()
	AfterDeleteStencilHooks  = events.NewRegistry[StencilEvent]()
)
