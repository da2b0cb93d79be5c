package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobKind kuyruk görev türleri.
type JobKind string

const (
	JobKindSendNotification   JobKind = "send_notification"
	JobKindTriggerIntegration JobKind = "trigger_integration"
)

// Job ertelenmiş bir kuyruk görevini temsil eder.
// Worker görevleri run_at sırasına göre alır; en az bir kez çalıştırma garantisi
// vardır, sıralama garantisi yoktur.
type Job struct {
	BaseModel
	Kind        JobKind        `gorm:"type:varchar(40);not null;index"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Attempts    int            `gorm:"default:0"`
	MaxAttempts int            `gorm:"default:3"`
	RunAt       time.Time      `gorm:"index;not null"`
	ReservedAt  *time.Time     `gorm:"index"`
	LastError   string         `gorm:"type:text"`
}

// SendNotificationPayload send_notification görevinin veri yükü.
type SendNotificationPayload struct {
	SubmissionID   uint `json:"submissionId"`
	NotificationID uint `json:"notificationId"`
}

// TriggerIntegrationPayload trigger_integration görevinin veri yükü.
// Entegrasyon ayarları ve istek bağlamı görev anında dondurulur.
type TriggerIntegrationPayload struct {
	SubmissionID  uint   `json:"submissionId"`
	IntegrationID uint   `json:"integrationId"`
	Referrer      string `json:"referrer"`
	IPAddress     string `json:"ipAddress"`
}
