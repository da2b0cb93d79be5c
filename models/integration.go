package models

import (
	"gorm.io/datatypes"
)

// IntegrationKind entegrasyon türünü tanımlar.
type IntegrationKind string

const (
	IntegrationKindCaptcha        IntegrationKind = "captcha"
	IntegrationKindEmailMarketing IntegrationKind = "email_marketing"
	IntegrationKindWebhook        IntegrationKind = "webhook"
	IntegrationKindCRM            IntegrationKind = "crm"
)

// Integration üçüncü parti servis entegrasyonu tanımı.
// FormID nil ise entegrasyon globaldir, tüm formlar için geçerlidir.
type Integration struct {
	BaseModel
	FormID *uint `gorm:"index"`

	Name     string          `gorm:"type:varchar(150);not null"`
	Handle   string          `gorm:"type:varchar(64);index;not null"`
	Kind     IntegrationKind `gorm:"type:varchar(30);not null;index"`
	Enabled  bool            `gorm:"default:false;index"`
	Settings datatypes.JSON  `gorm:"type:jsonb"` // API anahtarı, liste ID vb.

	// İstek bağlamı; gönderim anında doldurulur, veritabanına yazılmaz.
	Referrer  string `gorm:"-"`
	IPAddress string `gorm:"-"`
}

// SupportsPayloadSending entegrasyonun gönderim verisini dışarı aktarıp
// aktaramayacağını söyler. Captcha'lar yalnızca doğrulama yapar, payload göndermez.
func (i *Integration) SupportsPayloadSending() bool {
	return i.Kind != IntegrationKindCaptcha
}
