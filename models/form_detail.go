package models

import (
	"time"

	"formlar.link/fields"

	"gorm.io/datatypes"
)

// DataRetention bir formun gönderim saklama politikasını tanımlar.
type DataRetention string

const (
	DataRetentionForever DataRetention = "forever"
	DataRetentionMinutes DataRetention = "minutes"
	DataRetentionHours   DataRetention = "hours"
	DataRetentionDays    DataRetention = "days"
	DataRetentionWeeks   DataRetention = "weeks"
	DataRetentionMonths  DataRetention = "months"
	DataRetentionYears   DataRetention = "years"
)

// FormDetail formun ayarlarını ve alan düzenini içerir.
type FormDetail struct {
	BaseModel
	FormID uint `gorm:"uniqueIndex;not null"` // forms.id FK

	Title               string `gorm:"type:varchar(255);not null"`
	Handle              string `gorm:"type:varchar(64);index"`
	Description         string `gorm:"type:text"`
	ConfirmationMessage string `gorm:"type:text"`
	RedirectURLOnSubmit string `gorm:"type:varchar(500)"`
	RequireUser         bool   `gorm:"type:boolean;default:false"`
	UserDeletedAction   string `gorm:"type:varchar(20);default:'retain'"` // retain | delete
	FileUploadsAction   string `gorm:"type:varchar(20);default:'retain'"`

	// Erişilebilirlik penceresi
	AvailabilityFrom        *time.Time `gorm:"index;type:timestamptz"`
	AvailabilityTo          *time.Time `gorm:"index;type:timestamptz"`
	AvailabilitySubmissions *int       `gorm:"type:integer"` // Gönderim sayısı limiti (nullable)

	// Veri saklama politikası
	DataRetention      DataRetention `gorm:"type:varchar(10);default:'forever';index"`
	DataRetentionValue int           `gorm:"type:integer;default:0"`

	// Alan düzeni (sayfalar ve alanlar), fields.Page listesi olarak JSON saklanır.
	FieldLayout datatypes.JSON `gorm:"type:jsonb"`
}

// Pages alan düzenini çözümleyip döndürür. Bozuk düzen hata döndürür.
func (d *FormDetail) Pages() ([]fields.Page, error) {
	return fields.ParseLayout(d.FieldLayout)
}
