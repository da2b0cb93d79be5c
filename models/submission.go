package models

import (
	"gorm.io/datatypes"
)

// Submission bir forma yapılan tek bir gönderimi temsil eder.
// Alan değerleri handle -> değer eşlemesi olarak JSON saklanır.
type Submission struct {
	BaseModel
	FormID uint `gorm:"index;not null"`

	IsIncomplete bool   `gorm:"default:false;index"` // Çok sayfalı formda henüz tamamlanmadı
	IsSpam       bool   `gorm:"default:false;index"`
	SpamReason   string `gorm:"type:text"`

	FieldValues datatypes.JSONMap `gorm:"type:jsonb"`

	// İstek kaynağı bilgileri
	IPAddress string `gorm:"type:varchar(45);index"`
	UserID    *uint  `gorm:"index"`

	Form Form `gorm:"foreignKey:FormID"`
}
