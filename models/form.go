package models

// Form online formun ana kaydıdır.
type Form struct {
	BaseModel
	Key           string `gorm:"type:varchar(36);uniqueIndex;not null"` // Public erişim anahtarı
	CreatorUserID uint   `gorm:"index;not null"`
	IsEnabled     bool   `gorm:"default:true;index"`

	// GORM İlişkileri
	Detail        FormDetail     `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Notifications []Notification `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// EnabledNotifications formun aktif bildirimlerini tanım sırasıyla döndürür.
func (f *Form) EnabledNotifications() []Notification {
	var enabled []Notification
	for _, notification := range f.Notifications {
		if notification.Enabled {
			enabled = append(enabled, notification)
		}
	}
	return enabled
}
