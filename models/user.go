package models

// User panel kullanıcısı. IsSystem=true olan kullanıcı tüm kayıtlara erişebilir.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(150);not null"`
	Email        string `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsSystem     bool   `gorm:"default:false"`
	IsEnabled    bool   `gorm:"default:true"`
}
