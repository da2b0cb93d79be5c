package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type contextKey string

// ContextUserIDKey işlemi yapan kullanıcının ID'sini context üzerinden
// model hook'larına taşımak için kullanılır.
const ContextUserIDKey contextKey = "userID"

// BaseModel tüm modellere gömülen ortak alanlar.
// Soft delete (deleted_at) ve denetim kolonlarını (created_by vb.) içerir.
type BaseModel struct {
	ID        uint           `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedBy *uint          `gorm:"index"`
	UpdatedBy *uint
	DeletedBy *uint
}

// BeforeCreate context'teki kullanıcı ID'sini CreatedBy alanına yazar.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if userID, ok := userIDFromContext(tx.Statement.Context); ok {
		m.CreatedBy = &userID
	}
	return nil
}

// BeforeUpdate context'teki kullanıcı ID'sini UpdatedBy alanına yazar.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if userID, ok := userIDFromContext(tx.Statement.Context); ok {
		m.UpdatedBy = &userID
	}
	return nil
}

func userIDFromContext(ctx context.Context) (uint, bool) {
	if ctx == nil {
		return 0, false
	}
	userID, ok := ctx.Value(ContextUserIDKey).(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
