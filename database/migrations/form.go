package migrations

import (
	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateFormsTables(db *gorm.DB) error {
	configslog.SLog.Info("Migrating forms, form_details & notifications tables...")
	err := db.AutoMigrate(&models.Form{}, &models.FormDetail{}, &models.Notification{})
	if err != nil {
		configslog.Log.Error("Failed to migrate forms tables", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Forms tables migrated successfully")
	return nil
}
