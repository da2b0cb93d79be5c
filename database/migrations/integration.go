package migrations

import (
	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateIntegrationsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating integrations table...")
	err := db.AutoMigrate(&models.Integration{})
	if err != nil {
		configslog.Log.Error("Failed to migrate integrations table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Integrations table migrated successfully")
	return nil
}
