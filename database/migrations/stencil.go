package migrations

import (
	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateStencilsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating stencils table...")
	err := db.AutoMigrate(&models.Stencil{})
	if err != nil {
		configslog.Log.Error("Failed to migrate stencils table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Stencils table migrated successfully")
	return nil
}
