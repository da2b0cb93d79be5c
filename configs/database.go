package configs

import (
	"fmt"
	"os"
	"time"

	"formlar.link/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDatabase PostgreSQL bağlantısını kurar ve global db değişkenine atar.
// .env üzerinden DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME okunur.
func InitDatabase() (*gorm.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	name := getEnv("DB_NAME", "formlar")
	sslMode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host, port, user, password, name, sslMode)

	gormLogLevel := gormlogger.Warn
	if os.Getenv("APP_ENV") != "production" {
		gormLogLevel = gormlogger.Info
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel),
		TranslateError: true, // ErrDuplicatedKey gibi hataların yakalanabilmesi için
	})
	if err != nil {
		configslog.Log.Error("Veritabanı bağlantısı kurulamadı", zap.Error(err))
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db = conn
	configslog.SLog.Infof("Veritabanı bağlantısı kuruldu: %s@%s:%s/%s", user, host, port, name)
	return db, nil
}

// GetDB mevcut veritabanı bağlantısını döndürür.
// Servisler transaction başlatmak için bu handle'ı kullanır.
func GetDB() *gorm.DB {
	return db
}

// SetDB testlerde in-memory veritabanı enjekte etmek için kullanılır.
func SetDB(conn *gorm.DB) {
	db = conn
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
