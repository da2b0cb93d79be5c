package configslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log yapısal loglama için global zap logger.
// SLog ise formatlı (Sugared) loglama için kullanılır.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

func init() {
	// Testlerde veya init sırasını beklemeyen kodda nil pointer olmaması için
	// varsayılan olarak no-op logger atanır. InitLogger çağrısı bunu değiştirir.
	Log = zap.NewNop()
	SLog = Log.Sugar()
}

// InitLogger ortama göre zap logger'ı kurar.
// APP_ENV=production ise JSON, aksi halde okunabilir konsol çıktısı üretir.
func InitLogger() {
	var cfg zap.Config

	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// Logger kurulamazsa uygulama devam edemez.
		panic("zap logger oluşturulamadı: " + err.Error())
	}

	Log = logger
	SLog = logger.Sugar()
}

// Sync tamponlanmış log kayıtlarını diske yazar. main'de defer ile çağrılır.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
