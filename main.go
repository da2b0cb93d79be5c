package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/database"
	"formlar.link/pkg/configstore"
	"formlar.link/repositories"
	"formlar.link/routes"
	"formlar.link/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	configslog.InitLogger()
	defer configslog.Sync()

	migrateFlag := flag.Bool("migrate", false, "Başlangıçta veritabanı migrasyonlarını çalıştır")
	seedFlag := flag.Bool("seed", false, "Başlangıçta veritabanı seeder'larını çalıştır")
	flag.Parse()

	db, err := configs.InitDatabase()
	if err != nil {
		configslog.SLog.Fatalf("Veritabanı bağlantısı kurulamadı: %v", err)
	}

	if *migrateFlag || *seedFlag {
		database.Initialize(db, *migrateFlag, *seedFlag)
	}

	// Proje config deposu: şablon değişiklikleri dosya üzerinden senkronize edilir.
	configPath := os.Getenv("PROJECT_CONFIG_PATH")
	if configPath == "" {
		configPath = "config/project.yaml"
	}
	store, err := configstore.NewStore(configPath)
	if err != nil {
		configslog.SLog.Fatalf("Config deposu yüklenemedi: %v", err)
	}
	stencilService := services.NewStencilService()
	stencilService.RegisterConfigHandlers(store)

	// Arkaplan görevleri: kuyruk worker'ı ve zamanlanmış budama.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := services.NewQueueWorker(
		repositories.NewJobRepository(),
		services.NewNotificationService(),
		services.NewIntegrationService(),
	)
	go worker.Start(ctx)
	go services.NewPruningService().RunScheduled(ctx)

	// HTTP sunucusu
	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views:             engine,
		ViewsLayout:       "layouts/main_layout",
		PassLocalsToViews: true,
	})
	routes.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Kapatma sinyali alındı, sunucu durduruluyor...")
		cancel()
		if err := app.Shutdown(); err != nil {
			configslog.Log.Error("Sunucu kapatılırken hata", zap.Error(err))
		}
	}()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}
	configslog.SLog.Infof("Sunucu %s portunda başlatılıyor...", port)
	if err := app.Listen(":" + port); err != nil {
		configslog.SLog.Fatalf("Sunucu başlatılamadı: %v", err)
	}
}
