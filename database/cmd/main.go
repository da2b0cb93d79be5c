package main

import (
	"flag"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/database"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	configslog.InitLogger()
	defer configslog.Sync()

	migrateFlag := flag.Bool("migrate", false, "Veritabanı migrasyonlarını çalıştır")
	seedFlag := flag.Bool("seed", false, "Veritabanı seeder'larını çalıştır")
	flag.Parse()

	db, err := configs.InitDatabase()
	if err != nil {
		configslog.SLog.Fatalf("Veritabanı bağlantısı kurulamadı: %v", err)
	}

	configslog.SLog.Info("Veritabanı başlatma işlemi çalıştırılıyor...")
	database.Initialize(db, *migrateFlag, *seedFlag)

	configslog.SLog.Info("Veritabanı başlatma işlemi tamamlandı.")
}
