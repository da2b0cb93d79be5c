package configs

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Settings eklenti genelindeki gönderim işleme ayarlarını taşır.
// Değerler .env'den okunur; testler SetSettings ile ezebilir.
type Settings struct {
	// Spam ayarları
	SpamKeywords           string // Satır başına bir kural (anahtar kelime, IP veya şablon ifadesi)
	SpamEmailNotifications bool   // Spam gönderimler için yine de e-posta bildirimi gönderilsin mi?
	SaveSpam               bool   // Spam gönderimler saklansın mı?
	SpamLimit              int    // Saklanacak en yeni spam gönderim sayısı (budama için)

	// Kuyruk ayarları
	UseQueueForNotifications bool
	UseQueueForIntegrations  bool

	// Budama ayarları
	MaxIncompleteSubmissionAge int // Gün cinsinden; 0 veya altı => budama yok
	PruneIntervalMinutes       int // Zamanlanmış budama görevinin çalışma aralığı
}

var (
	settings     *Settings
	settingsOnce sync.Once
	settingsMu   sync.RWMutex
)

// GetSettings ayarları döndürür, ilk çağrıda .env'den yükler.
func GetSettings() *Settings {
	settingsOnce.Do(func() {
		settingsMu.Lock()
		defer settingsMu.Unlock()
		if settings == nil {
			settings = loadSettingsFromEnv()
		}
	})
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

// SetSettings testlerde ayarları ezmek için kullanılır.
func SetSettings(s *Settings) {
	settingsOnce.Do(func() {})
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = s
}

func loadSettingsFromEnv() *Settings {
	return &Settings{
		SpamKeywords:               strings.ReplaceAll(os.Getenv("SPAM_KEYWORDS"), `\n`, "\n"),
		SpamEmailNotifications:     getEnvBool("SPAM_EMAIL_NOTIFICATIONS", false),
		SaveSpam:                   getEnvBool("SAVE_SPAM", true),
		SpamLimit:                  getEnvInt("SPAM_LIMIT", 500),
		UseQueueForNotifications:   getEnvBool("USE_QUEUE_FOR_NOTIFICATIONS", true),
		UseQueueForIntegrations:    getEnvBool("USE_QUEUE_FOR_INTEGRATIONS", true),
		MaxIncompleteSubmissionAge: getEnvInt("MAX_INCOMPLETE_AGE_DAYS", 30),
		PruneIntervalMinutes:       getEnvInt("PRUNE_INTERVAL_MINUTES", 60),
	}
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
