// Package configstore proje yapılandırmasını dosya üzerinde tutan ve
// değişiklikleri kayıtlı işleyicilere dağıtan basit bir config deposudur.
// Yol biçimi "<bölüm>.<uid>" şeklindedir; işleyiciler bölüm başına kaydedilir.
package configstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrInvalidPath = errors.New("geçersiz config yolu")

// ChangeHandler bir bölümdeki değişiklikleri uygular.
// Apply ve Remove hataları Set/Remove çağrısına aynen döner; depo yazımı
// geri alınmaz (uygulama hatası, senkronizasyonun kendisi için ölümcüldür).
type ChangeHandler struct {
	Apply  func(uid string, data map[string]any) error
	Remove func(uid string) error
}

// Store dosya destekli config deposu. filePath boşsa yalnızca bellekte çalışır.
type Store struct {
	mu       sync.Mutex
	filePath string
	data     map[string]map[string]map[string]any // bölüm -> uid -> veri
	handlers map[string]ChangeHandler
}

// NewStore verilen YAML dosyasını yükleyerek bir depo oluşturur.
// Dosya yoksa boş depo ile başlar ve ilk yazımda dosya oluşturulur.
func NewStore(filePath string) (*Store, error) {
	store := &Store{
		filePath: filePath,
		data:     map[string]map[string]map[string]any{},
		handlers: map[string]ChangeHandler{},
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("config dosyası okunamadı: %w", err)
	}
	if err := yaml.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("config dosyası çözümlenemedi: %w", err)
	}
	return store, nil
}

// NewMemoryStore dosyasız, yalnızca bellekte çalışan depo oluşturur (testler için).
func NewMemoryStore() *Store {
	return &Store{
		data:     map[string]map[string]map[string]any{},
		handlers: map[string]ChangeHandler{},
	}
}

// OnChange bir bölüm için değişiklik işleyicisi kaydeder.
func (s *Store) OnChange(section string, handler ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[section] = handler
}

// Set verilen yola config verisi yazar, dosyaya kalıcılaştırır ve
// bölümün işleyicisini tetikler. İşleyici hatası aynen döner.
func (s *Store) Set(path string, value map[string]any) error {
	section, uid, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.data[section] == nil {
		s.data[section] = map[string]map[string]any{}
	}
	s.data[section][uid] = value
	persistErr := s.persistLocked()
	handler, hasHandler := s.handlers[section]
	s.mu.Unlock()

	if persistErr != nil {
		return persistErr
	}
	if hasHandler && handler.Apply != nil {
		return handler.Apply(uid, value)
	}
	return nil
}

// Remove verilen yolu depodan siler ve bölümün silme işleyicisini tetikler.
func (s *Store) Remove(path string) error {
	section, uid, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.data[section] != nil {
		delete(s.data[section], uid)
	}
	persistErr := s.persistLocked()
	handler, hasHandler := s.handlers[section]
	s.mu.Unlock()

	if persistErr != nil {
		return persistErr
	}
	if hasHandler && handler.Remove != nil {
		return handler.Remove(uid)
	}
	return nil
}

// Get verilen yoldaki config verisini döndürür.
func (s *Store) Get(path string) (map[string]any, bool) {
	section, uid, err := splitPath(path)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sectionData, ok := s.data[section]
	if !ok {
		return nil, false
	}
	value, ok := sectionData[uid]
	return value, ok
}

// Section bir bölümdeki tüm kayıtları döndürür (uid -> veri).
func (s *Store) Section(section string) map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]map[string]any, len(s.data[section]))
	for uid, value := range s.data[section] {
		out[uid] = value
	}
	return out
}

func (s *Store) persistLocked() error {
	if s.filePath == "" {
		return nil
	}
	raw, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("config serileştirilemedi: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("config dizini oluşturulamadı: %w", err)
	}
	if err := os.WriteFile(s.filePath, raw, 0o644); err != nil {
		return fmt.Errorf("config dosyası yazılamadı: %w", err)
	}
	return nil
}

func splitPath(path string) (section string, uid string, err error) {
	idx := strings.LastIndex(path, ".")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return path[:idx], path[idx+1:], nil
}
