// Package events basit bir hook kayıt mekanizması sağlar.
// Paylaşılan mutable event nesneleri yerine, dinleyiciler sonucu küçük bir
// HookResult yapısı üzerinden değiştirir; çağıran taraf alanları kontrol eder.
package events

import "sync"

// HookResult bir hook zincirinin sonucunu taşır.
// Cancelled: işlem (örn. gönderim öncesi kontrol) iptal edildi.
// Handled: olay ele alındı; çağıran erken dönebilir.
type HookResult struct {
	Cancelled bool
	Handled   bool
}

// Hook tek bir dinleyici. Sonucu değiştirmek için result alanlarını günceller.
type Hook[T any] func(payload T, result *HookResult)

// Registry aynı olaya bağlı hook'ları kayıt sırasında çalıştırır.
type Registry[T any] struct {
	mu    sync.RWMutex
	hooks []Hook[T]
}

// NewRegistry boş bir registry oluşturur.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register yeni bir hook ekler. Hook'lar eklenme sırasıyla çalışır.
func (r *Registry[T]) Register(hook Hook[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Emit hook'ları verilen başlangıç sonucuyla sırayla çalıştırır ve
// son durumu döndürür. Hook yoksa başlangıç sonucu aynen döner.
func (r *Registry[T]) Emit(payload T, initial HookResult) HookResult {
	r.mu.RLock()
	hooks := make([]Hook[T], len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.RUnlock()

	result := initial
	for _, hook := range hooks {
		hook(payload, &result)
	}
	return result
}

// Reset tüm hook'ları kaldırır (testler için).
func (r *Registry[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = nil
}
