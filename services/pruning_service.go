package services

import (
	"context"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/repositories"

	"go.uber.org/zap"
)

// IPruningService zamanlanmış gönderim budama işlemleri için arayüz.
type IPruningService interface {
	PruneIncompleteSubmissions(ctx context.Context) (int, error)
	PruneDataRetentionSubmissions(ctx context.Context) (int, error)
	RunScheduled(ctx context.Context)
}

// PruningService IPruningService arayüzünü uygular.
type PruningService struct {
	repo     repositories.ISubmissionRepository
	formRepo repositories.IFormRepository
	settings func() *configs.Settings
	now      func() time.Time
}

// NewPruningService yeni bir PruningService örneği oluşturur.
func NewPruningService() IPruningService {
	return &PruningService{
		repo:     repositories.NewSubmissionRepository(),
		formRepo: repositories.NewFormRepository(),
		settings: configs.GetSettings,
		now:      time.Now,
	}
}

// NewPruningServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewPruningServiceWith(
	repo repositories.ISubmissionRepository,
	formRepo repositories.IFormRepository,
	settings func() *configs.Settings,
	now func() time.Time,
) IPruningService {
	return &PruningService{
		repo:     repo,
		formRepo: formRepo,
		settings: settings,
		now:      now,
	}
}

// PruneIncompleteSubmissions belirlenen yaştan eski tamamlanmamış gönderimleri
// kalıcı olarak siler, ardından spam saklama limitini aşan en eski spam
// gönderimleri temizler. Silinen toplam kayıt sayısını döndürür.
func (s *PruningService) PruneIncompleteSubmissions(ctx context.Context) (int, error) {
	settings := s.settings()
	if settings.MaxIncompleteSubmissionAge <= 0 {
		return 0, nil
	}

	deleted := 0
	cutoff := s.now().AddDate(0, 0, -settings.MaxIncompleteSubmissionAge)
	incomplete := true
	submissions, err := s.repo.FindAllByFilters(ctx, repositories.SubmissionFilters{
		IsIncomplete:  &incomplete,
		UpdatedBefore: &cutoff,
	})
	if err != nil {
		return 0, err
	}
	for i := range submissions {
		if err := s.repo.HardDelete(ctx, &submissions[i]); err != nil {
			configslog.Log.Error("Tamamlanmamış gönderim budanamadı",
				zap.Uint("submissionID", submissions[i].ID), zap.Error(err))
			continue
		}
		deleted++
	}

	// Spam saklama limiti: en yeni N spam tutulur, gerisi silinir.
	if settings.SaveSpam && settings.SpamLimit > 0 {
		spam := true
		overflow, err := s.repo.FindAllByFilters(ctx, repositories.SubmissionFilters{
			IsSpam:             &spam,
			OrderByCreatedDesc: true,
			Offset:             settings.SpamLimit,
		})
		if err != nil {
			return deleted, err
		}
		for i := range overflow {
			if err := s.repo.HardDelete(ctx, &overflow[i]); err != nil {
				configslog.Log.Error("Spam gönderim budanamadı",
					zap.Uint("submissionID", overflow[i].ID), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		configslog.SLog.Infow("Tamamlanmamış ve fazla spam gönderimler budandı.", "count", deleted)
	}
	return deleted, nil
}

// retentionCutoff formun saklama politikasına göre silme eşiğini hesaplar.
// Ay ve yıl birimleri takvim üzerinden geri gider, diğerleri sabit sürelerdir.
func retentionCutoff(now time.Time, retention models.DataRetention, value int) (time.Time, bool) {
	if value <= 0 {
		return time.Time{}, false
	}
	switch retention {
	case models.DataRetentionMinutes:
		return now.Add(-time.Duration(value) * time.Minute), true
	case models.DataRetentionHours:
		return now.Add(-time.Duration(value) * time.Hour), true
	case models.DataRetentionDays:
		return now.AddDate(0, 0, -value), true
	case models.DataRetentionWeeks:
		return now.AddDate(0, 0, -7*value), true
	case models.DataRetentionMonths:
		return now.AddDate(0, -value, 0), true
	case models.DataRetentionYears:
		return now.AddDate(-value, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// PruneDataRetentionSubmissions saklama politikası olan her form için eşikten
// eski gönderimleri kalıcı olarak siler. Tek formdaki hata diğerlerini
// engellemez.
func (s *PruningService) PruneDataRetentionSubmissions(ctx context.Context) (int, error) {
	forms, err := s.formRepo.FindAllWithRetention(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	now := s.now()
	for i := range forms {
		form := &forms[i]
		cutoff, ok := retentionCutoff(now, form.Detail.DataRetention, form.Detail.DataRetentionValue)
		if !ok {
			continue
		}

		submissions, err := s.repo.FindAllByFilters(ctx, repositories.SubmissionFilters{
			FormID:        &form.ID,
			CreatedBefore: &cutoff,
			WithTrashed:   true,
		})
		if err != nil {
			configslog.Log.Error("Form gönderimleri saklama budaması için alınamadı",
				zap.Uint("formID", form.ID), zap.Error(err))
			continue
		}
		for j := range submissions {
			if err := s.repo.HardDelete(ctx, &submissions[j]); err != nil {
				configslog.Log.Error("Saklama süresi dolan gönderim silinemedi",
					zap.Uint("submissionID", submissions[j].ID), zap.Uint("formID", form.ID), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		configslog.SLog.Infow("Saklama süresi dolan gönderimler budandı.", "count", deleted)
	}
	return deleted, nil
}

// RunScheduled budama görevlerini ayarlardaki aralıkla döngüde çalıştırır.
// Context iptal edilene kadar bloklar; main bir goroutine içinde çağırır.
func (s *PruningService) RunScheduled(ctx context.Context) {
	interval := time.Duration(s.settings().PruneIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PruneIncompleteSubmissions(ctx); err != nil {
				configslog.Log.Error("Tamamlanmamış gönderim budaması başarısız", zap.Error(err))
			}
			if _, err := s.PruneDataRetentionSubmissions(ctx); err != nil {
				configslog.Log.Error("Saklama budaması başarısız", zap.Error(err))
			}
		}
	}
}

var _ IPruningService = (*PruningService)(nil)
