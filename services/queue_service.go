package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/repositories"

	"go.uber.org/zap"
)

// IQueueClient ertelenmiş görevleri kuyruğa ekler.
// Görevler en az bir kez çalışır; birbirlerine göre sıralama garantisi yoktur.
type IQueueClient interface {
	Enqueue(ctx context.Context, kind models.JobKind, payload any) error
}

// QueueService IQueueClient arayüzünü veritabanı destekli kuyruğa uygular.
type QueueService struct {
	repo repositories.IJobRepository
}

// NewQueueService yeni bir QueueService örneği oluşturur.
func NewQueueService() *QueueService {
	return &QueueService{repo: repositories.NewJobRepository()}
}

// NewQueueServiceWith verilen repository ile oluşturur (testler için).
func NewQueueServiceWith(repo repositories.IJobRepository) *QueueService {
	return &QueueService{repo: repo}
}

// Enqueue görevi serileştirip kuyruğa ekler.
func (s *QueueService) Enqueue(ctx context.Context, kind models.JobKind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("görev verisi serileştirilemedi: %w", err)
	}
	job := &models.Job{Kind: kind, Payload: raw}
	if err := s.repo.Enqueue(ctx, job); err != nil {
		configslog.Log.Error("Görev kuyruğa eklenemedi", zap.String("kind", string(kind)), zap.Error(err))
		return err
	}
	return nil
}

var _ IQueueClient = (*QueueService)(nil)

// QueueWorker kuyruktaki görevleri işleyen arka plan döngüsü.
type QueueWorker struct {
	jobs          repositories.IJobRepository
	notifications INotificationService
	integrations  IIntegrationService

	interval   time.Duration
	batchSize  int
	retryAfter time.Duration
}

// NewQueueWorker yeni bir worker oluşturur.
func NewQueueWorker(jobs repositories.IJobRepository, notifications INotificationService, integrations IIntegrationService) *QueueWorker {
	return &QueueWorker{
		jobs:          jobs,
		notifications: notifications,
		integrations:  integrations,
		interval:      5 * time.Second,
		batchSize:     20,
		retryAfter:    time.Minute,
	}
}

// Start worker döngüsünü başlatır; ctx iptal edilince durur.
func (w *QueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	configslog.SLog.Info("Kuyruk worker'ı başlatıldı.")
	for {
		select {
		case <-ctx.Done():
			configslog.SLog.Info("Kuyruk worker'ı durduruluyor.")
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce zamanı gelen görevleri bir kez işler.
// Görev hatası worker'ı durdurmaz; görev yeniden zamanlanır.
func (w *QueueWorker) ProcessOnce(ctx context.Context) {
	jobs, err := w.jobs.ClaimDue(ctx, w.batchSize, time.Now().UTC())
	if err != nil {
		return // Repo zaten logladı
	}

	for i := range jobs {
		job := &jobs[i]
		if err := w.runJob(ctx, job); err != nil {
			configslog.Log.Error("Kuyruk görevi başarısız oldu",
				zap.Uint("jobID", job.ID),
				zap.String("kind", string(job.Kind)),
				zap.Int("attempts", job.Attempts),
				zap.Error(err))
			if markErr := w.jobs.MarkFailed(ctx, job, err, w.retryAfter); markErr != nil {
				configslog.Log.Error("Görev başarısızlığı kaydedilemedi", zap.Uint("jobID", job.ID), zap.Error(markErr))
			}
			continue
		}
		if err := w.jobs.MarkDone(ctx, job); err != nil {
			configslog.Log.Error("Görev tamamlandı olarak işaretlenemedi", zap.Uint("jobID", job.ID), zap.Error(err))
		}
	}
}

func (w *QueueWorker) runJob(ctx context.Context, job *models.Job) error {
	switch job.Kind {
	case models.JobKindSendNotification:
		var payload models.SendNotificationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("görev verisi çözümlenemedi: %w", err)
		}
		return w.notifications.SendQueuedNotification(ctx, payload)
	case models.JobKindTriggerIntegration:
		var payload models.TriggerIntegrationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("görev verisi çözümlenemedi: %w", err)
		}
		return w.integrations.SendQueuedIntegration(ctx, payload)
	default:
		return fmt.Errorf("bilinmeyen görev türü: %s", job.Kind)
	}
}
