package repositories

import (
	"context"
	"errors"
	"time"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IJobRepository kuyruk görevleri için veritabanı işlemleri.
type IJobRepository interface {
	Enqueue(ctx context.Context, job *models.Job) error
	ClaimDue(ctx context.Context, limit int, now time.Time) ([]models.Job, error)
	MarkDone(ctx context.Context, job *models.Job) error
	MarkFailed(ctx context.Context, job *models.Job, jobErr error, retryAfter time.Duration) error
}

// JobRepository IJobRepository arayüzünü uygular.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository yeni bir JobRepository örneği oluşturur.
func NewJobRepository() IJobRepository {
	return &JobRepository{db: configs.GetDB()}
}

// NewJobRepositoryTx transaction içinde çalışan repository oluşturur.
func NewJobRepositoryTx(tx *gorm.DB) IJobRepository {
	return &JobRepository{db: tx}
}

func (r *JobRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Enqueue yeni bir görevi kuyruğa ekler.
func (r *JobRepository) Enqueue(ctx context.Context, job *models.Job) error {
	if job == nil || job.Kind == "" {
		return errors.New("geçersiz kuyruk görevi")
	}
	if job.RunAt.IsZero() {
		job.RunAt = time.Now().UTC()
	}
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = 3
	}
	return r.getDB(ctx).Create(job).Error
}

// ClaimDue zamanı gelmiş görevleri kilitleyip rezerve eder.
// Kilitlenen satırlar başka worker'lar tarafından atlanır (SKIP LOCKED).
func (r *JobRepository) ClaimDue(ctx context.Context, limit int, now time.Time) ([]models.Job, error) {
	var jobs []models.Job

	err := r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.
			Where("run_at <= ?", now).
			Where("reserved_at IS NULL").
			Where("attempts < max_attempts").
			Order("run_at ASC").
			Limit(limit)

		// SQLite SKIP LOCKED desteklemez; testlerde tek worker çalışır.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		if err := query.Find(&jobs).Error; err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]uint, len(jobs))
		for i, job := range jobs {
			ids[i] = job.ID
		}
		reservedAt := now
		if err := tx.Model(&models.Job{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{"reserved_at": reservedAt, "attempts": gorm.Expr("attempts + 1")}).Error; err != nil {
			return err
		}
		for i := range jobs {
			jobs[i].ReservedAt = &reservedAt
			jobs[i].Attempts++
		}
		return nil
	})
	if err != nil {
		configslog.Log.Error("JobRepository.ClaimDue: DB error", zap.Error(err))
		return nil, err
	}
	return jobs, nil
}

// MarkDone tamamlanan görevi kuyruğundan kaldırır.
func (r *JobRepository) MarkDone(ctx context.Context, job *models.Job) error {
	if job == nil || job.ID == 0 {
		return errors.New("geçersiz kuyruk görevi")
	}
	return r.getDB(ctx).Unscoped().Delete(job).Error
}

// MarkFailed başarısız görevi serbest bırakır ve yeniden denemeye zamanlar.
// Deneme hakkı bitmişse görev kuyrukta ölü kayıt olarak kalır.
func (r *JobRepository) MarkFailed(ctx context.Context, job *models.Job, jobErr error, retryAfter time.Duration) error {
	if job == nil || job.ID == 0 {
		return errors.New("geçersiz kuyruk görevi")
	}
	lastError := ""
	if jobErr != nil {
		lastError = jobErr.Error()
	}
	return r.getDB(ctx).Model(job).Updates(map[string]interface{}{
		"reserved_at": nil,
		"last_error":  lastError,
		"run_at":      time.Now().UTC().Add(retryAfter),
	}).Error
}

var _ IJobRepository = (*JobRepository)(nil)
