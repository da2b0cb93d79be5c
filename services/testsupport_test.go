package services

import (
	"context"
	"sync"
	"time"

	"formlar.link/configs"
	"formlar.link/models"
	"formlar.link/pkg/queryparams"
	"formlar.link/repositories"
)

// Testlerde kullanılan bellek içi sahte bağımlılıklar. Veritabanı davranışı
// repository testlerinde doğrulanır; servis testleri iş mantığına odaklanır.

func testSettings(s configs.Settings) func() *configs.Settings {
	return func() *configs.Settings { return &s }
}

func resetHooks() {
	BeforeSubmissionHooks.Reset()
	BeforeIncompleteSubmissionHooks.Reset()
	AfterSubmissionHooks.Reset()
	AfterIncompleteSubmissionHooks.Reset()
	BeforeSpamCheckHooks.Reset()
	AfterSpamCheckHooks.Reset()
	BeforeSendNotificationHooks.Reset()
	BeforeTriggerIntegrationHooks.Reset()
	BeforeSaveStencilHooks.Reset()
	AfterSaveStencilHooks.Reset()
	BeforeDeleteStencilHooks.Reset()
	AfterDeleteStencilHooks.Reset()
}

// --- Gönderim repository sahtesi ---

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]*models.Submission
	nextID      uint
	hardDeleted []uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uint]*models.Submission{}, nextID: 1}
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission.ID = r.nextID
	r.nextID++
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}
	if submission.UpdatedAt.IsZero() {
		submission.UpdatedAt = submission.CreatedAt
	}
	copied := *submission
	r.submissions[submission.ID] = &copied
	return nil
}

func (r *fakeSubmissionRepo) FindByID(_ context.Context, id uint) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[id]
	if !ok || submission.DeletedAt.Valid {
		return nil, repositories.ErrNotFound
	}
	copied := *submission
	return &copied, nil
}

func (r *fakeSubmissionRepo) FindAllByFilters(_ context.Context, filters repositories.SubmissionFilters) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Submission
	for _, submission := range r.submissions {
		if !filters.WithTrashed && submission.DeletedAt.Valid {
			continue
		}
		if filters.FormID != nil && submission.FormID != *filters.FormID {
			continue
		}
		if filters.UserID != nil && (submission.UserID == nil || *submission.UserID != *filters.UserID) {
			continue
		}
		if filters.IsIncomplete != nil && submission.IsIncomplete != *filters.IsIncomplete {
			continue
		}
		if filters.IsSpam != nil && submission.IsSpam != *filters.IsSpam {
			continue
		}
		if filters.CreatedBefore != nil && !submission.CreatedAt.Before(*filters.CreatedBefore) {
			continue
		}
		if filters.UpdatedBefore != nil && !submission.UpdatedAt.Before(*filters.UpdatedBefore) {
			continue
		}
		out = append(out, *submission)
	}
	// created_at sıralaması
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			swap := out[j].CreatedAt.Before(out[i].CreatedAt)
			if filters.OrderByCreatedDesc {
				swap = out[j].CreatedAt.After(out[i].CreatedAt)
			}
			if swap {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *fakeSubmissionRepo) FindAllByFormIDPaginated(ctx context.Context, formID uint, params queryparams.ListParams) ([]models.Submission, int64, error) {
	subs, err := r.FindAllByFilters(ctx, repositories.SubmissionFilters{FormID: &formID})
	if err != nil {
		return nil, 0, err
	}
	return subs, int64(len(subs)), nil
}

func (r *fakeSubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *submission
	r.submissions[submission.ID] = &copied
	return nil
}

func (r *fakeSubmissionRepo) Delete(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.submissions[submission.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.DeletedAt.Time = time.Now()
	stored.DeletedAt.Valid = true
	return nil
}

func (r *fakeSubmissionRepo) HardDelete(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.submissions[submission.ID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.submissions, submission.ID)
	r.hardDeleted = append(r.hardDeleted, submission.ID)
	return nil
}

func (r *fakeSubmissionRepo) Restore(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.submissions[submission.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.DeletedAt.Valid = false
	return nil
}

func (r *fakeSubmissionRepo) TransferOwnership(_ context.Context, fromUserID uint, toUserID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, submission := range r.submissions {
		if submission.UserID != nil && *submission.UserID == fromUserID {
			to := toUserID
			submission.UserID = &to
			count++
		}
	}
	return count, nil
}

func (r *fakeSubmissionRepo) CountByUserID(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, submission := range r.submissions {
		if submission.UserID != nil && *submission.UserID == userID && !submission.DeletedAt.Valid {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubmissionRepo) CountByFormID(_ context.Context, formID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, submission := range r.submissions {
		if submission.FormID == formID && !submission.IsSpam && !submission.IsIncomplete && !submission.DeletedAt.Valid {
			count++
		}
	}
	return count, nil
}

var _ repositories.ISubmissionRepository = (*fakeSubmissionRepo)(nil)

// --- Form repository sahtesi ---

type fakeFormRepo struct {
	mu     sync.Mutex
	forms  map[uint]*models.Form
	nextID uint
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{forms: map[uint]*models.Form{}, nextID: 1}
}

func (r *fakeFormRepo) add(form models.Form) *models.Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	if form.ID == 0 {
		form.ID = r.nextID
		r.nextID++
	}
	r.forms[form.ID] = &form
	return &form
}

func (r *fakeFormRepo) Create(_ context.Context, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	form.ID = r.nextID
	r.nextID++
	copied := *form
	r.forms[form.ID] = &copied
	return nil
}

func (r *fakeFormRepo) FindByID(_ context.Context, id uint) (*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	form, ok := r.forms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *form
	return &copied, nil
}

func (r *fakeFormRepo) FindByKey(_ context.Context, key string) (*models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, form := range r.forms {
		if form.Key == key {
			copied := *form
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeFormRepo) FindAllByUserIDPaginated(_ context.Context, userID uint, _ queryparams.ListParams) ([]models.Form, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Form
	for _, form := range r.forms {
		if form.CreatorUserID == userID {
			out = append(out, *form)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFormRepo) FindAllWithRetention(_ context.Context) ([]models.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Form
	for _, form := range r.forms {
		if form.Detail.DataRetention != "" && form.Detail.DataRetention != models.DataRetentionForever {
			out = append(out, *form)
		}
	}
	return out, nil
}

func (r *fakeFormRepo) Update(_ context.Context, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *form
	r.forms[form.ID] = &copied
	return nil
}

func (r *fakeFormRepo) UpdateDetail(_ context.Context, detail *models.FormDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, form := range r.forms {
		if form.ID == detail.FormID {
			form.Detail = *detail
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeFormRepo) Delete(_ context.Context, form *models.Form, _ uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, form.ID)
	return nil
}

func (r *fakeFormRepo) CountByUserID(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, form := range r.forms {
		if form.CreatorUserID == userID {
			count++
		}
	}
	return count, nil
}

var _ repositories.IFormRepository = (*fakeFormRepo)(nil)

// --- Kuyruk sahteleri ---

type enqueuedJob struct {
	Kind    models.JobKind
	Payload any
}

type fakeQueueClient struct {
	mu   sync.Mutex
	jobs []enqueuedJob
	err  error
}

func (q *fakeQueueClient) Enqueue(_ context.Context, kind models.JobKind, payload any) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, enqueuedJob{Kind: kind, Payload: payload})
	return nil
}

var _ IQueueClient = (*fakeQueueClient)(nil)

type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[uint]*models.Job
	nextID uint
	done   []uint
	failed []uint
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uint]*models.Job{}, nextID: 1}
}

func (r *fakeJobRepo) Enqueue(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = r.nextID
	r.nextID++
	if job.RunAt.IsZero() {
		job.RunAt = time.Now()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 3
	}
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *fakeJobRepo) ClaimDue(_ context.Context, limit int, now time.Time) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Job
	for _, job := range r.jobs {
		if len(out) >= limit {
			break
		}
		if job.ReservedAt != nil || job.RunAt.After(now) || job.Attempts >= job.MaxAttempts {
			continue
		}
		job.Attempts++
		reserved := now
		job.ReservedAt = &reserved
		out = append(out, *job)
	}
	return out, nil
}

func (r *fakeJobRepo) MarkDone(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, job.ID)
	r.done = append(r.done, job.ID)
	return nil
}

func (r *fakeJobRepo) MarkFailed(_ context.Context, job *models.Job, _ error, retryAfter time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.ReservedAt = nil
	stored.RunAt = time.Now().Add(retryAfter)
	r.failed = append(r.failed, job.ID)
	return nil
}

var _ repositories.IJobRepository = (*fakeJobRepo)(nil)

// --- Gönderici sahteleri ---

type fakeEmailSender struct {
	mu     sync.Mutex
	sent   []models.SendNotificationPayload
	err    error
	failID uint // sıfır değilse yalnızca bu bildirim için hata döner
}

func (s *fakeEmailSender) Send(_ context.Context, notification *models.Notification, submission *models.Submission) error {
	if s.err != nil && (s.failID == 0 || s.failID == notification.ID) {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, models.SendNotificationPayload{
		SubmissionID:   submission.ID,
		NotificationID: notification.ID,
	})
	return nil
}

var _ IEmailSender = (*fakeEmailSender)(nil)

type fakePayloadSender struct {
	mu   sync.Mutex
	sent []models.TriggerIntegrationPayload
	err  error
}

func (s *fakePayloadSender) SendPayload(_ context.Context, integration *models.Integration, submission *models.Submission) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, models.TriggerIntegrationPayload{
		SubmissionID:  submission.ID,
		IntegrationID: integration.ID,
		Referrer:      integration.Referrer,
		IPAddress:     integration.IPAddress,
	})
	return nil
}

var _ IPayloadSender = (*fakePayloadSender)(nil)

// --- Entegrasyon repository sahtesi ---

type fakeIntegrationRepo struct {
	integrations []models.Integration
}

func (r *fakeIntegrationRepo) FindByID(_ context.Context, id uint) (*models.Integration, error) {
	for i := range r.integrations {
		if r.integrations[i].ID == id {
			copied := r.integrations[i]
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeIntegrationRepo) FindAllEnabledForForm(_ context.Context, formID uint) ([]models.Integration, error) {
	var out []models.Integration
	for _, integration := range r.integrations {
		if !integration.Enabled {
			continue
		}
		if integration.FormID == nil || *integration.FormID == formID {
			out = append(out, integration)
		}
	}
	return out, nil
}

func (r *fakeIntegrationRepo) FindAllEnabledCaptchas(_ context.Context) ([]models.Integration, error) {
	var out []models.Integration
	for _, integration := range r.integrations {
		if integration.Enabled && integration.Kind == models.IntegrationKindCaptcha {
			out = append(out, integration)
		}
	}
	return out, nil
}

var _ repositories.IIntegrationRepository = (*fakeIntegrationRepo)(nil)

// --- Dağıtım servis sahteleri ---

type fakeNotificationService struct {
	mu        sync.Mutex
	sendCalls []uint // submission ID'leri
}

func (s *fakeNotificationService) SendNotifications(_ context.Context, submission *models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendCalls = append(s.sendCalls, submission.ID)
}

func (s *fakeNotificationService) SendNotificationEmail(context.Context, *models.Notification, *models.Submission) bool {
	return true
}

func (s *fakeNotificationService) EvaluateConditions(*models.Notification, *models.Submission) bool {
	return true
}

func (s *fakeNotificationService) SendQueuedNotification(context.Context, models.SendNotificationPayload) error {
	return nil
}

var _ INotificationService = (*fakeNotificationService)(nil)

type fakeIntegrationService struct {
	mu           sync.Mutex
	triggerCalls []uint // submission ID'leri
}

func (s *fakeIntegrationService) TriggerIntegrations(_ context.Context, submission *models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggerCalls = append(s.triggerCalls, submission.ID)
}

func (s *fakeIntegrationService) SendIntegrationPayload(context.Context, *models.Integration, *models.Submission) bool {
	return true
}

func (s *fakeIntegrationService) SendQueuedIntegration(context.Context, models.TriggerIntegrationPayload) error {
	return nil
}

func (s *fakeIntegrationService) GetAllEnabledCaptchas(context.Context) ([]models.Integration, error) {
	return nil, nil
}

var _ IIntegrationService = (*fakeIntegrationService)(nil)

// --- Şablon repository sahtesi ---

type fakeStencilRepo struct {
	mu       sync.Mutex
	stencils map[string]*models.Stencil // uid -> stencil
	nextID   uint
	saves    int
}

func newFakeStencilRepo() *fakeStencilRepo {
	return &fakeStencilRepo{stencils: map[string]*models.Stencil{}, nextID: 1}
}

func (r *fakeStencilRepo) FindAll(_ context.Context, withTrashed bool) ([]models.Stencil, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Stencil
	for _, stencil := range r.stencils {
		if !withTrashed && stencil.DeletedAt.Valid {
			continue
		}
		out = append(out, *stencil)
	}
	return out, nil
}

func (r *fakeStencilRepo) FindByID(_ context.Context, id uint) (*models.Stencil, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stencil := range r.stencils {
		if stencil.ID == id && !stencil.DeletedAt.Valid {
			copied := *stencil
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeStencilRepo) FindByUID(_ context.Context, uid string, withTrashed bool) (*models.Stencil, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stencil, ok := r.stencils[uid]
	if !ok || (!withTrashed && stencil.DeletedAt.Valid) {
		return nil, repositories.ErrNotFound
	}
	copied := *stencil
	return &copied, nil
}

func (r *fakeStencilRepo) Save(_ context.Context, stencil *models.Stencil) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stencil.ID == 0 {
		stencil.ID = r.nextID
		r.nextID++
	}
	copied := *stencil
	r.stencils[stencil.UID] = &copied
	r.saves++
	return nil
}

func (r *fakeStencilRepo) SoftDeleteByUID(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stencil, ok := r.stencils[uid]
	if !ok || stencil.DeletedAt.Valid {
		return repositories.ErrNotFound
	}
	stencil.DeletedAt.Time = time.Now()
	stencil.DeletedAt.Valid = true
	return nil
}

var _ repositories.IStencilRepository = (*fakeStencilRepo)(nil)
