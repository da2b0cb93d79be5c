package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"formlar.link/configs"
	"formlar.link/models"
	"formlar.link/pkg/events"
	"formlar.link/repositories"

	"gorm.io/datatypes"
)

type lifecycleFixture struct {
	repo          *fakeSubmissionRepo
	formRepo      *fakeFormRepo
	notifications *fakeNotificationService
	integrations  *fakeIntegrationService
	service       ISubmissionService
}

func newLifecycleFixture(settings configs.Settings, spamRules string) *lifecycleFixture {
	repo := newFakeSubmissionRepo()
	formRepo := newFakeFormRepo()
	notifications := &fakeNotificationService{}
	integrations := &fakeIntegrationService{}
	merged := settings
	merged.SpamKeywords = spamRules
	settingsFn := testSettings(merged)
	service := NewSubmissionServiceWith(
		repo,
		formRepo,
		NewSpamServiceWith(settingsFn),
		notifications,
		integrations,
		settingsFn,
	)
	return &lifecycleFixture{
		repo:          repo,
		formRepo:      formRepo,
		notifications: notifications,
		integrations:  integrations,
		service:       service,
	}
}

func enabledForm(key string) models.Form {
	return models.Form{
		Key:       key,
		IsEnabled: true,
		Detail:    models.FormDetail{Title: "Test Formu"},
	}
}

func TestSubmitFormHappyPathDispatchesEverything(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{SaveSpam: true}, "")
	fx.formRepo.add(enabledForm("anahtar"))

	submission, err := fx.service.SubmitForm(context.Background(), "anahtar", map[string]any{"ad": "Ayşe"}, nil)
	if err != nil {
		t.Fatalf("gönderim başarısız: %v", err)
	}
	if submission.ID == 0 {
		t.Error("gönderim kalıcılaştırılmalıydı")
	}
	if len(fx.notifications.sendCalls) != 1 {
		t.Errorf("bildirim dağıtımı beklenirken %d çağrı yapıldı", len(fx.notifications.sendCalls))
	}
	if len(fx.integrations.triggerCalls) != 1 {
		t.Errorf("entegrasyon tetiklemesi beklenirken %d çağrı yapıldı", len(fx.integrations.triggerCalls))
	}
}

func TestSubmitFormRecordsRequestIP(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	fx.formRepo.add(enabledForm("anahtar"))

	ctx := WithRequestMeta(context.Background(), RequestMeta{IPAddress: "10.0.0.7", Referrer: "https://ornek.com"})
	submission, err := fx.service.SubmitForm(ctx, "anahtar", map[string]any{}, nil)
	if err != nil {
		t.Fatalf("gönderim başarısız: %v", err)
	}
	if submission.IPAddress != "10.0.0.7" {
		t.Errorf("IP adresi istek bağlamından alınmalıydı: %q", submission.IPAddress)
	}
}

func TestSubmitFormUnknownKey(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")

	_, err := fx.service.SubmitForm(context.Background(), "yok", nil, nil)
	if !errors.Is(err, ErrSubmissionFormNotFound) {
		t.Errorf("beklenen hata ErrSubmissionFormNotFound, gelen: %v", err)
	}
}

func TestSubmitFormRequiresUserWhenConfigured(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	form := enabledForm("anahtar")
	form.Detail.RequireUser = true
	fx.formRepo.add(form)

	if _, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, nil); !errors.Is(err, ErrSubmissionUserRequired) {
		t.Errorf("anonim gönderim reddedilmeliydi: %v", err)
	}

	userID := uint(3)
	if _, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, &userID); err != nil {
		t.Errorf("oturumlu gönderim kabul edilmeliydi: %v", err)
	}
}

func TestSubmitFormAvailabilityWindow(t *testing.T) {
	resetHooks()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		from, to  *time.Time
		accepting bool
	}{
		{"pencere açık", &past, &future, true},
		{"henüz başlamadı", &future, nil, false},
		{"süresi doldu", nil, &past, false},
		{"pencere tanımsız", nil, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newLifecycleFixture(configs.Settings{}, "")
			form := enabledForm("anahtar")
			form.Detail.AvailabilityFrom = tc.from
			form.Detail.AvailabilityTo = tc.to
			fx.formRepo.add(form)
			fx.service.(*SubmissionService).now = func() time.Time { return now }

			_, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, nil)
			if tc.accepting && err != nil {
				t.Errorf("gönderim kabul edilmeliydi: %v", err)
			}
			if !tc.accepting && !errors.Is(err, ErrFormNotAcceptingNew) {
				t.Errorf("gönderim reddedilmeliydi, gelen: %v", err)
			}
		})
	}
}

func TestSubmitFormSubmissionLimit(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	limit := 1
	form := enabledForm("anahtar")
	form.Detail.AvailabilitySubmissions = &limit
	fx.formRepo.add(form)

	if _, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, nil); err != nil {
		t.Fatalf("ilk gönderim kabul edilmeliydi: %v", err)
	}
	if _, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, nil); !errors.Is(err, ErrFormNotAcceptingNew) {
		t.Errorf("limit dolunca gönderim reddedilmeliydi: %v", err)
	}
}

func TestSubmitFormDisabledFormRejected(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	form := enabledForm("anahtar")
	form.IsEnabled = false
	fx.formRepo.add(form)

	if _, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, nil); !errors.Is(err, ErrFormNotAcceptingNew) {
		t.Errorf("kapalı form gönderim kabul etmemeli: %v", err)
	}
}

func TestSubmitFormCancelledByBeforeHook(t *testing.T) {
	resetHooks()
	defer resetHooks()

	BeforeSubmissionHooks.Register(func(event SubmissionEvent, result *events.HookResult) {
		result.Cancelled = true
	})

	fx := newLifecycleFixture(configs.Settings{}, "")
	fx.formRepo.add(enabledForm("anahtar"))

	if _, err := fx.service.SubmitForm(context.Background(), "anahtar", nil, nil); !errors.Is(err, ErrSubmissionRejected) {
		t.Errorf("iptal edilen gönderim reddedilmeliydi: %v", err)
	}
	if len(fx.repo.submissions) != 0 {
		t.Error("iptal edilen gönderim kalıcılaştırılmamalı")
	}
}

func TestSubmitFormSpamNotSavedWhenSaveSpamOff(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{SaveSpam: false}, "viagra")
	fx.formRepo.add(enabledForm("anahtar"))

	submission, err := fx.service.SubmitForm(context.Background(), "anahtar", map[string]any{"mesaj": "viagra"}, nil)
	if err != nil {
		t.Fatalf("spam gönderim çağırana hata döndürmemeli: %v", err)
	}
	if !submission.IsSpam {
		t.Fatal("gönderim spam işaretlenmeliydi")
	}
	if len(fx.repo.submissions) != 0 {
		t.Error("SaveSpam kapalıyken spam kalıcılaştırılmamalı")
	}
	if len(fx.integrations.triggerCalls) != 0 {
		t.Error("spam gönderim entegrasyon tetiklememeli")
	}
	if len(fx.notifications.sendCalls) != 0 {
		t.Error("SpamEmailNotifications kapalıyken bildirim gitmemeli")
	}
}

func TestSubmitFormSpamSavedWithNotificationsWhenConfigured(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{SaveSpam: true, SpamEmailNotifications: true}, "viagra")
	fx.formRepo.add(enabledForm("anahtar"))

	submission, err := fx.service.SubmitForm(context.Background(), "anahtar", map[string]any{"mesaj": "viagra"}, nil)
	if err != nil {
		t.Fatalf("spam gönderim çağırana hata döndürmemeli: %v", err)
	}
	if submission.ID == 0 {
		t.Error("SaveSpam açıkken spam kalıcılaştırılmalıydı")
	}
	if len(fx.notifications.sendCalls) != 1 {
		t.Error("SpamEmailNotifications açıkken bildirim gönderilmeliydi")
	}
	if len(fx.integrations.triggerCalls) != 0 {
		t.Error("spam gönderim entegrasyon tetiklememeli")
	}
}

func TestOnAfterSubmissionIncompleteHandledByDefault(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")

	submission := &models.Submission{IsIncomplete: true}
	fx.service.OnAfterSubmission(context.Background(), true, submission)

	if len(fx.notifications.sendCalls) != 0 || len(fx.integrations.triggerCalls) != 0 {
		t.Error("tamamlanmamış gönderim varsayılan olarak dağıtım yapmamalı")
	}
}

func TestOnAfterSubmissionIncompleteFallsThroughWhenHookClearsHandled(t *testing.T) {
	resetHooks()
	defer resetHooks()

	AfterIncompleteSubmissionHooks.Register(func(event SubmissionEvent, result *events.HookResult) {
		result.Handled = false
	})

	fx := newLifecycleFixture(configs.Settings{}, "")
	submission := &models.Submission{IsIncomplete: true}
	fx.service.OnAfterSubmission(context.Background(), true, submission)

	if len(fx.notifications.sendCalls) != 1 {
		t.Error("kanca devraldığında olağan dağıtım hattı çalışmalı")
	}
}

func TestOnAfterSubmissionSpamNeverSucceeds(t *testing.T) {
	resetHooks()
	defer resetHooks()

	var observedSuccess *bool
	AfterSubmissionHooks.Register(func(event SubmissionEvent, result *events.HookResult) {
		success := event.Success
		observedSuccess = &success
	})

	fx := newLifecycleFixture(configs.Settings{}, "")
	submission := &models.Submission{IsSpam: true}
	fx.service.OnAfterSubmission(context.Background(), true, submission)

	if observedSuccess == nil || *observedSuccess {
		t.Error("spam gönderim olay dinleyicilerine başarısız olarak raporlanmalı")
	}
	if len(fx.integrations.triggerCalls) != 0 {
		t.Error("spam gönderim entegrasyon tetiklememeli")
	}
}

func TestMarkSubmissionSpamTogglesReason(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	submission := &models.Submission{FormID: 1, FieldValues: datatypes.JSONMap{}}
	if err := fx.repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}

	if err := fx.service.MarkSubmissionSpam(context.Background(), 1, submission.ID, true, "elle işaretlendi"); err != nil {
		t.Fatal(err)
	}
	stored, _ := fx.repo.FindByID(context.Background(), submission.ID)
	if !stored.IsSpam || stored.SpamReason != "elle işaretlendi" {
		t.Errorf("spam işareti uygulanmadı: %+v", stored)
	}

	if err := fx.service.MarkSubmissionSpam(context.Background(), 1, submission.ID, false, ""); err != nil {
		t.Fatal(err)
	}
	stored, _ = fx.repo.FindByID(context.Background(), submission.ID)
	if stored.IsSpam || stored.SpamReason != "" {
		t.Errorf("spam işareti kaldırılmadı: %+v", stored)
	}
}

func TestMarkSubmissionSpamRejectsForeignFormSubmission(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	submission := &models.Submission{FormID: 2, FieldValues: datatypes.JSONMap{}}
	if err := fx.repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}

	// Yetki başka bir form üzerinden alınmış; gönderim o forma ait değil.
	err := fx.service.MarkSubmissionSpam(context.Background(), 1, submission.ID, true, "elle işaretlendi")
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("başka formun gönderimi bulunamadı sayılmalı: %v", err)
	}
	stored, _ := fx.repo.FindByID(context.Background(), submission.ID)
	if stored.IsSpam {
		t.Error("reddedilen istek gönderimi değiştirmemeli")
	}
}

func TestDeleteSubmissionRejectsForeignFormSubmission(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	submission := &models.Submission{FormID: 2}
	if err := fx.repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}

	err := fx.service.DeleteSubmission(context.Background(), 1, submission.ID, 7)
	if !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("başka formun gönderimi bulunamadı sayılmalı: %v", err)
	}
	if _, err := fx.repo.FindByID(context.Background(), submission.ID); err != nil {
		t.Error("reddedilen istek gönderimi silmemeli")
	}

	if err := fx.service.DeleteSubmission(context.Background(), 2, submission.ID, 7); err != nil {
		t.Fatalf("kendi formunun gönderimi silinebilmeli: %v", err)
	}
	if _, err := fx.repo.FindByID(context.Background(), submission.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Error("silinen gönderim normal sorguda görünmemeli")
	}
}

func TestDeleteUserSubmissionsTransfersToInheritor(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	from, to := uint(1), uint(2)
	for i := 0; i < 3; i++ {
		owner := from
		if err := fx.repo.Create(context.Background(), &models.Submission{UserID: &owner}); err != nil {
			t.Fatal(err)
		}
	}

	if err := fx.service.DeleteUserSubmissions(context.Background(), from, &to); err != nil {
		t.Fatal(err)
	}

	count, _ := fx.repo.CountByUserID(context.Background(), to)
	if count != 3 {
		t.Errorf("gönderimler devralan kullanıcıya aktarılmalıydı, aktarılan: %d", count)
	}
}

func TestDeleteUserSubmissionsSoftDeletesWithoutInheritor(t *testing.T) {
	resetHooks()
	fx := newLifecycleFixture(configs.Settings{}, "")
	owner := uint(1)
	submission := &models.Submission{UserID: &owner}
	if err := fx.repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}

	if err := fx.service.DeleteUserSubmissions(context.Background(), owner, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := fx.repo.FindByID(context.Background(), submission.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("soft delete sonrası kayıt normal sorguda görünmemeli: %v", err)
	}
	count, _ := fx.repo.CountByUserID(context.Background(), owner)
	if count != 0 {
		t.Errorf("soft delete sonrası aktif gönderim kalmamalıydı: %d", count)
	}
}
