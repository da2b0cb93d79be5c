package services

import (
	"context"
	"errors"
	"testing"

	"formlar.link/configs"
	"formlar.link/models"
	"formlar.link/pkg/events"
)

func formIntegration(id uint, kind models.IntegrationKind) models.Integration {
	return models.Integration{
		BaseModel: models.BaseModel{ID: id},
		Handle:    string(kind),
		Kind:      kind,
		Enabled:   true,
	}
}

func TestTriggerIntegrationsSkipsCaptchas(t *testing.T) {
	resetHooks()
	sender := &fakePayloadSender{}
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{integrations: []models.Integration{
			formIntegration(1, models.IntegrationKindCaptcha),
			formIntegration(2, models.IntegrationKindWebhook),
		}},
		newFakeSubmissionRepo(), &fakeQueueClient{}, sender, testSettings(configs.Settings{}),
	)

	submission := &models.Submission{FormID: 5}
	submission.ID = 3
	service.TriggerIntegrations(context.Background(), submission)

	if len(sender.sent) != 1 {
		t.Fatalf("yalnızca payload gönderebilen entegrasyon tetiklenmeli, tetiklenen: %d", len(sender.sent))
	}
	if sender.sent[0].IntegrationID != 2 {
		t.Errorf("yanlış entegrasyon tetiklendi: %d", sender.sent[0].IntegrationID)
	}
}

func TestTriggerIntegrationsAttachesRequestMeta(t *testing.T) {
	resetHooks()
	sender := &fakePayloadSender{}
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{integrations: []models.Integration{
			formIntegration(1, models.IntegrationKindWebhook),
		}},
		newFakeSubmissionRepo(), &fakeQueueClient{}, sender, testSettings(configs.Settings{}),
	)

	ctx := WithRequestMeta(context.Background(), RequestMeta{
		Referrer:  "https://ornek.com/iletisim",
		IPAddress: "192.168.1.5",
	})
	service.TriggerIntegrations(ctx, &models.Submission{FormID: 5})

	if len(sender.sent) != 1 {
		t.Fatal("entegrasyon tetiklenmedi")
	}
	if sender.sent[0].Referrer != "https://ornek.com/iletisim" || sender.sent[0].IPAddress != "192.168.1.5" {
		t.Errorf("istek bağlamı entegrasyona taşınmadı: %+v", sender.sent[0])
	}
}

func TestTriggerIntegrationsQueuePathFreezesMeta(t *testing.T) {
	resetHooks()
	queue := &fakeQueueClient{}
	sender := &fakePayloadSender{}
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{integrations: []models.Integration{
			formIntegration(4, models.IntegrationKindCRM),
		}},
		newFakeSubmissionRepo(), queue, sender, testSettings(configs.Settings{UseQueueForIntegrations: true}),
	)

	ctx := WithRequestMeta(context.Background(), RequestMeta{Referrer: "https://ornek.com", IPAddress: "10.1.1.1"})
	submission := &models.Submission{FormID: 5}
	submission.ID = 8
	service.TriggerIntegrations(ctx, submission)

	if len(sender.sent) != 0 {
		t.Error("kuyruk açıkken doğrudan tetikleme yapılmamalı")
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("1 görev beklenirken %d kuyruğa eklendi", len(queue.jobs))
	}
	payload, ok := queue.jobs[0].Payload.(models.TriggerIntegrationPayload)
	if !ok {
		t.Fatalf("beklenmeyen payload tipi: %T", queue.jobs[0].Payload)
	}
	if payload.Referrer != "https://ornek.com" || payload.IPAddress != "10.1.1.1" {
		t.Errorf("istek bağlamı görev verisinde dondurulmalı: %+v", payload)
	}
}

func TestSendIntegrationPayloadCancelledByHook(t *testing.T) {
	resetHooks()
	defer resetHooks()

	BeforeTriggerIntegrationHooks.Register(func(event TriggerIntegrationEvent, result *events.HookResult) {
		result.Cancelled = true
	})

	sender := &fakePayloadSender{}
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{}, newFakeSubmissionRepo(), &fakeQueueClient{}, sender, testSettings(configs.Settings{}),
	)

	integration := formIntegration(1, models.IntegrationKindWebhook)
	ok := service.SendIntegrationPayload(context.Background(), &integration, &models.Submission{})
	if !ok {
		t.Error("kancayla iptal edilen tetikleme hata sayılmamalı")
	}
	if len(sender.sent) != 0 {
		t.Error("iptal edilen entegrasyon tetiklenmemeliydi")
	}
}

func TestSendQueuedIntegrationRestoresFrozenMeta(t *testing.T) {
	resetHooks()
	repo := newFakeSubmissionRepo()
	submission := &models.Submission{FormID: 5}
	if err := repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}

	sender := &fakePayloadSender{}
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{integrations: []models.Integration{
			formIntegration(7, models.IntegrationKindEmailMarketing),
		}},
		repo, &fakeQueueClient{}, sender, testSettings(configs.Settings{}),
	)

	err := service.SendQueuedIntegration(context.Background(), models.TriggerIntegrationPayload{
		SubmissionID:  submission.ID,
		IntegrationID: 7,
		Referrer:      "https://donmus.ornek.com",
		IPAddress:     "172.16.0.9",
	})
	if err != nil {
		t.Fatalf("görev başarısız: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatal("entegrasyon tetiklenmedi")
	}
	if sender.sent[0].Referrer != "https://donmus.ornek.com" || sender.sent[0].IPAddress != "172.16.0.9" {
		t.Errorf("dondurulan istek bağlamı geri yüklenmedi: %+v", sender.sent[0])
	}
}

func TestSendQueuedIntegrationMissingRecordsAreNotErrors(t *testing.T) {
	resetHooks()
	repo := newFakeSubmissionRepo()
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{}, repo, &fakeQueueClient{}, &fakePayloadSender{}, testSettings(configs.Settings{}),
	)

	// Gönderim bu arada budanmış olabilir.
	if err := service.SendQueuedIntegration(context.Background(), models.TriggerIntegrationPayload{SubmissionID: 99}); err != nil {
		t.Errorf("silinmiş gönderim görevi sessizce düşmeli: %v", err)
	}

	// Entegrasyon silinmiş olabilir.
	submission := &models.Submission{}
	if err := repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}
	if err := service.SendQueuedIntegration(context.Background(), models.TriggerIntegrationPayload{SubmissionID: submission.ID, IntegrationID: 5}); err != nil {
		t.Errorf("silinmiş entegrasyon görevi sessizce düşmeli: %v", err)
	}
}

func TestSendQueuedIntegrationSenderFailureSurfaces(t *testing.T) {
	resetHooks()
	repo := newFakeSubmissionRepo()
	submission := &models.Submission{}
	if err := repo.Create(context.Background(), submission); err != nil {
		t.Fatal(err)
	}

	sender := &fakePayloadSender{err: errors.New("bağlantı reddedildi")}
	service := NewIntegrationServiceWith(
		&fakeIntegrationRepo{integrations: []models.Integration{
			formIntegration(1, models.IntegrationKindWebhook),
		}},
		repo, &fakeQueueClient{}, sender, testSettings(configs.Settings{}),
	)

	err := service.SendQueuedIntegration(context.Background(), models.TriggerIntegrationPayload{
		SubmissionID:  submission.ID,
		IntegrationID: 1,
	})
	if !errors.Is(err, ErrIntegrationSendFailed) {
		t.Errorf("gönderici hatası görev hatası olarak dönmeli: %v", err)
	}
}
