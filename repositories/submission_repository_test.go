package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"formlar.link/models"
	"formlar.link/pkg/queryparams"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("sqlite açılamadı: %v", err)
	}
	err = db.AutoMigrate(
		&models.Form{},
		&models.FormDetail{},
		&models.Notification{},
		&models.Submission{},
	)
	if err != nil {
		t.Fatalf("migrasyon başarısız: %v", err)
	}
	return db
}

func seedForm(t *testing.T, db *gorm.DB) *models.Form {
	t.Helper()
	form := &models.Form{
		Key:           "test-anahtar",
		CreatorUserID: 1,
		IsEnabled:     true,
		Detail:        models.FormDetail{Title: "Test Formu"},
		Notifications: []models.Notification{
			{Name: "Yöneticiye bildir", Enabled: true, ToEmail: "admin@ornek.com"},
		},
	}
	if err := db.Create(form).Error; err != nil {
		t.Fatalf("form oluşturulamadı: %v", err)
	}
	return form
}

func TestSubmissionRepositoryCreateAndFindByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	submission := &models.Submission{
		FormID:      form.ID,
		FieldValues: datatypes.JSONMap{"ad": "Ayşe", "mesaj": "Merhaba"},
		IPAddress:   "10.0.0.1",
	}
	if err := repo.Create(ctx, submission); err != nil {
		t.Fatalf("gönderim oluşturulamadı: %v", err)
	}
	if submission.ID == 0 {
		t.Fatal("oluşturulan gönderime ID atanmalı")
	}

	loaded, err := repo.FindByID(ctx, submission.ID)
	if err != nil {
		t.Fatalf("gönderim okunamadı: %v", err)
	}
	if loaded.FieldValues["ad"] != "Ayşe" {
		t.Errorf("alan değerleri korunmalı: %v", loaded.FieldValues)
	}
	if loaded.Form.Detail.Title != "Test Formu" {
		t.Error("form detayı birlikte yüklenmeli")
	}
	if len(loaded.Form.Notifications) != 1 {
		t.Error("form bildirimleri birlikte yüklenmeli")
	}
}

func TestSubmissionRepositoryCreateRequiresForm(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)

	if err := repo.Create(context.Background(), &models.Submission{}); err == nil {
		t.Error("formsuz gönderim reddedilmeli")
	}
}

func TestSubmissionRepositoryFindByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)

	if _, err := repo.FindByID(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("olmayan kayıt için ErrNotFound beklenirken: %v", err)
	}
}

func TestSubmissionRepositoryFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	normal := &models.Submission{FormID: form.ID}
	spam := &models.Submission{FormID: form.ID, IsSpam: true}
	incomplete := &models.Submission{FormID: form.ID, IsIncomplete: true}
	for _, submission := range []*models.Submission{normal, spam, incomplete} {
		if err := repo.Create(ctx, submission); err != nil {
			t.Fatal(err)
		}
	}

	isSpam := true
	spams, err := repo.FindAllByFilters(ctx, SubmissionFilters{FormID: &form.ID, IsSpam: &isSpam})
	if err != nil {
		t.Fatal(err)
	}
	if len(spams) != 1 || spams[0].ID != spam.ID {
		t.Errorf("spam filtresi yanlış sonuç verdi: %v", spams)
	}

	isIncomplete := true
	incompletes, err := repo.FindAllByFilters(ctx, SubmissionFilters{IsIncomplete: &isIncomplete})
	if err != nil {
		t.Fatal(err)
	}
	if len(incompletes) != 1 || incompletes[0].ID != incomplete.ID {
		t.Errorf("tamamlanmamış filtresi yanlış sonuç verdi: %v", incompletes)
	}
}

func TestSubmissionRepositoryOffsetWithoutLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		submission := &models.Submission{FormID: form.ID, IsSpam: true}
		if err := repo.Create(ctx, submission); err != nil {
			t.Fatal(err)
		}
		// created_at elle ilerletilir ki sıralama belirleyici olsun
		created := base.Add(time.Duration(i) * time.Hour)
		if err := db.Model(submission).Update("created_at", created).Error; err != nil {
			t.Fatal(err)
		}
	}

	// Spam budamasının kullandığı sorgu biçimi: en yeni N atlanır, kalanı döner.
	isSpam := true
	overflow, err := repo.FindAllByFilters(ctx, SubmissionFilters{
		IsSpam:             &isSpam,
		OrderByCreatedDesc: true,
		Offset:             2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(overflow) != 3 {
		t.Fatalf("ilk 2 atlanınca 3 kayıt kalmalı, dönen: %d", len(overflow))
	}
	for i := 1; i < len(overflow); i++ {
		if overflow[i].CreatedAt.After(overflow[i-1].CreatedAt) {
			t.Error("sonuçlar yeniden eskiye sıralı olmalı")
		}
	}
}

func TestSubmissionRepositorySoftDeleteAndRestore(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	submission := &models.Submission{FormID: form.ID}
	if err := repo.Create(ctx, submission); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, submission); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.FindByID(ctx, submission.ID); !errors.Is(err, ErrNotFound) {
		t.Error("soft delete edilen kayıt normal sorguda görünmemeli")
	}

	trashed, err := repo.FindAllByFilters(ctx, SubmissionFilters{WithTrashed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(trashed) != 1 {
		t.Error("soft delete edilen kayıt Unscoped sorguda görünmeli")
	}

	if err := repo.Restore(ctx, submission); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, submission.ID); err != nil {
		t.Errorf("geri getirilen kayıt erişilebilir olmalı: %v", err)
	}
}

func TestSubmissionRepositoryHardDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	submission := &models.Submission{FormID: form.ID}
	if err := repo.Create(ctx, submission); err != nil {
		t.Fatal(err)
	}
	if err := repo.HardDelete(ctx, submission); err != nil {
		t.Fatal(err)
	}

	all, err := repo.FindAllByFilters(ctx, SubmissionFilters{WithTrashed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Error("kalıcı silinen kayıt hiçbir sorguda görünmemeli")
	}
}

func TestSubmissionRepositoryTransferOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	from, to := uint(1), uint(2)
	for i := 0; i < 3; i++ {
		owner := from
		if err := repo.Create(ctx, &models.Submission{FormID: form.ID, UserID: &owner}); err != nil {
			t.Fatal(err)
		}
	}
	other := uint(9)
	if err := repo.Create(ctx, &models.Submission{FormID: form.ID, UserID: &other}); err != nil {
		t.Fatal(err)
	}

	transferred, err := repo.TransferOwnership(ctx, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if transferred != 3 {
		t.Errorf("3 kayıt devredilmeliydi, devredilen: %d", transferred)
	}

	count, err := repo.CountByUserID(ctx, to)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("devralan kullanıcının 3 gönderimi olmalı: %d", count)
	}
}

func TestSubmissionRepositoryCountByFormIDExcludesSpamAndIncomplete(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	for _, submission := range []*models.Submission{
		{FormID: form.ID},
		{FormID: form.ID},
		{FormID: form.ID, IsSpam: true},
		{FormID: form.ID, IsIncomplete: true},
	} {
		if err := repo.Create(ctx, submission); err != nil {
			t.Fatal(err)
		}
	}

	count, err := repo.CountByFormID(ctx, form.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("sayım spam ve tamamlanmamışları dışlamalı: %d", count)
	}
}

func TestSubmissionRepositoryPaginationStatusFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepositoryTx(db)
	form := seedForm(t, db)
	ctx := context.Background()

	for _, submission := range []*models.Submission{
		{FormID: form.ID},
		{FormID: form.ID, IsSpam: true},
		{FormID: form.ID, IsSpam: true},
	} {
		if err := repo.Create(ctx, submission); err != nil {
			t.Fatal(err)
		}
	}

	params := queryparams.DefaultListParams("created_at")
	params.Status = "spam"
	submissions, total, err := repo.FindAllByFormIDPaginated(ctx, form.ID, params)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(submissions) != 2 {
		t.Errorf("spam durum filtresi 2 kayıt döndürmeli: total=%d len=%d", total, len(submissions))
	}
	for _, submission := range submissions {
		if !submission.IsSpam {
			t.Error("durum filtresi spam olmayan kayıt döndürmemeli")
		}
	}
}
