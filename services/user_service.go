package services

import (
	"context"
	"errors"
	"fmt"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserServiceError özel servis hataları
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound           UserServiceError = "kullanıcı bulunamadı"
	ErrUserInvalidCredentials UserServiceError = "e-posta veya şifre hatalı"
	ErrUserDisabled           UserServiceError = "kullanıcı hesabı pasif"
	ErrUserDeletionFailed     UserServiceError = "kullanıcı silinemedi"
)

// IUserService kullanıcı işlemleri için arayüz.
type IUserService interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	Authenticate(ctx context.Context, email string, password string) (*models.User, error)
	DeleteUser(ctx context.Context, id uint, deletingUserID uint, inheritorID *uint) error
	RestoreUser(ctx context.Context, id uint) error
}

// UserService IUserService arayüzünü uygular.
type UserService struct {
	repo        repositories.IUserRepository
	submissions ISubmissionService
	db          *gorm.DB
}

// NewUserService yeni bir UserService örneği oluşturur.
func NewUserService() IUserService {
	return &UserService{
		repo: repositories.NewUserRepository(),
		db:   configs.GetDB(),
	}
}

// NewUserServiceWith bağımlılıkları dışarıdan alır (testler ve main için).
func NewUserServiceWith(repo repositories.IUserRepository, submissions ISubmissionService, db *gorm.DB) IUserService {
	return &UserService{repo: repo, submissions: submissions, db: db}
}

// submissionService gecikmeli oluşturulur; UserService ile SubmissionService
// arasındaki karşılıklı bağımlılığı kırar.
func (s *UserService) submissionService() ISubmissionService {
	if s.submissions == nil {
		s.submissions = NewSubmissionService()
	}
	return s.submissions
}

// GetUserByID kullanıcıyı ID ile getirir.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Authenticate e-posta ve şifre ile oturum doğrulaması yapar.
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserInvalidCredentials
		}
		return nil, err
	}
	if !user.IsEnabled {
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUserInvalidCredentials
	}
	return user, nil
}

// DeleteUser kullanıcıyı soft delete ile siler. Gönderimleri mirasçı
// verilmişse ona devredilir, verilmemişse formların ayarına göre silinir.
func (s *UserService) DeleteUser(ctx context.Context, id uint, deletingUserID uint, inheritorID *uint) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.submissionService().DeleteUserSubmissions(ctx, user.ID, inheritorID); err != nil {
		configslog.Log.Error("Kullanıcı gönderimleri işlenemedi", zap.Uint("userID", id), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUserDeletionFailed, err)
	}

	txCtx := contextWithUserID(ctx, deletingUserID)
	if err := s.db.WithContext(txCtx).Delete(user).Error; err != nil {
		configslog.Log.Error("Kullanıcı silinemedi", zap.Uint("userID", id), zap.Error(err))
		return ErrUserDeletionFailed
	}
	configslog.SLog.Infow("Kullanıcı silindi.", "userID", id, "deletingUserID", deletingUserID)
	return nil
}

// RestoreUser soft delete edilmiş kullanıcıyı ve gönderimlerini geri getirir.
func (s *UserService) RestoreUser(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": nil, "deleted_by": nil}).Error
	if err != nil {
		configslog.Log.Error("Kullanıcı geri getirilemedi", zap.Uint("userID", id), zap.Error(err))
		return err
	}
	return s.submissionService().RestoreUserSubmissions(ctx, id)
}

var _ IUserService = (*UserService)(nil)
