package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"event-gallery/domain/models"
	"event-gallery/domain/repositories"
	"event-gallery/domain/services"
	"event-gallery/pkg/config"
	"event-gallery/pkg/facematch"
	"event-gallery/pkg/logger"
	"event-gallery/pkg/utils"
)

const minAdminPasswordLength = 6

type AuthServiceImpl struct {
	adminRepo repositories.AdminRepository
	jwt       config.JWTConfig
	seed      config.AdminConfig
}

func NewAuthService(adminRepo repositories.AdminRepository, jwt config.JWTConfig, seed config.AdminConfig) services.AuthService {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		jwt:       jwt,
		seed:      seed,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	email = facematch.NormalizeEmail(email)
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.AuthWarn("login_failed", "Unknown admin email", map[string]interface{}{"email": email})
		return "", nil, services.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		logger.AuthWarn("login_failed", "Wrong admin password", map[string]interface{}{"email": email})
		return "", nil, services.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(admin.ID, admin.Email, s.jwt.Secret, s.jwt.Expiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.adminRepo.TouchLogin(ctx, admin.ID); err != nil {
		logger.AuthError("touch_login", "Failed to record login time", err, nil)
	}
	logger.Auth("login", "Admin logged in", map[string]interface{}{"admin_id": admin.ID.String()})
	return token, admin, nil
}

func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, email, password string) (*models.AdminUser, error) {
	email = facematch.NormalizeEmail(email)
	if err := utils.Validator().Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", services.ErrValidation)
	}
	if len(password) < minAdminPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", services.ErrValidation, minAdminPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: admin %s already exists", services.ErrValidation, email)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	logger.Auth("admin_created", "Admin account created", map[string]interface{}{"admin_id": admin.ID.String()})
	return admin, nil
}

func (s *AuthServiceImpl) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	if s.seed.Email == "" || s.seed.Password == "" {
		logger.AuthWarn("admin_seed_skipped", "No admin exists and no seed credentials are configured", nil)
		return nil
	}
	if _, err := s.CreateAdmin(ctx, s.seed.Email, s.seed.Password); err != nil {
		return err
	}
	logger.Startup("admin_seeded", "Default admin created", map[string]interface{}{"email": s.seed.Email})
	return nil
}
