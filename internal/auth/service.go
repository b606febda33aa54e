package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/events"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrEmailExists        = errors.New("email already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("new password and confirm password do not match")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired")
	ErrInvalidResetToken  = errors.New("invalid token")
	ErrResetTokenExpired  = errors.New("token expired")
)

type Service interface {
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	ChangePassword(ctx context.Context, admin *Admin, req ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	CreateAdmin(ctx context.Context, email, password, fullName string) (*Admin, error)
	ListAdmins(ctx context.Context) ([]Admin, error)
	DeactivateAdmin(ctx context.Context, email string) error
}

type Options struct {
	OTPTTL   time.Duration
	ResetTTL time.Duration
}

type service struct {
	repo      Repository
	issuer    *TokenIssuer
	publisher events.Publisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

func NewService(repo Repository, issuer *TokenIssuer, publisher events.Publisher, logger *slog.Logger, opts Options) Service {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 10 * time.Minute
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 10 * time.Minute
	}
	return &service{
		repo:      repo,
		issuer:    issuer,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	admin, err := s.repo.GetActiveByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *service) ChangePassword(ctx context.Context, admin *Admin, req ChangePasswordRequest) error {
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, admin.ID, hash)
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	admin, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return ErrEmailNotRegistered
		}
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	expiry := s.now().Add(s.opts.OTPTTL)

	if err := s.repo.SetOTP(ctx, admin.ID, otp, expiry); err != nil {
		return err
	}

	events.Notify(ctx, s.publisher, s.logger, events.AdminOTPRequested, admin.Email, OTPRequestedEvent{
		Email:     admin.Email,
		OTP:       otp,
		ExpiresAt: expiry.UTC(),
	})
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return "", ErrInvalidOTP
		}
		return "", err
	}

	if admin.OTP == nil || *admin.OTP != strings.TrimSpace(otp) {
		return "", ErrInvalidOTP
	}
	if admin.OTPExpiry == nil || s.now().After(*admin.OTPExpiry) {
		return "", ErrOTPExpired
	}

	token := uuid.NewString()
	if err := s.repo.SetResetToken(ctx, admin.ID, token, s.now().Add(s.opts.ResetTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	admin, err := s.repo.GetByResetToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if admin.ResetTokenExpiry == nil || s.now().After(*admin.ResetTokenExpiry) {
		return ErrResetTokenExpired
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, admin.ID, hash)
}

func (s *service) CreateAdmin(ctx context.Context, email, password, fullName string) (*Admin, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, validation.Invalid("email", "is required")
	}
	if len(password) < 8 {
		return nil, validation.Invalid("password", "must be at least 8 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Admin{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		IsActive:     true,
	})
}

func (s *service) ListAdmins(ctx context.Context) ([]Admin, error) {
	return s.repo.List(ctx)
}

func (s *service) DeactivateAdmin(ctx context.Context, email string) error {
	return s.repo.SetActive(ctx, normalizeEmail(email), false)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
