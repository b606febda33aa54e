package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// Admin is a portal operator. Secrets never leave the server.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`

	ID               int        `bun:"id,pk,autoincrement" json:"id"`
	Email            string     `bun:"email,unique,notnull" json:"email"`
	PasswordHash     string     `bun:"password_hash,notnull" json:"-"`
	FullName         string     `bun:"full_name" json:"full_name"`
	IsActive         bool       `bun:"is_active,notnull" json:"is_active"`
	OTP              *string    `bun:"otp" json:"-"`
	OTPExpiry        *time.Time `bun:"otp_expiry" json:"-"`
	ResetToken       *string    `bun:"reset_token" json:"-"`
	ResetTokenExpiry *time.Time `bun:"reset_token_expiry" json:"-"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// OTPRequestedEvent is handed to the mailer through the event bus.
type OTPRequestedEvent struct {
	Email     string    `json:"email"`
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expires_at"`
}
