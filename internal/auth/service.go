// Package auth implements staff authentication (login and token issuance).
//
// ==============================================================================
// AUTH SERVICE - internal/auth/service.go
// ==============================================================================
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
)

// Repository interface
type Repository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error
}

// Service provides staff login and token issuance. Accounts are provisioned
// by the seed tool or an administrator, not by self-registration.
type Service struct {
	repo      Repository
	jwtSecret string
	jwtExpiry time.Duration
}

func NewService(repo Repository, jwtSecret string, jwtExpiry time.Duration) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// LoginRequest captures credentials for login. TOTPCode is required for
// accounts with two-factor enrollment.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// CreateUserRequest captures the fields needed to provision a staff account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=compliance_officer executive"`
}

// Login authenticates a staff member and returns a signed token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Second factor, when enrolled
	if user.TOTPSecret != nil {
		if req.TOTPCode == "" {
			return nil, apperrors.ErrTOTPRequired
		}
		if !totp.Validate(req.TOTPCode, *user.TOTPSecret) {
			return nil, apperrors.ErrInvalidTOTP
		}
	}

	return s.generateToken(user)
}

// CreateUser provisions a staff account.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*domain.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         req.Role,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Unique constraint violation on email
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, err
	}

	return user, nil
}

// EnrollTOTP generates and stores a TOTP secret for the user, returning the
// otpauth URL for authenticator apps.
func (s *Service) EnrollTOTP(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "onboard-compliance",
		AccountName: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate totp key: %w", err)
	}

	if err := s.repo.SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return "", err
	}

	return key.URL(), nil
}

func (s *Service) generateToken(user *domain.User) (*TokenResponse, error) {
	expiresAt := time.Now().Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
