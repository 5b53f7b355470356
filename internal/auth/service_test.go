package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error {
	args := m.Called(ctx, id, secret)
	return args.Error(0)
}

func hashedUser(t *testing.T, email, password, role string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
}

func TestLogin(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)
	ctx := context.Background()

	user := hashedUser(t, "officer@lender.example", "s3cretpass", domain.RoleComplianceOfficer)
	mockRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

	resp, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "s3cretpass"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	// Issued token carries identity and role claims
	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, domain.RoleComplianceOfficer, claims["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)
	ctx := context.Background()

	user := hashedUser(t, "officer@lender.example", "s3cretpass", domain.RoleComplianceOfficer)
	mockRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

	_, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "wrong"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailIsIndistinguishable(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)
	ctx := context.Background()

	mockRepo.On("FindByEmail", ctx, "ghost@lender.example").Return(nil, apperrors.ErrUserNotFound)

	_, err := service.Login(ctx, &LoginRequest{Email: "ghost@lender.example", Password: "whatever"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_TOTPEnrolled(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)
	ctx := context.Background()

	secret := "JBSWY3DPEHPK3PXP"
	user := hashedUser(t, "exec@lender.example", "s3cretpass", domain.RoleExecutive)
	user.TOTPSecret = &secret
	mockRepo.On("FindByEmail", ctx, user.Email).Return(user, nil)

	// No code supplied
	_, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "s3cretpass"})
	assert.ErrorIs(t, err, apperrors.ErrTOTPRequired)

	// Wrong code
	_, err = service.Login(ctx, &LoginRequest{Email: user.Email, Password: "s3cretpass", TOTPCode: "000000"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTOTP)

	// Valid code
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	resp, err := service.Login(ctx, &LoginRequest{Email: user.Email, Password: "s3cretpass", TOTPCode: code})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestEnrollTOTP(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, "test-secret", time.Hour)
	ctx := context.Background()

	user := hashedUser(t, "officer@lender.example", "s3cretpass", domain.RoleComplianceOfficer)
	mockRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	mockRepo.On("SetTOTPSecret", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)

	url, err := service.EnrollTOTP(ctx, user.ID)

	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://totp/")
	mockRepo.AssertExpectations(t)
}
