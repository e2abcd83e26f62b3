package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"issuehub/internal/config"
	"issuehub/internal/httpapi/auth"
	"issuehub/internal/httpapi/models"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List() ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockRefreshTokenRepository mocks the RefreshTokenRepository interface
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(token *models.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(token string) (*models.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired() error {
	args := m.Called()
	return args.Error(0)
}

func testAuthService(userRepo *MockUserRepository, tokenRepo *MockRefreshTokenRepository) AuthService {
	cfg := &config.Config{
		JWTSecret:       "test-secret-at-least-32-characters!!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	}
	return NewAuthService(userRepo, tokenRepo, cfg)
}

func TestRegister_UsernameTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := testAuthService(userRepo, new(MockRefreshTokenRepository))

	userRepo.On("FindByUsername", "alice").Return(&models.User{ID: "u1"}, nil)

	_, err := svc.Register("alice", "password123", "alice@example.com", "Alice")
	assert.ErrorIs(t, err, ErrNameInUse)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRegister_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := testAuthService(userRepo, new(MockRefreshTokenRepository))

	userRepo.On("FindByUsername", "alice").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("FindByEmail", "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	userRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.Password != "password123"
	})).Return(nil)

	user, err := svc.Register("alice", "password123", "alice@example.com", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, auth.VerifyPassword(user.Password, "password123"))

	userRepo.AssertExpectations(t)
}

func TestLogin_InvalidPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := testAuthService(userRepo, new(MockRefreshTokenRepository))

	hashed, err := auth.HashPassword("correct-password")
	require.NoError(t, err)
	userRepo.On("FindByUsername", "alice").Return(&models.User{ID: "u1", Username: "alice", Password: hashed}, nil)

	_, _, _, err = svc.Login("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := testAuthService(userRepo, new(MockRefreshTokenRepository))

	userRepo.On("FindByUsername", "nobody").Return(nil, gorm.ErrRecordNotFound)

	_, _, _, err := svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IssuesValidTokens(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := testAuthService(userRepo, tokenRepo)

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{ID: "u1", Username: "alice", Password: hashed, Role: "member"}

	userRepo.On("FindByUsername", "alice").Return(user, nil)
	userRepo.On("Update", mock.Anything).Return(nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)

	accessToken, refreshToken, loggedIn, err := svc.Login("alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, "u1", loggedIn.ID)

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "member", claims.Role)
}

func TestRefreshAccessToken_RotatesTokens(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := testAuthService(userRepo, tokenRepo)

	stored := &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old-refresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tokenRepo.On("FindByToken", "old-refresh").Return(stored, nil)
	tokenRepo.On("Revoke", "old-refresh").Return(nil)
	tokenRepo.On("Create", mock.Anything).Return(nil)
	userRepo.On("FindByID", "u1").Return(&models.User{ID: "u1", Username: "alice"}, nil)

	access, refresh, err := svc.RefreshAccessToken("old-refresh")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEqual(t, "old-refresh", refresh)

	tokenRepo.AssertCalled(t, "Revoke", "old-refresh")
}

func TestRefreshAccessToken_Expired(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	svc := testAuthService(userRepo, tokenRepo)

	stored := &models.RefreshToken{
		UserID:    "u1",
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	tokenRepo.On("FindByToken", "stale").Return(stored, nil)

	_, _, err := svc.RefreshAccessToken("stale")
	assert.ErrorIs(t, err, ErrExpiredToken)
	tokenRepo.AssertNotCalled(t, "Revoke", mock.Anything)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := testAuthService(new(MockUserRepository), new(MockRefreshTokenRepository))

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
