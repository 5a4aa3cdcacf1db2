package services

import (
	"context"
	"testing"

	"imeitrack/internal/common"
	"imeitrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (*MockUsersRepo, *MockCacheService, AuthService) {
	usersRepo := new(MockUsersRepo)
	cacheSvc := new(MockCacheService)
	svc := NewAuthService(usersRepo, cacheSvc, testJWTSecret)
	return usersRepo, cacheSvc, svc
}

func hashedUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	locationID := uuid.New()
	return &models.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Name:         "Alice Admin",
		Role:         models.RoleAdmin,
		LocationID:   &locationID,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	usersRepo, _, svc := newAuthFixture()
	user := hashedUser("hunter2pass")
	usersRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	token, got, err := svc.Login(context.Background(), user.Email, "hunter2pass")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, user.Name, claims["name"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	assert.Equal(t, user.LocationID.String(), claims["location_id"])
}

func TestLoginWrongPassword(t *testing.T) {
	usersRepo, _, svc := newAuthFixture()
	user := hashedUser("hunter2pass")
	usersRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, _, err := svc.Login(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLoginUnknownUserHidesExistence(t *testing.T) {
	usersRepo, _, svc := newAuthFixture()
	usersRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, common.ErrNotFound)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestReauthenticateStoresTokenHash(t *testing.T) {
	usersRepo, cacheSvc, svc := newAuthFixture()
	user := hashedUser("hunter2pass")
	actor := &models.Actor{ID: user.ID, Name: user.Name, Role: user.Role}

	usersRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	var storedHash string
	cacheSvc.On("StoreReauthToken", mock.Anything, user.ID.String(), mock.AnythingOfType("string"), ReauthTokenTTL).
		Run(func(args mock.Arguments) {
			storedHash = args.String(2)
		}).Return(nil)

	token, err := svc.Reauthenticate(context.Background(), actor, "hunter2pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	// Only the hash reaches the store, never the plaintext token.
	assert.NotEqual(t, token, storedHash)
	assert.Equal(t, HashReauthToken(token), storedHash)
}

func TestReauthenticateWrongPassword(t *testing.T) {
	usersRepo, cacheSvc, svc := newAuthFixture()
	user := hashedUser("hunter2pass")
	actor := &models.Actor{ID: user.ID}

	usersRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.Reauthenticate(context.Background(), actor, "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	cacheSvc.AssertNotCalled(t, "StoreReauthToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	_, _, svc := newAuthFixture()
	_, err := svc.Register(context.Background(), "x@example.com", "longenough", "X", "superuser", nil)
	assert.ErrorIs(t, err, common.ErrInvalidRole)
}

func TestRegisterHashesPassword(t *testing.T) {
	usersRepo, _, svc := newAuthFixture()
	usersRepo.On("Create", mock.Anything, mock.MatchedBy(func(user *models.User) bool {
		return user.PasswordHash != "hunter2pass" &&
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2pass")) == nil
	})).Return(nil)

	user, err := svc.Register(context.Background(), "alice@example.com", "hunter2pass", "Alice", models.RoleAdmin, nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	usersRepo.AssertExpectations(t)
}
