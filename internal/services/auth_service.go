package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"imeitrack/internal/caching"
	"imeitrack/internal/common"
	"imeitrack/internal/models"
	"imeitrack/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ReauthTokenTTL bounds the window between re-proving the password and
// spending the resulting token.
const ReauthTokenTTL = 5 * time.Minute

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, email, password, name, role string, locationID *uuid.UUID) (*models.User, error)

	// Reauthenticate re-proves the actor's password and issues a
	// short-lived single-use token for destructive bulk operations. Only
	// the token's hash is stored server-side.
	Reauthenticate(ctx context.Context, actor *models.Actor, password string) (string, error)
}

type authService struct {
	usersRepo    repositories.UsersRepository
	cacheService caching.CacheService
	jwtSecret    []byte
	tokenTTL     time.Duration
}

func NewAuthService(usersRepo repositories.UsersRepository, cacheService caching.CacheService, jwtSecret string) AuthService {
	return &authService{
		usersRepo:    usersRepo,
		cacheService: cacheService,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     24 * time.Hour,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.usersRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.Name,
		"role": user.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	if user.LocationID != nil {
		claims["location_id"] = user.LocationID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, user, nil
}

func (s *authService) Register(ctx context.Context, email, password, name, role string, locationID *uuid.UUID) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleDestinationAgent {
		return nil, fmt.Errorf("unknown role %q: %w", role, common.ErrInvalidRole)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		LocationID:   locationID,
	}
	if err := s.usersRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Reauthenticate(ctx context.Context, actor *models.Actor, password string) (string, error) {
	user, err := s.usersRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.cacheService.StoreReauthToken(ctx, actor.ID.String(), HashReauthToken(token), ReauthTokenTTL); err != nil {
		return "", fmt.Errorf("failed to store re-auth token: %w", err)
	}
	return token, nil
}

// HashReauthToken hashes the plaintext token for storage and lookup so the
// cache never holds a spendable credential.
func HashReauthToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
