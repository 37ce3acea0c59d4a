package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gem-auction/internal/auctionerrors"
	"gem-auction/internal/models"
	"gem-auction/internal/repository"
	"gem-auction/utils"
)

const minPasswordLength = 6

// AuthService registers users and issues access tokens
type AuthService struct {
	users  repository.UserDB
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewAuthService creates a new AuthService signing tokens with secret
func NewAuthService(users repository.UserDB, secret string, ttl time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcryptCost,
		now:    time.Now,
	}
}

// Session is the result of a successful login
type Session struct {
	User  models.User
	Token utils.AccessToken
}

// Register creates a user with the User role
func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	return s.create(ctx, email, password, models.RoleUser)
}

// Login checks the credentials and issues an access token.
// Unknown email and wrong password are reported the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("auth: %w", auctionerrors.ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("auth: failed to load user %s: %w", email, err)
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return Session{}, fmt.Errorf("auth: %w", auctionerrors.ErrInvalidCredentials)
	}

	token, err := utils.NewAccessToken(s.secret, user.UserID, string(user.Role), s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("auth: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to the caller's id and role
func (s *AuthService) Authenticate(raw string) (string, models.Role, error) {
	claims, err := utils.ParseAccessToken(s.secret, raw)
	if err != nil {
		return "", "", fmt.Errorf("auth: %w - %v", auctionerrors.ErrUnauthorized, err)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return "", "", fmt.Errorf("auth: %w - unknown role %q", auctionerrors.ErrUnauthorized, claims.Role)
	}
	return claims.UserID, role, nil
}

// EnsureAdmin creates an Admin account for email unless the email is already registered
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (models.User, error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, auctionerrors.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("auth: failed to look up %s: %w", email, err)
	}
	return s.create(ctx, email, password, models.RoleAdmin)
}

// ListUsers returns all registered users ordered by email
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) create(ctx context.Context, email, password string, role models.Role) (models.User, error) {
	email = strings.TrimSpace(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.User{}, fmt.Errorf("auth: %w - malformed email", auctionerrors.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return models.User{}, fmt.Errorf("auth: %w - password must be at least %d characters", auctionerrors.ErrInvalidInput, minPasswordLength)
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GenerateID(),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("auth: failed to create user %s: %w", email, err)
	}

	utils.Info("auth: user registered", map[string]any{"user_id": user.UserID, "role": role})
	return user, nil
}
