package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"dms-service/internal/models"
	"dms-service/internal/repository"
	"dms-service/internal/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ExternalIdentity is a user authenticated by an external identity provider.
type ExternalIdentity struct {
	ID       string
	Email    string
	FullName string
	Role     string
}

// AuthService signs users in and out of the current session
type AuthService struct {
	repos   *repository.Set
	session *session.Holder
	clock   func() time.Time
	logger  *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repos *repository.Set, holder *session.Holder, clock func() time.Time, logger *zap.Logger) *AuthService {
	return &AuthService{repos: repos, session: holder, clock: clock, logger: logger}
}

// Login checks a local username and password and makes the user current.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, ok := s.repos.UserByUsername(ctx, username)
	if !ok || !PasswordMatches(user.Password, password) {
		s.logger.Info("Login rejected", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	if err := s.session.Set(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store session user: %w", err)
	}
	s.logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// LoginExternal makes an externally authenticated identity the current user. The user is not
// added to the user collection.
func (s *AuthService) LoginExternal(ctx context.Context, id ExternalIdentity) (*models.User, error) {
	if id.ID == "" {
		return nil, fmt.Errorf("external identity without id: %w", ErrValidation)
	}

	user := models.User{
		ID:        id.ID,
		Username:  id.Email,
		FullName:  id.FullName,
		Role:      roleOrAdmin(id.Role),
		CreatedAt: s.clock(),
	}
	if user.Username == "" {
		user.Username = "user"
	}
	if user.FullName == "" {
		user.FullName = "Authenticated User"
	}

	if err := s.session.Set(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store session user: %w", err)
	}
	s.logger.Info("External user logged in", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// Logout clears the current user
func (s *AuthService) Logout(ctx context.Context) {
	s.session.Clear(ctx)
}

// CurrentUser returns the signed-in user or nil
func (s *AuthService) CurrentUser(ctx context.Context) *models.User {
	return s.session.Get(ctx)
}

// IsAuthenticated reports whether a user is signed in
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.CurrentUser(ctx) != nil
}

// HasRole reports whether the signed-in user holds one of roles
func (s *AuthService) HasRole(ctx context.Context, roles ...string) bool {
	user := s.CurrentUser(ctx)
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}

func (s *AuthService) requireUser(ctx context.Context) (*models.User, error) {
	user := s.CurrentUser(ctx)
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// HashPassword returns a bcrypt hash suitable for User.Password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// PasswordMatches compares a candidate against a stored bcrypt hash or legacy plaintext password.
func PasswordMatches(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func roleOrAdmin(role string) string {
	switch role {
	case models.RoleSales, models.RoleInventoryManager:
		return role
	default:
		return models.RoleAdmin
	}
}
