package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/model"
	"github.com/erazemk/izgubljeno/internal/store"
)

// Client-facing messages. Login never says which part was wrong.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User with this student ID, username, or email already exists"
	msgTokenFailed        = "Not authorized, token failed"
	msgUserNotFound       = "User not found"
)

// Service registers users, checks credentials and issues tokens.
type Service struct {
	DB          *sql.DB
	Secret      string
	TokenExpiry time.Duration
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
	Logger   *zap.Logger
}

// RegisterInput is the registration request.
type RegisterInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FullName  string `json:"fullName" validate:"required"`
	Phone     string `json:"phone"`
}

// LoginInput is the login request. Identifier is a student id, username or
// email.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Session is an issued token and the user it belongs to.
type Session struct {
	Token string
	User  *model.User
}

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	exists, err := store.UserExists(ctx, s.DB, in.StudentID, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict(msgUserExists)
	}

	hash, err := HashPassword(in.Password, s.HashCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user, err := store.CreateUser(ctx, s.DB, store.NewUser{
		StudentID:    in.StudentID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
	})
	if errors.Is(err, store.ErrConflict) {
		// Lost a race with a concurrent registration.
		return nil, apperr.Conflict(msgUserExists)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger().Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// Login checks credentials and signs the user in.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	user, err := store.GetUserByIdentifier(ctx, s.DB, strings.TrimSpace(in.Identifier))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, in.Password) {
		s.logger().Warn("login failed", zap.String("identifier", in.Identifier))
		return nil, apperr.Auth(msgInvalidCredentials)
	}

	s.logger().Info("user logged in", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Verify resolves a bearer token to its user.
func (s *Service) Verify(ctx context.Context, token string) (*model.User, *Claims, error) {
	claims, err := ValidateToken(s.Secret, token)
	if err != nil {
		return nil, nil, apperr.Auth(msgTokenFailed)
	}

	if claims.ID != "" {
		revoked, err := store.IsTokenRevoked(ctx, s.DB, claims.ID)
		if err != nil {
			return nil, nil, apperr.Internal(err)
		}
		if revoked {
			return nil, nil, apperr.Auth(msgTokenFailed)
		}
	}

	user, err := store.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, nil, apperr.Auth(msgUserNotFound)
	}

	return user, claims, nil
}

// Logout revokes the token described by claims until it expires.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := store.RevokeToken(ctx, s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Internal(err)
	}

	// Stale revocations only cost space, so a failed prune does not fail
	// the logout.
	pruned, err := store.PruneRevokedTokens(ctx, s.DB, time.Now())
	if err != nil {
		s.logger().Debug("pruning revoked tokens failed", zap.Error(err))
	} else if pruned > 0 {
		s.logger().Debug("pruned revoked tokens", zap.Int64("count", pruned))
	}
	s.logger().Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

func (s *Service) issue(user *model.User) (*Session, error) {
	token, err := GenerateToken(s.Secret, user.ID, s.TokenExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
