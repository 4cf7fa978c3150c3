// Package auth implements credential verification, registration, password
// change, and login orchestration (session creation + token issuance).
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/security"
	sessiondomain "github.com/FormaKit/Backend/internal/session/domain"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
)

// invalidCredentials is the single message returned for unknown email, wrong
// password, and disabled account, so callers cannot tell which condition held.
const invalidCredentials = "invalid credentials"

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	Create(ctx context.Context, u *userdomain.User) (*userdomain.User, error)
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (*userdomain.User, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	CreateSession(ctx context.Context, s *sessiondomain.Session) (*sessiondomain.Session, error)
}

// Service implements registration, authentication, login, and password change.
type Service struct {
	users    UserRepo
	sessions SessionRepo
	hasher   *security.Hasher
	tokens   *security.TokenCodec
}

// NewService returns a Service with the given dependencies.
func NewService(users UserRepo, sessions SessionRepo, hasher *security.Hasher, tokens *security.TokenCodec) *Service {
	return &Service{users: users, sessions: sessions, hasher: hasher, tokens: tokens}
}

// RegisterInput is the data required to create a user.
type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	CompanyID    string
	DepartmentID string
}

// Register creates an active user with a hashed password. Email is
// lower-cased before storage so the uniqueness check is case-insensitive.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*userdomain.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, apperr.Validation("email, username and password are required")
	}
	emailTaken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, apperr.Validation("Email already exists")
	}
	usernameTaken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, apperr.Validation("Username already taken")
	}
	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.users.Create(ctx, &userdomain.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hashed,
		Role:         userdomain.RoleMember,
		CompanyID:    in.CompanyID,
		DepartmentID: in.DepartmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate verifies email and password against the stored user. All
// credential failures surface as the same AuthError. The returned user still
// carries its password hash; callers expose User.Public() only.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Auth(invalidCredentials)
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, apperr.Auth(invalidCredentials)
	}
	if !user.IsActive {
		return nil, apperr.Auth(invalidCredentials)
	}
	return user, nil
}

// SessionMetadata is client-observed device information recorded on login.
type SessionMetadata struct {
	DeviceName string
	UserAgent  string
	IPAddress  string
	Location   string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User    *userdomain.User
	Session *sessiondomain.Session
	Token   string
}

// Login authenticates the credentials, creates the new current session for
// the user (demoting all others), and issues the signed session token bound
// to it.
func (s *Service) Login(ctx context.Context, email, password string, meta SessionMetadata) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sessionID := uuid.New().String()
	token, expireAt, err := s.tokens.Issue(user.ID, user.Email, string(user.Role), sessionID, 0)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session, err := s.sessions.CreateSession(ctx, &sessiondomain.Session{
		ID:           sessionID,
		UserID:       user.ID,
		SessionToken: token,
		ExpireAt:     expireAt,
		DeviceName:   orUnknown(meta.DeviceName, "Unknown Device"),
		UserAgent:    orUnknown(meta.UserAgent, "Unknown"),
		IPAddress:    orUnknown(meta.IPAddress, "Unknown"),
		Location:     orUnknown(meta.Location, "Unknown"),
		IsCurrent:    true,
		CreatedAt:    now,
		LastActiveAt: now,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// ChangePassword verifies the current password and persists a hash of the new
// one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("new password is required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(currentPassword)); err != nil {
		return apperr.Auth("current password is incorrect")
	}
	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	_, err = s.users.UpdatePassword(ctx, userID, hashed)
	return err
}

func orUnknown(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
