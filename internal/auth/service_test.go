package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FormaKit/Backend/internal/apperr"
	"github.com/FormaKit/Backend/internal/security"
	sessiondomain "github.com/FormaKit/Backend/internal/session/domain"
	userdomain "github.com/FormaKit/Backend/internal/user/domain"
)

// memUserRepo is an in-memory UserRepo for service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*userdomain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return &cp, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r *memUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

// memSessionRepo mirrors the store's demote-then-insert semantics in memory.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*sessiondomain.Session{}}
}

func (r *memSessionRepo) CreateSession(_ context.Context, s *sessiondomain.Session) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID {
			existing.IsCurrent = false
		}
	}
	cp := *s
	cp.IsCurrent = true
	r.sessions[s.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memSessionRepo) byUser(userID string) []*sessiondomain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out
}

func newTestService(t *testing.T) (*Service, *memUserRepo, *memSessionRepo) {
	t.Helper()
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	hasher := security.NewHasher(bcrypt.MinCost)
	tokens := security.NewTokenCodec([]byte("test-secret"), "formakit-auth", time.Hour)
	return NewService(users, sessions, hasher, tokens), users, sessions
}

func register(t *testing.T, svc *Service, email, username, password string) *userdomain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService(t)

	u := register(t, svc, "New@Example.com", "newbie", "pass123")

	assert.Equal(t, "new@example.com", u.Email, "email stored lower-cased")
	assert.Equal(t, userdomain.RoleMember, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "pass123", u.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@b.co", "first", "pass123")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "A@B.CO",
		Username: "second",
		Password: "pass123",
	})

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	assert.EqualError(t, err, "Email already exists")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@b.co", "taken", "pass123")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "other@b.co",
		Username: "taken",
		Password: "pass123",
	})

	require.Error(t, err)
	assert.EqualError(t, err, "Username already taken")
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.co"})

	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "a@b.co", "alice", "pass123")

	u, err := svc.Authenticate(context.Background(), "A@B.CO", "pass123")

	require.NoError(t, err)
	assert.Equal(t, "a@b.co", u.Email)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, users, _ := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "pass123")

	_, unknownErr := svc.Authenticate(context.Background(), "nobody@b.co", "pass123")
	_, wrongErr := svc.Authenticate(context.Background(), "a@b.co", "wrong")

	users.mu.Lock()
	users.users[u.ID].IsActive = false
	users.mu.Unlock()
	_, inactiveErr := svc.Authenticate(context.Background(), "a@b.co", "pass123")

	for _, err := range []error{unknownErr, wrongErr, inactiveErr} {
		require.Error(t, err)
		assert.True(t, apperr.IsCode(err, apperr.CodeAuth))
		assert.EqualError(t, err, "invalid credentials")
	}
}

func TestLoginCreatesCurrentSessionAndToken(t *testing.T) {
	svc, _, sessions := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "pass123")

	result, err := svc.Login(context.Background(), "a@b.co", "pass123", SessionMetadata{
		DeviceName: "MacBook",
		UserAgent:  "test-agent",
		IPAddress:  "10.0.0.1",
	})

	require.NoError(t, err)
	assert.Equal(t, u.ID, result.User.ID)
	assert.True(t, result.Session.IsCurrent)
	assert.Equal(t, result.Token, result.Session.SessionToken, "stored token matches issued token")
	assert.Equal(t, "MacBook", result.Session.DeviceName)
	assert.Equal(t, "Unknown", result.Session.Location, "missing metadata defaulted")
	assert.True(t, result.Session.ExpireAt.After(time.Now()))

	tokens := security.NewTokenCodec([]byte("test-secret"), "formakit-auth", time.Hour)
	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, result.Session.ID, claims.SessionID, "token bound to the created session")

	require.Len(t, sessions.byUser(u.ID), 1)
}

func TestLoginDemotesPreviousSessions(t *testing.T) {
	svc, _, sessions := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "pass123")

	first, err := svc.Login(context.Background(), "a@b.co", "pass123", SessionMetadata{})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "a@b.co", "pass123", SessionMetadata{})
	require.NoError(t, err)

	var current int
	for _, s := range sessions.byUser(u.ID) {
		if s.IsCurrent {
			current++
			assert.Equal(t, second.Session.ID, s.ID)
		}
	}
	assert.Equal(t, 1, current, "exactly one current session after relogin")
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, sessions := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "pass123")

	_, err := svc.Login(context.Background(), "a@b.co", "wrong", SessionMetadata{})

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAuth))
	assert.Empty(t, sessions.byUser(u.ID), "failed login must not create a session")
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "old-pass")

	err := svc.ChangePassword(context.Background(), u.ID, "old-pass", "new-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "a@b.co", "old-pass")
	assert.True(t, apperr.IsCode(err, apperr.CodeAuth), "old password no longer valid")
	_, err = svc.Authenticate(context.Background(), "a@b.co", "new-pass")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "old-pass")

	err := svc.ChangePassword(context.Background(), u.ID, "not-it", "new-pass")

	assert.True(t, apperr.IsCode(err, apperr.CodeAuth))
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ChangePassword(context.Background(), "missing", "x", "y")

	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestChangePasswordEmptyNew(t *testing.T) {
	svc, _, _ := newTestService(t)
	u := register(t, svc, "a@b.co", "alice", "old-pass")

	err := svc.ChangePassword(context.Background(), u.ID, "old-pass", "")

	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}
