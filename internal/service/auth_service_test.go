package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/internal/models"
	"github.com/nsvirk/bhavapi/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[uint]*models.User
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) UpsertGoogleUser(ctx context.Context, googleID, email, name, picture string, loginAt time.Time) (*models.User, error) {
	u := &models.User{ID: uint(len(f.users) + 1), Email: email, Name: name, Picture: picture, GoogleID: &googleID, IsActive: true, LastLogin: &loginAt}
	f.users[u.ID] = u
	return u, nil
}

type fakeSessions struct {
	created     []*models.UserSession
	invalidated []string
}

func (f *fakeSessions) CreateSession(ctx context.Context, s *models.UserSession) error {
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessions) InvalidateSession(ctx context.Context, userID uint, tokenHash string) (int64, error) {
	f.invalidated = append(f.invalidated, tokenHash)
	return 1, nil
}

type fakeRevocations struct {
	revoked map[string]time.Duration
}

func (f *fakeRevocations) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	f.revoked[tokenHash] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	_, ok := f.revoked[tokenHash]
	return ok, nil
}

func newAuthService() (*AuthService, *fakeUsers, *fakeSessions, *fakeRevocations) {
	cfg := &config.Config{JWTSecret: "test-secret", AccessTokenExpireMinutes: "60"}
	users := &fakeUsers{users: map[uint]*models.User{
		1: {ID: 1, Email: "a@example.com", Name: "A", IsActive: true},
		2: {ID: 2, Email: "b@example.com", Name: "B", IsActive: false},
	}}
	sessions := &fakeSessions{}
	revocations := &fakeRevocations{revoked: map[string]time.Duration{}}
	svc := NewAuthService(cfg, users, sessions, revocations)
	svc.now = fixedNow
	return svc, users, sessions, revocations
}

func TestAuthService_IssueAndAuthenticate(t *testing.T) {
	svc, users, _, _ := newAuthService()

	token, claims, err := svc.IssueToken(users.users[1])
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, testToday.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())

	identity, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), identity.ID)
	assert.Equal(t, "a@example.com", identity.Email)
	assert.Equal(t, token, identity.Token)
}

func TestAuthService_RejectsInactiveUser(t *testing.T) {
	svc, users, _, _ := newAuthService()

	token, _, err := svc.IssueToken(users.users[2])
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RejectsExpiredToken(t *testing.T) {
	svc, users, _, _ := newAuthService()

	token, _, err := svc.IssueToken(users.users[1])
	require.NoError(t, err)

	svc.now = func() time.Time { return testToday.Add(2 * time.Hour) }
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	svc, _, _, _ := newAuthService()

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": testToday.Add(time.Hour).Unix()})
	signed, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "exp": testToday.Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	svc, users, sessions, revocations := newAuthService()

	token, _, err := svc.IssueToken(users.users[1])
	require.NoError(t, err)
	identity, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), identity))
	assert.Equal(t, []string{HashToken(token)}, sessions.invalidated)
	assert.Equal(t, time.Hour, revocations.revoked[HashToken(token)])

	_, err = svc.Authenticate(context.Background(), token)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestAuthService_LoginURL(t *testing.T) {
	svc, _, _, _ := newAuthService()

	u := svc.LoginURL("state-123")
	assert.Contains(t, u, "accounts.google.com")
	assert.Contains(t, u, "state=state-123")
}
