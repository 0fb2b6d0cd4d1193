package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/internal/models"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrUnauthorized is returned for any token that does not identify an active user
var ErrUnauthorized = errors.New("invalid or expired token")

// Authenticator resolves a bearer token to the calling user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.UserIdentity, error)
}

// UserStore persists users
type UserStore interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpsertGoogleUser(ctx context.Context, googleID, email, name, picture string, loginAt time.Time) (*models.User, error)
}

// SessionStore persists issued tokens
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.UserSession) error
	InvalidateSession(ctx context.Context, userID uint, tokenHash string) (int64, error)
}

// RevocationStore remembers logged out tokens
type RevocationStore interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Claims are the JWT claims of an access token
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GoogleUserInfo is the OpenID Connect userinfo payload
type GoogleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthService issues and verifies access tokens and runs the Google login
type AuthService struct {
	users       UserStore
	sessions    SessionStore
	revocations RevocationStore
	secret      []byte
	tokenTTL    time.Duration
	oauth       *oauth2.Config
	userInfoURL string
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg *config.Config, users UserStore, sessions SessionStore, revocations RevocationStore) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		revocations: revocations,
		secret:      []byte(cfg.JWTSecret),
		tokenTTL:    cfg.GetAccessTokenExpiry(),
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
		now:         time.Now,
	}
}

// IssueToken signs an access token for user
func (s *AuthService) IssueToken(user *models.User) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

func (s *AuthService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate verifies token and loads the active user it names
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.UserIdentity, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}

	revoked, err := s.revocations.IsRevoked(ctx, HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, uint(userID))
	if err != nil || !user.IsActive {
		return nil, ErrUnauthorized
	}

	identity := user.Identity()
	identity.Token = token
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// LoginURL returns the Google consent page URL for state
func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// CompleteLogin exchanges the authorization code, upserts the user and
// returns a freshly issued access token
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (string, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, s.oauth.Client(ctx, tok))
	if err != nil {
		return "", err
	}
	if info.Sub == "" || info.Email == "" {
		return "", errors.New("failed to get user info from Google")
	}

	user, err := s.users.UpsertGoogleUser(ctx, info.Sub, info.Email, info.Name, info.Picture, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}

	token, claims, err := s.IssueToken(user)
	if err != nil {
		return "", err
	}

	session := &models.UserSession{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		IsValid:   true,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	zaplogger.Info("user logged in", zaplogger.Fields{"user_id": user.ID, "email": user.Email})
	return token, nil
}

func (s *AuthService) fetchUserInfo(ctx context.Context, client *http.Client) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// Logout invalidates the caller's session and revokes the token until it expires
func (s *AuthService) Logout(ctx context.Context, identity *models.UserIdentity) error {
	hash := HashToken(identity.Token)
	if _, err := s.sessions.InvalidateSession(ctx, identity.ID, hash); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	if err := s.revocations.Revoke(ctx, hash, identity.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// HashToken returns the hex sha256 of a raw token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
