package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zixuanzhao/chat-relay/internal/model/user"
)

var (
	// ErrInvalidToken covers every malformed, expired or forged token. Any
	// other error from Verify means the check itself could not run.
	ErrInvalidToken = errors.New("invalid or expired access token")

	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrMissingField       = errors.New("username and password are required")
)

// Verifier validates a bearer token to a username.
type Verifier interface {
	Verify(token string) (string, error)
}

// Claims carries the authenticated username in the registered subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 access tokens and owns password hashing.
type Service struct {
	users    user.Store
	secret   []byte
	tokenTTL time.Duration
}

// NewService wires the auth service to its user store. tokenTTL bounds how
// long an issued token verifies; the websocket channel re-checks it on every
// frame, so long-lived connections outlive short-lived tokens safely.
func NewService(users user.Store, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{users: users, secret: secret, tokenTTL: tokenTTL}
}

// SignUp registers a new user with a bcrypt-hashed password.
func (s *Service) SignUp(ctx context.Context, username, password string) (user.User, error) {
	if username == "" || password == "" {
		return user.User{}, ErrMissingField
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	return s.users.Create(ctx, user.User{Username: username, PasswordHash: string(hash)})
}

// LogIn checks the password and issues an access token.
func (s *Service) LogIn(ctx context.Context, username, password string) (string, error) {
	rec, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(username)
}

// IssueToken signs a token whose subject is the username.
func (s *Service) IssueToken(username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// Verify validates a bearer token and returns the username it was issued to.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
