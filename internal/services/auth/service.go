package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/dependencies/random"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

const (
	// MaxHandleLength bounds the length of a handle in bytes
	MaxHandleLength = 64
	// MaxPasswordLength is the longest password bcrypt accepts
	MaxPasswordLength = 72
)

// Session is the identity bound to a bearer token
type Session struct {
	Token     string
	Handle    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// sessionClaims is the JWT payload; the handle travels as the subject
type sessionClaims struct {
	jwt.RegisteredClaims
}

// Service handles registration, login and token verification
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	secret     []byte
	issuer     string
	tokenTTL   time.Duration
	bcryptCost int
}

// Config holds configuration for the auth service
type Config struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
	BcryptCost  int
}

// DefaultConfig returns default auth configuration. TokenSecret has no default.
func DefaultConfig() Config {
	return Config{
		TokenTTL:   24 * time.Hour,
		Issuer:     "chessgame",
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		random:     random,
		logger:     logger,
		secret:     []byte(cfg.TokenSecret),
		issuer:     cfg.Issuer,
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a user with a bcrypt digest of the password
func (s *Service) Register(ctx context.Context, handle, password string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return fmt.Errorf("%w: handle and password are required", model.ErrInvalidInput)
	}
	if len(handle) > MaxHandleLength {
		return fmt.Errorf("%w: handle must be at most %d characters", model.ErrInvalidInput, MaxHandleLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", model.ErrInvalidInput, MaxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Handle:       handle,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user registered", slog.String("handle", handle))
	return nil
}

// Login verifies credentials and issues a signed session token
func (s *Service) Login(ctx context.Context, handle, password string) (*Session, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return nil, fmt.Errorf("%w: handle and password are required", model.ErrInvalidInput)
	}
	if len(password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", model.ErrInvalidInput, MaxPasswordLength)
	}

	user, err := s.storage.GetUser(ctx, handle)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user.Handle)
}

// Authenticate verifies a token and returns the session it carries
func (s *Service) Authenticate(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || claims.Subject == "" {
		return nil, ErrInvalidSession
	}

	session := &Session{
		Token:     token,
		Handle:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return session, nil
}

func (s *Service) issue(handle string) (*Session, error) {
	now := s.clock.Now()
	expires := now.Add(s.tokenTTL)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   handle,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        s.random.UUID(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &Session{
		Token:     token,
		Handle:    handle,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
