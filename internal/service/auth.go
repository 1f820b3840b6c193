package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/taskchat/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration, credential verification, and JWT
// issuing and verification. The signing secret is fixed for the process
// lifetime; rotating it invalidates every outstanding token.
type AuthService struct {
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
	tokenTTL   time.Duration

	// decoyHash is compared against the presented password when the email
	// is unknown, so both login failure paths cost one bcrypt comparison.
	decoyHash []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, tokenTTL time.Duration) (*AuthService, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate decoy password: %w", err)
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash decoy password: %w", err)
	}

	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
		decoyHash:  decoy,
	}, nil
}

// TokenTTL reports the configured token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a new user account and returns it together with a freshly
// issued token, so a client can start making authenticated calls immediately.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", domain.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password are indistinguishable: both cost one bcrypt comparison and
// both fail with ErrInvalidCredentials. Login mutates nothing.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		// A malformed email can never belong to an account.
		return "", domain.ErrInvalidCredentials
	}

	var user *domain.User
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			bcrypt.CompareHashAndPassword(s.decoyHash, []byte(password))
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// VerifyToken checks a bearer token's signature and expiry and returns the
// subject id. The three failure modes stay distinct: ErrTokenMissing for an
// absent token, ErrTokenExpired for a well-signed token past its expiry, and
// ErrTokenInvalid for everything else (bad signature, wrong algorithm,
// malformed payload, missing subject).
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.ErrTokenMissing
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}

	return claims.Subject, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (s *AuthService) signToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// normalizeEmail lower-cases and validates an email address. Uniqueness is
// case-insensitive, so the canonical lower-case form is what gets stored and
// looked up.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	// bcrypt only reads the first 72 bytes; refuse anything longer instead
	// of silently truncating.
	if len(password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 characters", domain.ErrInvalidInput)
	}
	return nil
}
