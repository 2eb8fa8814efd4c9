package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = time.Hour

// PasswordHasher derives and checks secret digests.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Compare(digest, secret string) error
}

// BcryptHasher uses bcrypt, which salts every digest.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost (bcrypt.DefaultCost when 0).
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt digest of secret.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare checks secret against digest.
func (h *BcryptHasher) Compare(digest, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
}

// Claims is the validated content of a session token.
type Claims struct {
	UserID     string
	Identifier string
	ExpiresAt  time.Time
}

// RegisterInput is the signup request. ConfirmSecret is checked only when set.
type RegisterInput struct {
	Identifier    string `json:"identifier"`
	Secret        string `json:"secret"`
	ConfirmSecret string `json:"confirmSecret"`
}

// AuthService handles registration, authentication and token validation.
type AuthService struct {
	accounts  repositories.AccountRepository
	hasher    PasswordHasher
	jwtSecret []byte
	tokenTTL  time.Duration
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts repositories.AccountRepository, hasher PasswordHasher, jwtSecret string, tokenTTL time.Duration, m *metrics.Metrics, logger *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		accounts:  accounts,
		hasher:    hasher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		validate:  validator.New(),
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates an account with a salted digest of the secret.
// Uniqueness is left to the account store so concurrent signups cannot both win.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Secret == "" {
		return nil, apperrors.Validation("All fields are required")
	}
	if in.ConfirmSecret != "" && in.ConfirmSecret != in.Secret {
		return nil, apperrors.Validation("Passwords do not match")
	}
	if !s.validIdentifier(identifier) {
		return nil, apperrors.Validation("Enter a valid email address or mobile number")
	}

	digest, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	account := &models.Account{Identifier: identifier, SecretDigest: digest}
	if err := s.accounts.Create(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.logger.Error("register account", slog.String("identifier", identifier), slog.Any("error", err))
		}
		return nil, err
	}
	s.logger.Info("account registered", slog.String("account_id", account.ID))
	return account, nil
}

// Authenticate verifies the secret and issues a signed token. Unknown identifiers and
// wrong secrets fail with the same error.
func (s *AuthService) Authenticate(ctx context.Context, identifier, secret string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return "", apperrors.Validation("Email or Mobile and Password are required")
	}

	account, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			s.metrics.Login("invalid_credentials")
			return "", apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials")
		}
		s.logger.Error("login lookup", slog.Any("error", err))
		return "", err
	}

	if err := s.hasher.Compare(account.SecretDigest, secret); err != nil {
		s.metrics.Login("invalid_credentials")
		return "", apperrors.New(apperrors.ErrInvalidCredentials, "Invalid credentials")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    account.ID,
		"identifier": account.Identifier,
		"exp":        now.Add(s.tokenTTL).Unix(),
		"iat":        now.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.metrics.Login("success")
	return signed, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "Invalid or expired token", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Invalid or expired token")
	}
	userID, _ := mapClaims["user_id"].(string)
	identifier, _ := mapClaims["identifier"].(string)
	if userID == "" || identifier == "" {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "Invalid or expired token")
	}

	claims := &Claims{UserID: userID, Identifier: identifier}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}

// validIdentifier accepts an email address or a phone number of 7 to 15 digits.
func (s *AuthService) validIdentifier(identifier string) bool {
	if s.validate.Var(identifier, "email") == nil {
		return true
	}
	return s.validate.Var(strings.TrimPrefix(identifier, "+"), "number,min=7,max=15") == nil
}
