package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newAuthService(repo repositories.AccountRepository) *services.AuthService {
	return services.NewAuthService(repo, services.NewBcryptHasher(bcrypt.MinCost), testJWTSecret, time.Hour, nil, quietLogger)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Identifier == "a@x.com" &&
			a.SecretDigest != "pw123" &&
			bcrypt.CompareHashAndPassword([]byte(a.SecretDigest), []byte("pw123")) == nil
	})).Return(nil).Once()

	account, err := authService.Register(ctx, services.RegisterInput{Identifier: "a@x.com", Secret: "pw123", ConfirmSecret: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Identifier)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)

	cases := map[string]services.RegisterInput{
		"missing identifier": {Secret: "pw123"},
		"missing secret":     {Identifier: "a@x.com"},
		"confirm mismatch":   {Identifier: "a@x.com", Secret: "pw123", ConfirmSecret: "pw124"},
		"bad identifier":     {Identifier: "not an id", Secret: "pw123"},
		"short phone":        {Identifier: "12345", Secret: "pw123"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := authService.Register(context.Background(), in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterAcceptsPhoneIdentifier(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Account")).Return(nil).Twice()

	_, err := authService.Register(context.Background(), services.RegisterInput{Identifier: "9876543210", Secret: "pw123"})
	assert.NoError(t, err)
	_, err = authService.Register(context.Background(), services.RegisterInput{Identifier: "+919876543210", Secret: "pw123"})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterConflict(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.New(apperrors.ErrConflict, "User already exists")).Once()

	_, err := authService.Register(context.Background(), services.RegisterInput{Identifier: "a@x.com", Secret: "pw123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "User already exists", apperrors.Message(err, ""))
}

func TestAuthService_RegisterTwiceConflictsRegardlessOfSecret(t *testing.T) {
	authService := newAuthService(repositories.NewMemoryAccountRepository())
	ctx := context.Background()

	_, err := authService.Register(ctx, services.RegisterInput{Identifier: "a@x.com", Secret: "pw123"})
	require.NoError(t, err)
	_, err = authService.Register(ctx, services.RegisterInput{Identifier: "a@x.com", Secret: "pw123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = authService.Register(ctx, services.RegisterInput{Identifier: "a@x.com", Secret: "different"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_RegisterThenAuthenticate(t *testing.T) {
	authService := newAuthService(repositories.NewMemoryAccountRepository())
	ctx := context.Background()

	pairs := [][2]string{
		{"a@x.com", "pw123"},
		{"9876543210", "s3cret!"},
		{"someone@example.org", "correct horse battery staple"},
	}
	for _, p := range pairs {
		account, err := authService.Register(ctx, services.RegisterInput{Identifier: p[0], Secret: p[1]})
		require.NoError(t, err)

		token, err := authService.Authenticate(ctx, p[0], p[1])
		require.NoError(t, err)

		claims, err := authService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, claims.UserID)
		assert.Equal(t, p[0], claims.Identifier)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)

		_, err = authService.Authenticate(ctx, p[0], p[1]+"x")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
}

func TestAuthService_AuthenticateDoesNotRevealAccountExistence(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)

	digest, _ := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	mockRepo.On("GetByIdentifier", ctx, "a@x.com").
		Return(&models.Account{ID: "user-1", Identifier: "a@x.com", SecretDigest: string(digest)}, nil).Once()
	mockRepo.On("GetByIdentifier", ctx, "ghost@x.com").
		Return(nil, apperrors.New(apperrors.ErrAccountNotFound, "User not found")).Once()

	_, wrongSecret := authService.Authenticate(ctx, "a@x.com", "nope")
	_, unknown := authService.Authenticate(ctx, "ghost@x.com", "pw123")

	assert.ErrorIs(t, wrongSecret, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, apperrors.ErrInvalidCredentials)
	assert.Equal(t, wrongSecret.Error(), unknown.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_AuthenticateStorageFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAccountRepository)
	authService := newAuthService(mockRepo)
	mockRepo.On("GetByIdentifier", ctx, "a@x.com").
		Return(nil, apperrors.Storage("failed to get account", errors.New("db down"))).Once()

	_, err := authService.Authenticate(ctx, "a@x.com", "pw123")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_AuthenticateMissingFields(t *testing.T) {
	authService := newAuthService(new(MockAccountRepository))

	_, err := authService.Authenticate(context.Background(), "", "pw123")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = authService.Authenticate(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockAccountRepository))

	sign := func(secret string, claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}

	valid := sign(testJWTSecret, jwt.MapClaims{
		"user_id":    "user-123",
		"identifier": "a@x.com",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	claims, err := authService.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Identifier)

	invalid := []string{
		"invalid.token.string",
		sign("other_secret", jwt.MapClaims{"user_id": "user-123", "identifier": "a@x.com", "exp": time.Now().Add(time.Hour).Unix()}),
		sign(testJWTSecret, jwt.MapClaims{"user_id": "user-123", "identifier": "a@x.com", "exp": time.Now().Add(-time.Hour).Unix()}),
		sign(testJWTSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
	}
	for _, token := range invalid {
		_, err := authService.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	}
}
