package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *users.Repository, func()) {
	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := users.NewRepository(db)
	cfg := testAuthConfig()
	service := NewService(repo, NewTokens(cfg), cfg)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, repo, cleanup
}

func TestService_Register(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	user, err := service.Register("reader", "reader@example.com", "password123")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsActive)
	// The stored password is a bcrypt hash, never the plaintext.
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, CheckPassword("password123", user.Password))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)

	_, err = service.Register("another", "reader@example.com", "password456")

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_Register_ShortPassword(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.Register("reader", "reader@example.com", "short")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Authenticate(t *testing.T) {
	service, repo, cleanup := setupTestService(t)
	defer cleanup()

	user, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)

	t.Run("unconfirmed email is refused", func(t *testing.T) {
		_, _, err := service.Authenticate("reader@example.com", "password123")
		assert.ErrorIs(t, err, ErrEmailNotConfirmed)
	})

	require.NoError(t, repo.SetActive(user))

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		access, refresh, err := service.Authenticate("reader@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := service.Authenticate("reader@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := service.Authenticate("nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_ConfirmEmail(t *testing.T) {
	service, repo, cleanup := setupTestService(t)
	defer cleanup()

	registered, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)

	token, err := service.Tokens().IssueConfirmationToken(registered.Email)
	require.NoError(t, err)

	user, err := service.ConfirmEmail(token)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	reloaded, err := repo.GetByID(registered.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsActive)
}

func TestService_ConfirmEmail_InvalidToken(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.ConfirmEmail("garbage")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ConfirmStaff(t *testing.T) {
	service, repo, cleanup := setupTestService(t)
	defer cleanup()

	registered, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)

	token, err := service.Tokens().IssueConfirmationToken(registered.Email)
	require.NoError(t, err)

	user, err := service.ConfirmStaff(token)
	require.NoError(t, err)
	assert.True(t, user.IsStaff)

	reloaded, err := repo.GetByID(registered.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsStaff)
}

func TestService_ResendConfirmation(t *testing.T) {
	service, repo, cleanup := setupTestService(t)
	defer cleanup()

	user, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)

	t.Run("reissues a redeemable token", func(t *testing.T) {
		token, err := service.ResendConfirmation("reader", "reader@example.com", "password123")
		require.NoError(t, err)

		email, err := service.Tokens().VerifyConfirmationToken(token)
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.ResendConfirmation("reader", "reader@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.ResendConfirmation("nobody", "nobody@example.com", "password123")
		assert.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("already confirmed", func(t *testing.T) {
		require.NoError(t, repo.SetActive(user))
		_, err := service.ResendConfirmation("reader", "reader@example.com", "password123")
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	})
}

func TestService_ResolveUser(t *testing.T) {
	service, repo, cleanup := setupTestService(t)
	defer cleanup()

	registered, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(registered))

	access, _, err := service.Authenticate("reader@example.com", "password123")
	require.NoError(t, err)

	user, err := service.ResolveUser(access)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestService_ResolveStaffUser(t *testing.T) {
	service, repo, cleanup := setupTestService(t)
	defer cleanup()

	registered, err := service.Register("reader", "reader@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(registered))

	access, _, err := service.Authenticate("reader@example.com", "password123")
	require.NoError(t, err)

	t.Run("non-staff user looks absent", func(t *testing.T) {
		_, err := service.ResolveStaffUser(access)
		assert.ErrorIs(t, err, ErrStaffNotFound)
	})

	t.Run("staff user resolves", func(t *testing.T) {
		require.NoError(t, repo.SetStaff(registered))
		user, err := service.ResolveStaffUser(access)
		require.NoError(t, err)
		assert.True(t, user.IsStaff)
	})
}

func TestService_ExpiredAccessTokenResolution(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	cfg := testAuthConfig()
	cfg.AccessTokenLifetime = -1 * time.Minute
	expired, err := NewTokens(cfg).IssueAccessToken("reader@example.com")
	require.NoError(t, err)

	_, err = service.ResolveUser(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
