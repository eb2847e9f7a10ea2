package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/libtrary/libtrary/internal/auth"
	"github.com/libtrary/libtrary/internal/config"
	"github.com/libtrary/libtrary/internal/database"
	"github.com/libtrary/libtrary/internal/database/books"
	rentalstore "github.com/libtrary/libtrary/internal/database/rentals"
	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/database/wishlists"
	"github.com/libtrary/libtrary/internal/entities"
	"github.com/libtrary/libtrary/internal/rentals"
)

type capturedEmail struct {
	Subject string
	Body    string
	To      string
}

// testNotifier records emails instead of enqueueing them.
type testNotifier struct {
	sent []capturedEmail
}

func (n *testNotifier) Notify(subject, body, to string) error {
	n.sent = append(n.sent, capturedEmail{Subject: subject, Body: body, To: to})
	return nil
}

type testApp struct {
	router      *gin.Engine
	db          *database.Database
	users       *users.Repository
	books       *books.Repository
	ledger      *rentalstore.Repository
	wishlists   *wishlists.Repository
	authService *auth.Service
	notifier    *testNotifier
}

func setupTestApp(t *testing.T) (*testApp, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	authCfg := config.Auth{
		SecretKey:            "test-secret",
		JWTSecretKey:         "test-jwt-secret",
		JWTRefreshSecretKey:  "test-jwt-refresh-secret",
		AccessTokenLifetime:  30 * time.Minute,
		RefreshTokenLifetime: 3000 * time.Minute,
		ConfirmationMaxAge:   time.Hour,
		BcryptCost:           4,
	}

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	ledger := rentalstore.NewRepository(db.DB)
	wishlistRepo := wishlists.NewRepository(db.DB)

	notifier := &testNotifier{}
	authService := auth.NewService(userRepo, auth.NewTokens(authCfg), authCfg)
	rentalService := rentals.NewService(userRepo, bookRepo, ledger, wishlistRepo, notifier, 30)

	router := NewRouter(RouterConfig{
		Database:       db,
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(authService),
		RentalService:  rentalService,
		BookRepo:       bookRepo,
		WishlistRepo:   wishlistRepo,
		Notifier:       notifier,
		HTTPConfig:     config.HTTP{PublicURL: "http://localhost:8000"},
		MailConfig:     config.Mail{AdminEmail: "admin@libtrary.com"},
		MaxUploadBytes: 1 << 20,
		Version:        "test",
	})

	app := &testApp{
		router:      router,
		db:          db,
		users:       userRepo,
		books:       bookRepo,
		ledger:      ledger,
		wishlists:   wishlistRepo,
		authService: authService,
		notifier:    notifier,
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return app, cleanup
}

func (a *testApp) createActiveUser(t *testing.T, username, email string) *entities.User {
	t.Helper()
	user, err := a.authService.Register(username, email, "password123")
	require.NoError(t, err)
	require.NoError(t, a.users.SetActive(user))
	return user
}

func (a *testApp) createStaffUser(t *testing.T, username, email string) *entities.User {
	t.Helper()
	user := a.createActiveUser(t, username, email)
	require.NoError(t, a.users.SetStaff(user))
	return user
}

func (a *testApp) createBook(t *testing.T, title, authors string) *entities.Book {
	t.Helper()
	book := &entities.Book{
		ISBN:            "978-0000000000",
		Authors:         authors,
		PublicationYear: 2020,
		Title:           title,
		Language:        "English",
	}
	require.NoError(t, a.books.Create(book))
	return book
}

func (a *testApp) bearerFor(t *testing.T, email string) string {
	t.Helper()
	token, err := a.authService.Tokens().IssueAccessToken(email)
	require.NoError(t, err)
	return "Bearer " + token
}

func (a *testApp) request(method, path, auth string, body *strings.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}
