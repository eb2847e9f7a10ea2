package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistController_Get(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		w := app.request("GET", "/user/wishlist", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no wishlist yet", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")

		w := app.request("GET", "/user/wishlist", app.bearerFor(t, user.Email), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lists book IDs", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")
		book := app.createBook(t, "The Go Programming Language", "Alan Donovan")
		require.NoError(t, app.wishlists.AddBook(user.ID, book.ID))

		w := app.request("GET", "/user/wishlist", app.bearerFor(t, user.Email), nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response WishlistResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, user.ID, response.UserID)
		assert.Equal(t, []uint{book.ID}, response.BookIDs)
	})
}

func TestWishlistController_Add(t *testing.T) {
	t.Run("adds a book", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")
		book := app.createBook(t, "The Go Programming Language", "Alan Donovan")

		body := strings.NewReader(fmt.Sprintf(`{"book_id":%d}`, book.ID))
		w := app.request("POST", "/user/wishlist", app.bearerFor(t, user.Email), body)

		assert.Equal(t, http.StatusOK, w.Code)

		wishlist, err := app.wishlists.GetByUserID(user.ID)
		require.NoError(t, err)
		assert.Len(t, wishlist.Books, 1)
	})

	t.Run("adding twice keeps one entry", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")
		book := app.createBook(t, "The Go Programming Language", "Alan Donovan")
		bearer := app.bearerFor(t, user.Email)

		for i := 0; i < 2; i++ {
			body := strings.NewReader(fmt.Sprintf(`{"book_id":%d}`, book.ID))
			w := app.request("POST", "/user/wishlist", bearer, body)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		wishlist, err := app.wishlists.GetByUserID(user.ID)
		require.NoError(t, err)
		assert.Len(t, wishlist.Books, 1)
	})

	t.Run("unknown book", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")

		body := strings.NewReader(`{"book_id":999}`)
		w := app.request("POST", "/user/wishlist", app.bearerFor(t, user.Email), body)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing book_id fails validation", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")

		body := strings.NewReader(`{}`)
		w := app.request("POST", "/user/wishlist", app.bearerFor(t, user.Email), body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestWishlistController_Remove(t *testing.T) {
	t.Run("removes a book", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")
		book := app.createBook(t, "The Go Programming Language", "Alan Donovan")
		require.NoError(t, app.wishlists.AddBook(user.ID, book.ID))

		w := app.request("DELETE", fmt.Sprintf("/user/wishlist/%d", book.ID), app.bearerFor(t, user.Email), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("book not in wishlist", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")
		book := app.createBook(t, "The Go Programming Language", "Alan Donovan")
		other := app.createBook(t, "The C Programming Language", "Brian Kernighan")
		require.NoError(t, app.wishlists.AddBook(user.ID, book.ID))

		w := app.request("DELETE", fmt.Sprintf("/user/wishlist/%d", other.ID), app.bearerFor(t, user.Email), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "book not in wishlist")
	})

	t.Run("invalid ID parameter", func(t *testing.T) {
		app, cleanup := setupTestApp(t)
		defer cleanup()

		user := app.createActiveUser(t, "reader", "reader@example.com")

		w := app.request("DELETE", "/user/wishlist/abc", app.bearerFor(t, user.Email), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStaffAccessController_Request(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	user := app.createActiveUser(t, "reader", "reader@example.com")

	w := app.request("POST", "/user/request-staff-access", app.bearerFor(t, user.Email), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Staff access request for reader has been sent.")

	// The confirmation link goes to the admin, not the requester.
	require.Len(t, app.notifier.sent, 1)
	assert.Equal(t, "Staff Access Request", app.notifier.sent[0].Subject)
	assert.Equal(t, "admin@libtrary.com", app.notifier.sent[0].To)
	assert.Contains(t, app.notifier.sent[0].Body, "/admin/confirm-staff-access?token=")
}
