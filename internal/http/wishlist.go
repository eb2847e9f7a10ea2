package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/auth"
	"github.com/libtrary/libtrary/internal/database/wishlists"
)

// WishlistController handles the authenticated user's wishlist.
type WishlistController struct {
	wishlists *wishlists.Repository
}

// NewWishlistController creates the controller.
func NewWishlistController(wishlistRepo *wishlists.Repository) *WishlistController {
	return &WishlistController{wishlists: wishlistRepo}
}

type AddWishlistBookRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}

// WishlistResponse lists the book IDs in a user's wishlist.
type WishlistResponse struct {
	ID      uint   `json:"id"`
	UserID  uint   `json:"user_id"`
	BookIDs []uint `json:"book_ids"`
}

// Get handles GET /user/wishlist.
func (w *WishlistController) Get(c *gin.Context) {
	user := auth.CurrentUser(c)

	wishlist, err := w.wishlists.GetByUserID(user.ID)
	if err != nil {
		if errors.Is(err, wishlists.ErrNotFound) {
			respondNotFound(c, "wishlist")
			return
		}
		respondInternalError(c, err, "get wishlist")
		return
	}

	bookIDs := make([]uint, 0, len(wishlist.Books))
	for _, book := range wishlist.Books {
		bookIDs = append(bookIDs, book.ID)
	}

	c.JSON(http.StatusOK, WishlistResponse{
		ID:      wishlist.ID,
		UserID:  wishlist.UserID,
		BookIDs: bookIDs,
	})
}

// Add handles POST /user/wishlist. Adding an already-present book is a no-op.
func (w *WishlistController) Add(c *gin.Context) {
	var req AddWishlistBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user := auth.CurrentUser(c)
	if err := w.wishlists.AddBook(user.ID, req.BookID); err != nil {
		if errors.Is(err, wishlists.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "add to wishlist")
		return
	}

	respondSuccess(c, "Book added to wishlist.")
}

// Remove handles DELETE /user/wishlist/:bookId.
func (w *WishlistController) Remove(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	user := auth.CurrentUser(c)
	if err := w.wishlists.RemoveBook(user.ID, bookID); err != nil {
		switch {
		case errors.Is(err, wishlists.ErrNotFound):
			respondNotFound(c, "wishlist")
		case errors.Is(err, wishlists.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, wishlists.ErrBookNotInWishlist):
			respondBadRequest(c, "book not in wishlist")
		default:
			respondInternalError(c, err, "remove from wishlist")
		}
		return
	}

	respondSuccess(c, "Book removed from wishlist.")
}
