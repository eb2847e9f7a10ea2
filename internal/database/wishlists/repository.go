// Package wishlists provides database operations for per-user wishlists
// and their many-to-many book association.
package wishlists

import (
	"errors"

	"gorm.io/gorm"

	"github.com/libtrary/libtrary/internal/entities"
)

var (
	// ErrNotFound is returned when the user has no wishlist yet.
	ErrNotFound = errors.New("wishlist not found")

	// ErrBookNotFound is returned when the referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookNotInWishlist is returned when removing a book the wishlist
	// does not contain.
	ErrBookNotInWishlist = errors.New("book not in wishlist")
)

// Repository handles all wishlist database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new wishlists repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID retrieves the user's wishlist with its books preloaded.
// Only the first wishlist is considered if duplicates exist.
func (r *Repository) GetByUserID(userID uint) (*entities.Wishlist, error) {
	var wishlist entities.Wishlist
	err := r.db.Preload("Books").Where("user_id = ?", userID).First(&wishlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wishlist, nil
}

// AddBook appends a book to the user's wishlist, creating the wishlist on
// first use. Adding a book that is already present is a no-op.
func (r *Repository) AddBook(userID, bookID uint) error {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	var wishlist entities.Wishlist
	err := r.db.Where("user_id = ?", userID).First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wishlist = entities.Wishlist{UserID: userID}
		if err := r.db.Create(&wishlist).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return r.db.Model(&wishlist).Association("Books").Append(&book)
}

// RemoveBook removes a book from the user's wishlist.
func (r *Repository) RemoveBook(userID, bookID uint) error {
	var wishlist entities.Wishlist
	err := r.db.Where("user_id = ?", userID).First(&wishlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	var count int64
	err = r.db.Table("wishlist_books").
		Where("wishlist_id = ? AND book_id = ?", wishlist.ID, book.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrBookNotInWishlist
	}

	return r.db.Model(&wishlist).Association("Books").Delete(&book)
}

// EmailsWishingBook returns the distinct email addresses of every user whose
// wishlist contains the given book. Used to fan out availability notices.
func (r *Repository) EmailsWishingBook(bookID uint) ([]string, error) {
	var emails []string
	err := r.db.Model(&entities.User{}).
		Joins("JOIN wishlists ON wishlists.user_id = users.id").
		Joins("JOIN wishlist_books ON wishlist_books.wishlist_id = wishlists.id").
		Where("wishlist_books.book_id = ?", bookID).
		Distinct().
		Pluck("users.email", &emails).Error
	return emails, err
}
