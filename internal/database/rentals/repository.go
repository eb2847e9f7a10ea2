// Package rentals provides database operations for the rental ledger.
// A ledger row exists only while a book is borrowed.
package rentals

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/libtrary/libtrary/internal/entities"
)

// ErrNotFound is returned when no open rental matches.
var ErrNotFound = errors.New("rental not found")

// Repository handles all rental-ledger database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new rentals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create opens a ledger row for the given user and book.
func (r *Repository) Create(userID, bookID uint, rentalDate time.Time) (*entities.Rental, error) {
	rental := &entities.Rental{
		UserID:     userID,
		BookID:     bookID,
		RentalDate: rentalDate,
	}
	if err := r.db.Create(rental).Error; err != nil {
		return nil, err
	}
	return rental, nil
}

// GetByUserAndBook returns the first open rental for the pair.
func (r *Repository) GetByUserAndBook(userID, bookID uint) (*entities.Rental, error) {
	var rental entities.Rental
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("id").First(&rental).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rental, nil
}

// GetByBook returns the first open rental for the book, if any.
func (r *Repository) GetByBook(bookID uint) (*entities.Rental, error) {
	var rental entities.Rental
	err := r.db.Where("book_id = ?", bookID).Order("id").First(&rental).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rental, nil
}

// GetAll returns every open rental with its user and book preloaded.
func (r *Repository) GetAll() ([]entities.Rental, error) {
	var rentals []entities.Rental
	err := r.db.Preload("User").Preload("Book").Order("id").Find(&rentals).Error
	return rentals, err
}

// Delete closes a ledger row.
func (r *Repository) Delete(rentalID uint) error {
	result := r.db.Delete(&entities.Rental{}, rentalID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
