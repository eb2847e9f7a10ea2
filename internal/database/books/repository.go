// Package books provides database operations for the book catalog.
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/libtrary/libtrary/internal/entities"
)

// ErrNotFound is returned when no matching book exists.
var ErrNotFound = errors.New("book not found")

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a single book. New books start as available unless the
// caller says otherwise.
func (r *Repository) Create(book *entities.Book) error {
	if book.RentalStatus == "" {
		book.RentalStatus = entities.RentalStatusAvailable
	}
	return r.db.Create(book).Error
}

// CreateBatch persists books one by one and returns how many were created.
// A failed row does not abort the rest of the batch.
func (r *Repository) CreateBatch(books []entities.Book) (int, error) {
	created := 0
	for i := range books {
		if err := r.Create(&books[i]); err != nil {
			continue
		}
		created++
	}
	return created, nil
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// GetAll returns the entire catalog.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id").Find(&books).Error
	return books, err
}

// Search returns books whose authors and/or title contain the given
// substrings, case-insensitively. Empty filters are ignored; no filters
// returns the full catalog.
func (r *Repository) Search(author, title string) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{}).Order("id")
	if author != "" {
		query = query.Where("LOWER(authors) LIKE ?", "%"+strings.ToLower(author)+"%")
	}
	if title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, err
}

// SetRentalStatus updates a book's rental-status flag.
func (r *Repository) SetRentalStatus(bookID uint, status entities.RentalStatus) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", bookID).Update("rental_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
