package entities

import (
	"time"
)

type RentalStatus string

const (
	RentalStatusAvailable RentalStatus = "available"
	RentalStatusBorrowed  RentalStatus = "borrowed"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:100" json:"email"`
	Password  string    `gorm:"size:128" json:"-"` // bcrypt hash, hidden from JSON
	IsActive  bool      `gorm:"default:false" json:"is_active"`
	IsStaff   bool      `gorm:"default:false" json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Book struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	ISBN            string       `gorm:"index;size:20" json:"isbn"`
	Authors         string       `gorm:"index;size:255" json:"authors"`
	PublicationYear int          `json:"publication_year"`
	Title           string       `gorm:"index;size:255" json:"title"`
	Language        string       `gorm:"size:20" json:"language"`
	RentalStatus    RentalStatus `gorm:"size:20;default:'available'" json:"rental_status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type Wishlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Books     []Book    `gorm:"many2many:wishlist_books;" json:"books,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Rental is one open ledger row. It exists only while the book is
// borrowed; returning the book deletes it.
type Rental struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	BookID     uint      `gorm:"index" json:"book_id"`
	RentalDate time.Time `json:"rental_date"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Book       Book      `gorm:"foreignKey:BookID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Wishlist) TableName() string {
	return "wishlists"
}

func (Rental) TableName() string {
	return "rentals"
}
