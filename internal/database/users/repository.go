// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/libtrary/libtrary/internal/entities"
)

// ErrNotFound is returned when no matching user exists.
var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user. The password must already be hashed.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsernameAndEmail retrieves a user matching both username and email.
func (r *Repository) GetByUsernameAndEmail(username, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ? AND email = ?", username, email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether any user already has the given email.
func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// SetActive marks the user's email as confirmed.
func (r *Repository) SetActive(user *entities.User) error {
	user.IsActive = true
	return r.db.Model(user).Update("is_active", true).Error
}

// SetStaff grants the user staff privileges.
func (r *Repository) SetStaff(user *entities.User) error {
	user.IsStaff = true
	return r.db.Model(user).Update("is_staff", true).Error
}
