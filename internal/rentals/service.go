// Package rentals implements the rental lifecycle: a book moves between
// available and borrowed, the ledger holds one row per open rental, and the
// due date is always derived from the rental date rather than stored.
package rentals

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/libtrary/libtrary/internal/database/books"
	rentalstore "github.com/libtrary/libtrary/internal/database/rentals"
	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/database/wishlists"
	"github.com/libtrary/libtrary/internal/entities"
)

// ErrBookUnavailable is returned when renting a book that is already borrowed.
var ErrBookUnavailable = errors.New("book is not available for rental")

// Notifier schedules an email for delivery after the current request.
type Notifier interface {
	Notify(subject, body, to string) error
}

// Service coordinates the ledger, the catalog status flag and the
// notifications the lifecycle produces.
type Service struct {
	users     *users.Repository
	books     *books.Repository
	ledger    *rentalstore.Repository
	wishlists *wishlists.Repository
	notifier  Notifier
	dueDays   int

	now func() time.Time
}

// NewService creates a rental service.
func NewService(
	userRepo *users.Repository,
	bookRepo *books.Repository,
	ledger *rentalstore.Repository,
	wishlistRepo *wishlists.Repository,
	notifier Notifier,
	dueDays int,
) *Service {
	return &Service{
		users:     userRepo,
		books:     bookRepo,
		ledger:    ledger,
		wishlists: wishlistRepo,
		notifier:  notifier,
		dueDays:   dueDays,
		now:       time.Now,
	}
}

// Rent opens a ledger row for the pair, marks the book borrowed and
// schedules a confirmation email with the computed due date.
func (s *Service) Rent(userID, bookID uint) (*entities.Rental, time.Time, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	book, err := s.books.GetByID(bookID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if book.RentalStatus == entities.RentalStatusBorrowed {
		return nil, time.Time{}, ErrBookUnavailable
	}

	rental, err := s.ledger.Create(userID, bookID, s.now())
	if err != nil {
		return nil, time.Time{}, err
	}
	if err := s.books.SetRentalStatus(bookID, entities.RentalStatusBorrowed); err != nil {
		return nil, time.Time{}, err
	}

	dueDate := s.dueDate(rental.RentalDate)
	s.send(
		"Book rental confirmation",
		fmt.Sprintf("You have rented %q. It is due back on %s.", book.Title, dueDate.Format("2006-01-02")),
		user.Email,
	)
	return rental, dueDate, nil
}

// Return closes the first matching ledger row, marks the book available and
// schedules one availability notice per distinct user wishing for it.
func (s *Service) Return(userID, bookID uint) error {
	rental, err := s.ledger.GetByUserAndBook(userID, bookID)
	if err != nil {
		return err
	}
	if err := s.ledger.Delete(rental.ID); err != nil {
		return err
	}
	if err := s.books.SetRentalStatus(bookID, entities.RentalStatusAvailable); err != nil {
		return err
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		return err
	}

	emails, err := s.wishlists.EmailsWishingBook(bookID)
	if err != nil {
		return err
	}
	for _, email := range emails {
		s.send(
			"Book available",
			fmt.Sprintf("The book %q from your wishlist is now available.", book.Title),
			email,
		)
	}
	return nil
}

// Extend recomputes the due date from the existing rental date and announces
// it by email. The ledger itself is not changed, so repeated calls announce
// the same date.
func (s *Service) Extend(userID, bookID uint) (time.Time, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return time.Time{}, err
	}
	book, err := s.books.GetByID(bookID)
	if err != nil {
		return time.Time{}, err
	}

	rental, err := s.ledger.GetByUserAndBook(userID, bookID)
	if err != nil {
		return time.Time{}, err
	}

	newDueDate := s.dueDate(rental.RentalDate)
	s.send(
		"Rental extended",
		fmt.Sprintf("Your rental of %q has been extended. New due date: %s.", book.Title, newDueDate.Format("2006-01-02")),
		user.Email,
	)
	return newDueDate, nil
}

// ReportEntry is one book's row in the rental status report.
type ReportEntry struct {
	BookID       uint                  `json:"book_id"`
	Title        string                `json:"title"`
	RentalStatus entities.RentalStatus `json:"rental_status"`
	Rentee       string                `json:"rentee,omitempty"`
	RentedOn     *time.Time            `json:"rented_on,omitempty"`
	DueDate      *time.Time            `json:"due_date,omitempty"`
	PastDueDays  int                   `json:"past_due_days"`
}

// Report lists every book with its first open rental, the derived due date
// and how many whole days it is past due (zero when not overdue).
func (s *Service) Report() ([]ReportEntry, error) {
	allBooks, err := s.books.GetAll()
	if err != nil {
		return nil, err
	}
	allRentals, err := s.ledger.GetAll()
	if err != nil {
		return nil, err
	}

	// First open rental per book; GetAll orders by id.
	firstRental := make(map[uint]*entities.Rental)
	for i := range allRentals {
		rental := &allRentals[i]
		if _, seen := firstRental[rental.BookID]; !seen {
			firstRental[rental.BookID] = rental
		}
	}

	entries := make([]ReportEntry, 0, len(allBooks))
	for _, book := range allBooks {
		entry := ReportEntry{
			BookID:       book.ID,
			Title:        book.Title,
			RentalStatus: book.RentalStatus,
		}
		if rental, ok := firstRental[book.ID]; ok {
			rentedOn := rental.RentalDate
			dueDate := s.dueDate(rentedOn)
			entry.Rentee = rental.User.Username
			entry.RentedOn = &rentedOn
			entry.DueDate = &dueDate
			entry.PastDueDays = s.pastDueDays(dueDate)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) dueDate(rentalDate time.Time) time.Time {
	return rentalDate.AddDate(0, 0, s.dueDays)
}

func (s *Service) pastDueDays(dueDate time.Time) int {
	days := int(s.now().Sub(dueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (s *Service) send(subject, body, to string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(subject, body, to); err != nil {
		log.Printf("Failed to schedule email %q to %s: %v", subject, to, err)
	}
}
