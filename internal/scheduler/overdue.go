// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	rentalstore "github.com/libtrary/libtrary/internal/database/rentals"
)

// Notifier schedules an email for asynchronous delivery.
type Notifier interface {
	Notify(subject, body, to string) error
}

// OverdueNoticeScheduler periodically reminds renters about overdue books.
type OverdueNoticeScheduler struct {
	ledger   *rentalstore.Repository
	notifier Notifier
	schedule string
	dueDays  int

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueNoticeScheduler creates a scheduler instance.
func NewOverdueNoticeScheduler(ledger *rentalstore.Repository, notifier Notifier, schedule string, dueDays int) *OverdueNoticeScheduler {
	return &OverdueNoticeScheduler{
		ledger:   ledger,
		notifier: notifier,
		schedule: schedule,
		dueDays:  dueDays,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *OverdueNoticeScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule overdue notice job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Overdue notice scheduler: started with schedule '%s'", s.schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *OverdueNoticeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("Overdue notice scheduler: stopped")
}

func (s *OverdueNoticeScheduler) runOnce() {
	count, err := s.NotifyOverdue(time.Now())
	if err != nil {
		log.Printf("Overdue notice job failed: %v", err)
		return
	}
	log.Printf("Overdue notice job: %d reminder(s) scheduled", count)
}

// NotifyOverdue scans the open ledger and enqueues one reminder per rental
// whose due date lies before now. Returns the number of reminders enqueued.
func (s *OverdueNoticeScheduler) NotifyOverdue(now time.Time) (int, error) {
	rentals, err := s.ledger.GetAll()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, rental := range rentals {
		dueDate := rental.RentalDate.AddDate(0, 0, s.dueDays)
		if !now.After(dueDate) {
			continue
		}
		body := fmt.Sprintf(
			"Your rental of %q was due on %s. Please return it to the library.",
			rental.Book.Title, dueDate.Format("2006-01-02"),
		)
		if err := s.notifier.Notify("Overdue rental reminder", body, rental.User.Email); err != nil {
			log.Printf("Failed to schedule overdue reminder for %s: %v", rental.User.Email, err)
			continue
		}
		count++
	}
	return count, nil
}
