package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/libtrary/libtrary/internal/mailer"
)

// SendEmailTask delivers one outbound email. Delivery is retried up to
// three times with a fixed delay; exhausted tasks are dropped without
// surfacing anything to the request that enqueued them.
type SendEmailTask struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	To      string `json:"to"`
}

// Config returns the queue configuration for email delivery tasks.
func (t SendEmailTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "send_email",
		MaxAttempts: 3,
		Backoff:     2 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendEmailProcessor creates a processor function for SendEmailTask.
func SendEmailProcessor(m mailer.Mailer) backlite.QueueProcessor[SendEmailTask] {
	return func(ctx context.Context, task SendEmailTask) error {
		if m == nil {
			return fmt.Errorf("mailer not configured")
		}
		if err := m.Send(task.Subject, task.Body, task.To); err != nil {
			return fmt.Errorf("send email to %s: %w", task.To, err)
		}
		log.Printf("[TASK] Sent email %q to %s", task.Subject, task.To)
		return nil
	}
}

// NewSendEmailQueue creates a backlite queue for email delivery tasks.
func NewSendEmailQueue(m mailer.Mailer) backlite.Queue {
	return backlite.NewQueue(SendEmailProcessor(m))
}

// EmailEnqueuer schedules email delivery through the task queue. Handlers
// enqueue and return immediately; workers drain the queue afterwards.
type EmailEnqueuer struct {
	client *Client
}

// NewEmailEnqueuer creates an enqueuer backed by the task client.
func NewEmailEnqueuer(client *Client) *EmailEnqueuer {
	return &EmailEnqueuer{client: client}
}

// Notify enqueues one email delivery task.
func (e *EmailEnqueuer) Notify(subject, body, to string) error {
	_, err := e.client.Add(SendEmailTask{Subject: subject, Body: body, To: to}).Save()
	return err
}
