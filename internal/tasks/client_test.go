package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// recordingMailer captures sent emails for assertions.
type recordingMailer struct {
	mu   sync.Mutex
	sent []SendEmailTask
	err  error
	done chan struct{}
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{done: make(chan struct{}, 8)}
}

func (m *recordingMailer) Send(subject, body, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SendEmailTask{Subject: subject, Body: body, To: to})
	m.done <- struct{}{}
	return nil
}

func TestSendEmailDelivery(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	recorder := newRecordingMailer()
	client.Register(NewSendEmailQueue(recorder))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	enqueuer := NewEmailEnqueuer(client)
	err = enqueuer.Notify("Book rental confirmation", "Due back soon.", "reader@example.com")
	require.NoError(t, err)

	select {
	case <-recorder.done:
	case <-time.After(5 * time.Second):
		t.Fatal("email task was not processed within timeout")
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.sent, 1)
	assert.Equal(t, "Book rental confirmation", recorder.sent[0].Subject)
	assert.Equal(t, "reader@example.com", recorder.sent[0].To)
}

func TestSendEmailProcessor_NilMailer(t *testing.T) {
	processor := SendEmailProcessor(nil)

	err := processor(context.Background(), SendEmailTask{To: "reader@example.com"})

	assert.Error(t, err)
}

func TestSendEmailProcessor_SendFailure(t *testing.T) {
	recorder := newRecordingMailer()
	recorder.err = errors.New("smtp unreachable")
	processor := SendEmailProcessor(recorder)

	err := processor(context.Background(), SendEmailTask{To: "reader@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reader@example.com")
}

func TestSendEmailTaskConfig(t *testing.T) {
	task := SendEmailTask{Subject: "s", Body: "b", To: "reader@example.com"}
	cfg := task.Config()

	assert.Equal(t, "send_email", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Backoff)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
