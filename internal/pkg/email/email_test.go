package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// MockSender is a func-field Sender for tests
type MockSender struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, msg Message) error
	sent     []Message
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	fn := m.SendFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, msg)
	}
	return nil
}

func (m *MockSender) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func testConfig() DispatcherConfig {
	return DispatcherConfig{Workers: 1, QueueSize: 4, MaxAttempts: 3, RetryBaseDelay: time.Millisecond, SendTimeout: time.Second}
}

func TestDispatcher_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	sender := &MockSender{SendFunc: func(ctx context.Context, msg Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("smtp down")
		}
		return nil
	}}
	d := NewDispatcher(sender, testConfig(), zerolog.Nop())
	d.Start()

	if err := d.Enqueue(Message{Kind: KindWelcome, To: "a@example.com"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	stats := d.Stats()
	if stats.Sent != 1 || stats.Retried != 2 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDispatcher_ExhaustedAttemptsReportFailure(t *testing.T) {
	sender := &MockSender{SendFunc: func(ctx context.Context, msg Message) error { return errors.New("rejected") }}
	d := NewDispatcher(sender, testConfig(), zerolog.Nop())

	var failedKinds []Kind
	d.OnFailure(func(m Message, err error) { failedKinds = append(failedKinds, m.Kind) })
	d.Start()

	_ = d.Enqueue(Message{Kind: KindPaymentConfirmation, To: "a@example.com"})
	_ = d.Stop(context.Background())

	if sender.calls() != 3 {
		t.Errorf("send attempts = %d, want 3", sender.calls())
	}
	if d.Stats().Failed != 1 || len(failedKinds) != 1 || failedKinds[0] != KindPaymentConfirmation {
		t.Errorf("failure not reported: stats=%+v hooks=%v", d.Stats(), failedKinds)
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	// Not started: nothing drains the queue
	d := NewDispatcher(&MockSender{}, DispatcherConfig{Workers: 1, QueueSize: 1, MaxAttempts: 1}, zerolog.Nop())

	if err := d.Enqueue(Message{To: "a@example.com"}); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if err := d.Enqueue(Message{To: "b@example.com"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second Enqueue err = %v, want ErrQueueFull", err)
	}
	if d.Stats().Dropped != 1 {
		t.Errorf("dropped = %d", d.Stats().Dropped)
	}
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(&MockSender{}, testConfig(), zerolog.Nop())
	d.Start()
	_ = d.Stop(context.Background())
	if err := d.Enqueue(Message{}); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("err = %v, want ErrDispatcherClosed", err)
	}
}

func TestDispatcher_StopDeadlineAbandonsRetries(t *testing.T) {
	cfg := testConfig()
	cfg.RetryBaseDelay = time.Hour
	sender := &MockSender{SendFunc: func(ctx context.Context, msg Message) error { return errors.New("down") }}
	d := NewDispatcher(sender, cfg, zerolog.Nop())
	d.Start()
	_ = d.Enqueue(Message{To: "a@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := d.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("Stop did not abandon backoff")
	}
	if d.Stats().Failed != 1 {
		t.Errorf("failed = %d, want 1", d.Stats().Failed)
	}
}

func TestDispatcher_StopDeadlineCancelsSendsAndDropsQueue(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 8
	cfg.SendTimeout = time.Hour
	sender := &MockSender{SendFunc: func(ctx context.Context, msg Message) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	d := NewDispatcher(sender, cfg, zerolog.Nop())
	d.Start()
	for i := 0; i < 6; i++ {
		if err := d.Enqueue(Message{To: "a@example.com"}); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := d.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > stopGrace+500*time.Millisecond {
		t.Fatalf("Stop took %v after a 50ms deadline", elapsed)
	}

	stats := d.Stats()
	if sender.calls() != 1 {
		t.Errorf("sender called %d times, want 1", sender.calls())
	}
	if stats.Failed != 1 || stats.Dropped != 5 {
		t.Errorf("stats = %+v, want 1 failed and 5 dropped", stats)
	}
}

type recordingQueue struct{ msgs []Message }

func (q *recordingQueue) Enqueue(msg Message) error {
	q.msgs = append(q.msgs, msg)
	return nil
}

func TestNotifier_PasswordResetLink(t *testing.T) {
	q := &recordingQueue{}
	n := NewNotifier(q, NotifierConfig{AppName: "Skillspad", FrontendURL: "https://app.example.com/"})

	if err := n.SendPasswordReset(context.Background(), "alice+1@example.com", "Alice", "tok-123"); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}
	if len(q.msgs) != 1 {
		t.Fatalf("queued = %d", len(q.msgs))
	}
	msg := q.msgs[0]
	if msg.Kind != KindPasswordReset || msg.To != "alice+1@example.com" {
		t.Errorf("msg = %+v", msg)
	}
	if !strings.Contains(msg.HTML, "https://app.example.com/reset-password?email=alice%2B1%40example.com&amp;token=tok-123") {
		t.Errorf("reset link missing from body:\n%s", msg.HTML)
	}
	if msg.Subject != "Reset your Skillspad password" {
		t.Errorf("subject = %q", msg.Subject)
	}
}

func TestRender_EscapesUserInput(t *testing.T) {
	msg, err := Render(KindWelcome, "a@example.com", "Skillspad", WelcomeData{AppName: "Skillspad", Name: "<script>x</script>"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("name was not escaped")
	}
}

func TestRender_UnknownKind(t *testing.T) {
	if _, err := Render(Kind("nope"), "a@example.com", "x", nil); err == nil {
		t.Fatal("expected error")
	}
}
