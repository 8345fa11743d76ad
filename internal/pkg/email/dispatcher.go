package email

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher errors
var (
	ErrQueueFull        = errors.New("email queue is full")
	ErrDispatcherClosed = errors.New("email dispatcher is stopped")
)

// stopGrace bounds how long Stop waits for workers once its deadline passed
const stopGrace = time.Second

// DispatcherConfig sizes the worker pool and retry policy
type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	SendTimeout    time.Duration
}

// Stats counts delivery outcomes since start
type Stats struct {
	Queued  int64 `json:"queued"`
	Sent    int64 `json:"sent"`
	Retried int64 `json:"retried"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// Dispatcher delivers messages in the background through a bounded queue.
// Each message is retried with exponential backoff. Messages that exhaust
// their attempts are counted, logged and passed to the failure hook.
type Dispatcher struct {
	sender Sender
	config DispatcherConfig
	logger zerolog.Logger

	queue    chan Message
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// sendCtx parents every send and is cancelled when Stop gives up
	sendCtx     context.Context
	cancelSends context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	started bool

	onFailure func(Message, error)

	queued, sent, retried, failed, dropped atomic.Int64
}

// NewDispatcher creates a stopped dispatcher; call Start to run workers
func NewDispatcher(sender Sender, config DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 1
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = 30 * time.Second
	}
	sendCtx, cancelSends := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:      sender,
		config:      config,
		logger:      logger.With().Str("component", "email_dispatcher").Logger(),
		queue:       make(chan Message, config.QueueSize),
		stop:        make(chan struct{}),
		sendCtx:     sendCtx,
		cancelSends: cancelSends,
	}
}

// OnFailure registers a hook called once per message that could not be delivered
func (d *Dispatcher) OnFailure(fn func(Message, error)) {
	d.onFailure = fn
}

// Start launches the workers. It is a no-op after the first call.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	d.logger.Info().Int("workers", d.config.Workers).Int("queueSize", d.config.QueueSize).Msg("Email dispatcher started")
}

// Enqueue schedules msg without blocking
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- msg:
		d.queued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		d.logger.Error().Str("kind", string(msg.Kind)).Str("to", msg.To).Msg("Email queue full, message dropped")
		return ErrQueueFull
	}
}

// Stop refuses new messages and waits for queued ones to drain. When ctx
// ends first, the send in progress is cancelled, retries are abandoned,
// messages still queued are counted as dropped and ctx.Err() is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancelSends()
		d.logger.Info().Interface("stats", d.Stats()).Msg("Email dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.stopOnce.Do(func() {
			close(d.stop)
			d.cancelSends()
		})
		select {
		case <-done:
		case <-time.After(stopGrace):
			d.logger.Warn().Msg("Email sender ignored cancellation, not waiting for it")
		}
		d.logger.Warn().Interface("stats", d.Stats()).Msg("Email dispatcher stopped before the queue drained")
		return ctx.Err()
	}
}

// Stats returns a snapshot of the counters
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:  d.queued.Load(),
		Sent:    d.sent.Load(),
		Retried: d.retried.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		if d.stopping() {
			d.dropped.Add(1)
			continue
		}
		d.deliver(msg)
	}
}

func (d *Dispatcher) stopping() bool {
	select {
	case <-d.stop:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) deliver(msg Message) {
	var err error
	for attempt := 1; attempt <= d.config.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(d.sendCtx, d.config.SendTimeout)
		err = d.sender.Send(ctx, msg)
		cancel()
		if err == nil {
			d.sent.Add(1)
			return
		}

		if attempt == d.config.MaxAttempts || d.stopping() {
			break
		}
		delay := d.backoff(attempt)
		d.retried.Add(1)
		d.logger.Warn().Err(err).
			Str("kind", string(msg.Kind)).
			Str("to", msg.To).
			Int("attempt", attempt).
			Dur("retryIn", delay).
			Msg("Email delivery failed, retrying")

		select {
		case <-time.After(delay):
		case <-d.stop:
			attempt = d.config.MaxAttempts
		}
	}

	d.failed.Add(1)
	d.logger.Error().Err(err).
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Msg("Email delivery failed permanently")
	if d.onFailure != nil {
		d.onFailure(msg, err)
	}
}

// backoff doubles the base delay per attempt, capped at one minute
func (d *Dispatcher) backoff(attempt int) time.Duration {
	if d.config.RetryBaseDelay <= 0 {
		return 0
	}
	delay := d.config.RetryBaseDelay << (attempt - 1)
	if delay <= 0 || delay > time.Minute {
		delay = time.Minute
	}
	return delay
}
