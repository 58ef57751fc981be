package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const maxRetryDelay = 30 * time.Second

var ErrUnknownDestination = errors.New("unknown destination")

// errInterrupted means the message was never attempted because ctx ran out while pacing.
var errInterrupted = errors.New("delivery interrupted")

type WorkerOptions struct {
	SendInterval time.Duration
	MaxRetries   int
	DrainTimeout time.Duration
}

type WorkerStats struct {
	Delivered   int64 `json:"delivered"`
	Failed      int64 `json:"failed"`
	Retried     int64 `json:"retried"`
	Undelivered int64 `json:"undelivered"`
	Pending     int   `json:"pending"`
}

// Worker is the single consumer of the queue. It paces every send attempt and
// delivers messages in the order they were enqueued.
type Worker struct {
	queue        *Queue
	registry     *Registry
	limiter      *rate.Limiter
	maxRetries   int
	drainTimeout time.Duration
	sleep        func(ctx context.Context, d time.Duration) error

	delivered   atomic.Int64
	failed      atomic.Int64
	retried     atomic.Int64
	undelivered atomic.Int64
}

func NewWorker(queue *Queue, registry *Registry, opts WorkerOptions) *Worker {
	return &Worker{
		queue:        queue,
		registry:     registry,
		limiter:      rate.NewLimiter(rate.Every(opts.SendInterval), 1),
		maxRetries:   opts.MaxRetries,
		drainTimeout: opts.DrainTimeout,
		sleep:        sleepContext,
	}
}

// Run delivers messages until ctx is cancelled, then drains the queue within the drain timeout.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("Delivery worker started", "destinations", w.registry.Len())

	for {
		if ctx.Err() != nil {
			return w.drain()
		}

		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) {
				slog.Info("Delivery queue closed, worker stopped")
				return nil
			}
			return w.drain()
		}

		// Sends are not interrupted by shutdown; the next loop iteration starts the drain.
		w.deliver(context.WithoutCancel(ctx), msg)
	}
}

func (w *Worker) drain() error {
	w.queue.Close()

	pending := w.queue.Len()
	if pending == 0 {
		slog.Info("Delivery worker stopped")
		return nil
	}

	slog.Info("Draining delivery queue", "pending", pending, "timeout", w.drainTimeout.String())

	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for {
		msg, ok := w.queue.TryDequeue()
		if !ok {
			slog.Info("Delivery queue drained")
			return nil
		}
		if err := w.deliver(ctx, msg); errors.Is(err, errInterrupted) {
			left := int64(w.queue.Len()) + 1
			w.undelivered.Add(left)
			slog.Warn("Drain timeout reached, messages left undelivered", "count", left)
			return nil
		}
	}
}

// deliver sends msg with pacing and optional retries. Failures are counted and logged here;
// errInterrupted is returned uncounted so the caller can report the message as undelivered.
func (w *Worker) deliver(ctx context.Context, msg Message) error {
	dest, ok := w.registry.Get(msg.DestinationID)
	if !ok {
		w.failed.Add(1)
		slog.Error("Message dropped", "id", msg.ID, "destination", msg.DestinationID, "error", ErrUnknownDestination)
		return ErrUnknownDestination
	}

	for attempt := 0; ; attempt++ {
		if err := w.limiter.Wait(ctx); err != nil {
			if attempt == 0 {
				return errInterrupted
			}
			w.failed.Add(1)
			slog.Error("Message delivery retry aborted", "id", msg.ID, "destination", msg.DestinationID, "error", err)
			return err
		}

		err := w.send(ctx, dest, msg)
		if err == nil {
			w.delivered.Add(1)
			slog.Info("Message delivered", "id", msg.ID, "destination", msg.DestinationID, "transport", dest.Transport(), "link", msg.Link)
			return nil
		}

		if attempt >= w.maxRetries || !retryable(err) || ctx.Err() != nil {
			w.failed.Add(1)
			slog.Error("Message delivery failed", "id", msg.ID, "destination", msg.DestinationID, "transport", dest.Transport(), "attempts", attempt+1, "error", err)
			return err
		}

		delay := retryDelay(attempt+1, err)
		w.retried.Add(1)
		slog.Warn("Message delivery retry scheduled", "id", msg.ID, "destination", msg.DestinationID, "retry_count", attempt+1, "max_retries", w.maxRetries, "delay", delay.String(), "error", err)

		if err := w.sleep(ctx, delay); err != nil {
			w.failed.Add(1)
			slog.Error("Message delivery retry aborted", "id", msg.ID, "destination", msg.DestinationID, "error", err)
			return err
		}
	}
}

func (w *Worker) send(ctx context.Context, dest Destination, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport %s panicked: %v", dest.Transport(), r)
		}
	}()
	return dest.Send(ctx, msg)
}

func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Delivered:   w.delivered.Load(),
		Failed:      w.failed.Load(),
		Retried:     w.retried.Load(),
		Undelivered: w.undelivered.Load(),
		Pending:     w.queue.Len(),
	}
}

// retryDelay doubles from one second up to maxRetryDelay, raised to the server's retry_after hint.
func retryDelay(retryCount int, err error) time.Duration {
	delay := maxRetryDelay
	if retryCount <= 5 {
		delay = time.Duration(1<<uint(retryCount-1)) * time.Second
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) && sendErr.RetryAfter > delay {
		delay = sendErr.RetryAfter
	}
	return delay
}

func retryable(err error) bool {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Temporary()
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
