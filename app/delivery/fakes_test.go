package delivery

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeDestination struct {
	id        string
	transport string

	mu    sync.Mutex
	sent  []string
	times []time.Time
	errs  []error
	panic bool
}

func newFakeDestination(id string) *fakeDestination {
	return &fakeDestination{id: id, transport: "fake"}
}

func (f *fakeDestination) ID() string        { return f.id }
func (f *fakeDestination) Transport() string { return f.transport }

// Send fails with the queued errors first, then succeeds.
func (f *fakeDestination) Send(ctx context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panic {
		panic("boom")
	}

	f.times = append(f.times, time.Now())
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	f.sent = append(f.sent, msg.Text)
	return nil
}

func (f *fakeDestination) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeDestination) Attempts() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.times...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for condition")
}
