package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Outcome records per-channel delivery success for one dispatch. Disabled
// channels appear as false without their sender having run.
type Outcome map[string]bool

// AnyDelivered reports whether at least one channel succeeded.
func (o Outcome) AnyDelivered() bool {
	for _, ok := range o {
		if ok {
			return true
		}
	}
	return false
}

// Dispatcher fans a notification out to all enabled channels concurrently.
// The desktop toast is cheap and local while the push API crosses the
// network; running them serially would make the fast channel wait on the
// slow one, so each sender gets its own goroutine and its own deadline.
type Dispatcher struct {
	senders        []Sender
	channelTimeout time.Duration
}

// NewDispatcher creates a Dispatcher over the given senders. channelTimeout
// is the per-channel ceiling; senders carry their own shorter timeouts.
func NewDispatcher(channelTimeout time.Duration, senders ...Sender) *Dispatcher {
	if channelTimeout <= 0 {
		channelTimeout = 15 * time.Second
	}
	return &Dispatcher{senders: senders, channelTimeout: channelTimeout}
}

// Dispatch attempts delivery on every channel not disabled for the request's
// working directory and returns the per-channel outcome. It never fails: the
// worst case is an outcome where every channel is false.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	outcome := make(Outcome, len(d.senders))

	var enabled []Sender
	for _, s := range d.senders {
		if Disabled(req.WorkingDir, s.Name()) {
			outcome[s.Name()] = false
			continue
		}
		enabled = append(enabled, s)
	}

	if len(enabled) == 0 {
		slog.Info("all channels disabled, skipping dispatch", "title", req.Title)
		return outcome
	}

	// One result slot per channel; each goroutine writes only its own index.
	results := make([]bool, len(enabled))

	var wg sync.WaitGroup
	for i, s := range enabled {
		wg.Add(1)
		go func(i int, s Sender) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, d.channelTimeout)
			defer cancel()

			// Senders are trusted to honor ctx, but a hung one must not stall
			// the other channels past the ceiling; it is abandoned mid-flight.
			done := make(chan bool, 1)
			go func() { done <- s.Send(cctx, req) }()

			select {
			case ok := <-done:
				results[i] = ok
			case <-cctx.Done():
				slog.Warn("channel exceeded dispatch ceiling",
					"channel", s.Name(),
					"timeout", d.channelTimeout)
			}
		}(i, s)
	}
	wg.Wait()

	for i, s := range enabled {
		outcome[s.Name()] = results[i]
	}

	slog.Info("dispatch completed", "title", req.Title, "outcome", map[string]bool(outcome))
	return outcome
}
