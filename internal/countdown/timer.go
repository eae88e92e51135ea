package countdown

import (
	"context"
	"sync"
	"time"

	"storefront-merchandising-service/internal/clock"
	"storefront-merchandising-service/internal/domain"
)

// Timer owns at most one running countdown. Starting a new campaign cancels the previous one
// before the new one begins ticking, so two countdowns never emit concurrently.
type Timer struct {
	clock     clock.Clock
	newTicker clock.TickerFactory
	interval  time.Duration

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	campaignID int64
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTickerFactory replaces the time.Ticker based factory.
func WithTickerFactory(f clock.TickerFactory) TimerOption {
	return func(t *Timer) { t.newTicker = f }
}

// NewTimer creates a Timer ticking every interval. A non-positive interval defaults to one second.
func NewTimer(clk clock.Clock, interval time.Duration, opts ...TimerOption) *Timer {
	if clk == nil {
		clk = clock.Real{}
	}
	if interval <= 0 {
		interval = time.Second
	}
	t := &Timer{clock: clk, newTicker: clock.NewTicker, interval: interval}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start replaces any running countdown with one for campaign. emit receives the initial snapshot
// immediately and one snapshot per tick until the campaign expires or ctx is cancelled.
// emit runs on the timer goroutine and must not block.
// A nil campaign only stops the current countdown.
func (t *Timer) Start(ctx context.Context, campaign *domain.Campaign, emit func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	cd := ForCampaign(campaign, t.clock.Now())
	if cd == nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done, t.campaignID = cancel, done, campaign.ID

	emit(cd.Snapshot())
	if cd.Expired() {
		cancel()
		close(done)
		return
	}

	ticker := t.newTicker(t.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C():
				// A cancelled run may still observe one pending tick.
				if runCtx.Err() != nil {
					return
				}
				snap := cd.Tick(t.clock.Now())
				emit(snap)
				if snap.State == Expired {
					return
				}
			}
		}
	}()
}

// Stop cancels the running countdown, if any, and waits for its goroutine to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// CampaignID reports the campaign whose countdown is currently running.
func (t *Timer) CampaignID() (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return 0, false
	}
	select {
	case <-t.done:
		return 0, false
	default:
		return t.campaignID, true
	}
}

// Done is closed once the current countdown stops. It returns nil when nothing was started.
func (t *Timer) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Timer) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel, t.done, t.campaignID = nil, nil, 0
}
