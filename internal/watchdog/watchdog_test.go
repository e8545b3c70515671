package watchdog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeNotifier struct {
	mu      sync.Mutex
	shown   []string
	cleared int
}

func (n *fakeNotifier) ShowStatus(msg string) {
	n.mu.Lock()
	n.shown = append(n.shown, msg)
	n.mu.Unlock()
}

func (n *fakeNotifier) ClearStatus() {
	n.mu.Lock()
	n.cleared++
	n.mu.Unlock()
}

type fakeReloader struct {
	count atomic.Int32
	last  atomic.Value
}

func (r *fakeReloader) Reload(marker string) {
	r.count.Add(1)
	r.last.Store(marker)
}

func fastConfig(endpoints ...string) Config {
	return Config{
		Endpoints:      endpoints,
		AttemptTimeout: 20 * time.Millisecond,
		ProbeRetries:   0,
		BackoffBase:    time.Millisecond,
		BackoffCap:     2 * time.Millisecond,
		Budget:         80 * time.Millisecond,
	}
}

func TestWatchdogAllHealthy(t *testing.T) {
	notifier := &fakeNotifier{}
	reloader := &fakeReloader{}
	healthy := func(context.Context, string) error { return nil }

	dog := New(fastConfig("a", "b"), healthy, notifier, reloader)
	dog.Check(context.Background())

	assert.Equal(t, StateIdle, dog.State())
	assert.Zero(t, reloader.count.Load())
	assert.Empty(t, notifier.shown)
}

func TestWatchdogReloadsExactlyOnce(t *testing.T) {
	notifier := &fakeNotifier{}
	reloader := &fakeReloader{}
	dead := func(context.Context, string) error { return errors.New("connection refused") }

	dog := New(fastConfig("a"), dead, notifier, reloader)
	dog.Check(context.Background())

	assert.Equal(t, StateReloading, dog.State())
	assert.Equal(t, int32(1), reloader.count.Load())
	assert.NotEmpty(t, reloader.last.Load(), "reload must carry a cache-busting marker")
	assert.NotEmpty(t, notifier.shown)

	// A later failing round must never trigger a second reload.
	dog.Check(context.Background())
	assert.Equal(t, int32(1), reloader.count.Load())
}

func TestWatchdogPacesWatchRounds(t *testing.T) {
	notifier := &fakeNotifier{}
	reloader := &fakeReloader{}
	var calls atomic.Int32
	dead := func(context.Context, string) error {
		calls.Add(1)
		return errors.New("connection refused")
	}

	cfg := fastConfig("a")
	cfg.BackoffBase = 10 * time.Millisecond
	cfg.Budget = 100 * time.Millisecond
	dog := New(cfg, dead, notifier, reloader)
	dog.Check(context.Background())

	// One startup round plus at most budget/backoff watch rounds; a
	// hot-spinning loop would rack up thousands.
	assert.LessOrEqual(t, calls.Load(), int32(15))
	assert.Equal(t, int32(1), reloader.count.Load())
}

func TestWatchdogRecoversBeforeBudget(t *testing.T) {
	notifier := &fakeNotifier{}
	reloader := &fakeReloader{}
	var calls atomic.Int32
	flaky := func(context.Context, string) error {
		if calls.Add(1) <= 2 {
			return errors.New("not yet")
		}
		return nil
	}

	dog := New(fastConfig("a"), flaky, notifier, reloader)
	dog.Check(context.Background())

	assert.Equal(t, StateHealthy, dog.State())
	assert.Zero(t, reloader.count.Load())
	assert.NotEmpty(t, notifier.shown, "banner shows while degraded")
	assert.Equal(t, 1, notifier.cleared, "banner clears on recovery")
}

func TestWatchdogAnyEndpointRecovery(t *testing.T) {
	notifier := &fakeNotifier{}
	reloader := &fakeReloader{}
	// One endpoint stays dead; recovery needs only one healthy reply.
	probe := func(_ context.Context, endpoint string) error {
		if endpoint == "dead" {
			return errors.New("connection refused")
		}
		return nil
	}

	dog := New(fastConfig("dead", "alive"), probe, notifier, reloader)
	dog.Check(context.Background())

	assert.Equal(t, StateHealthy, dog.State())
	assert.Zero(t, reloader.count.Load())
}

func TestWatchdogOfflineBanner(t *testing.T) {
	notifier := &fakeNotifier{}
	reloader := &fakeReloader{}
	var probed atomic.Int32
	probe := func(context.Context, string) error {
		probed.Add(1)
		return nil
	}

	dog := New(fastConfig("a"), probe, notifier, reloader)
	dog.OnNetworkChange(context.Background(), false)

	assert.Equal(t, []string{"offline, waiting for network"}, notifier.shown)
	assert.Zero(t, probed.Load(), "offline must not probe")
}
