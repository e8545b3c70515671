package watchdog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
)

// State is the watchdog lifecycle. Probing either settles back to
// Idle or escalates through Watching to a single Reloading.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateHealthy
	StateWatching
	StateReloading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateHealthy:
		return "healthy"
	case StateWatching:
		return "watching"
	case StateReloading:
		return "reloading"
	}
	return "unknown"
}

// ProbeFunc checks one endpoint, retrying internally per config. A nil
// error means the endpoint is healthy.
type ProbeFunc func(ctx context.Context, endpoint string) error

// Notifier surfaces the status banner.
type Notifier interface {
	ShowStatus(msg string)
	ClearStatus()
}

// Reloader performs the last-resort full reload; marker is a
// cache-busting uniqueness token appended to the current location.
type Reloader interface {
	Reload(marker string)
}

// Config bounds the probing loop.
type Config struct {
	Endpoints      []string
	AttemptTimeout time.Duration // per attempt, enforced via cancellation
	ProbeRetries   int           // retries per probe within one round
	BackoffBase    time.Duration // doubles per attempt
	BackoffCap     time.Duration
	Budget         time.Duration // total elapsed-time budget for Watching
}

// DefaultConfig matches the production bridge endpoints and timings.
func DefaultConfig(endpoints []string) Config {
	return Config{
		Endpoints:      endpoints,
		AttemptTimeout: 3 * time.Second,
		ProbeRetries:   3,
		BackoffBase:    500 * time.Millisecond,
		BackoffCap:     4 * time.Second,
		Budget:         20 * time.Second,
	}
}

// Watchdog polls the critical local endpoints and escalates from a
// status banner to a single hard reload when the bridge stays dead.
type Watchdog struct {
	cfg      Config
	probe    ProbeFunc
	notifier Notifier
	reloader Reloader

	mu    sync.Mutex
	state State

	reloadOnce sync.Once
}

// New builds a watchdog. A nil probe uses the retryablehttp prober.
func New(cfg Config, probe ProbeFunc, notifier Notifier, reloader Reloader) *Watchdog {
	if probe == nil {
		probe = newRetryProbe(cfg)
	}
	return &Watchdog{cfg: cfg, probe: probe, notifier: notifier, reloader: reloader, state: StateIdle}
}

// State returns the current lifecycle state.
func (w *Watchdog) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watchdog) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Check runs the startup round: one bounded probe per endpoint in
// parallel. All healthy settles to Idle; any failure enters the
// watching loop.
func (w *Watchdog) Check(ctx context.Context) {
	w.setState(StateProbing)
	if w.allHealthy(ctx) {
		w.setState(StateIdle)
		return
	}
	w.watch(ctx)
}

// OnNetworkChange re-triggers probing on connectivity transitions.
// Offline shows a distinct banner without probing.
func (w *Watchdog) OnNetworkChange(ctx context.Context, online bool) {
	if !online {
		w.notifier.ShowStatus("offline, waiting for network")
		return
	}
	w.notifier.ClearStatus()
	go w.Check(ctx)
}

// watch re-probes under the total budget and reloads exactly once if
// it is exhausted without a single healthy endpoint.
func (w *Watchdog) watch(ctx context.Context) {
	w.setState(StateWatching)
	w.notifier.ShowStatus("bridge unavailable, reconnecting")

	deadline := time.Now().Add(w.cfg.Budget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		if w.anyHealthy(ctx) {
			ilog.L().Info().Msg("bridge recovered")
			w.notifier.ClearStatus()
			w.setState(StateHealthy)
			return
		}
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			break
		}
		// Pace the rounds; a fast-failing probe must not hot-spin the
		// remaining budget away.
		select {
		case <-ctx.Done():
		case <-time.After(w.cfg.BackoffBase):
		}
	}

	// Last resort: a single, non-repeating cache-busting reload.
	w.reloadOnce.Do(func() {
		w.setState(StateReloading)
		marker := uuid.NewString()
		ilog.L().Warn().Str("marker", marker).Msg("bridge unhealthy past budget, forcing reload")
		w.reloader.Reload(marker)
	})
}

// allHealthy probes every endpoint in parallel; true only when all
// report healthy.
func (w *Watchdog) allHealthy(ctx context.Context) bool {
	results := w.probeAll(ctx)
	for range w.cfg.Endpoints {
		if err := <-results; err != nil {
			return false
		}
	}
	return true
}

// anyHealthy probes every endpoint in parallel and returns the moment
// one reports healthy. Outstanding probes are discarded, not
// cancelled; the leak is bounded by the per-attempt timeout.
func (w *Watchdog) anyHealthy(ctx context.Context) bool {
	results := w.probeAll(ctx)
	healthy := false
	for range w.cfg.Endpoints {
		if err := <-results; err == nil {
			healthy = true
			break
		}
	}
	return healthy
}

func (w *Watchdog) probeAll(ctx context.Context) <-chan error {
	results := make(chan error, len(w.cfg.Endpoints))
	for _, ep := range w.cfg.Endpoints {
		ep := ep
		go func() {
			cctx, cancel := context.WithTimeout(ctx, w.roundTimeout())
			defer cancel()
			err := w.probe(cctx, ep)
			if err != nil {
				ilog.L().Debug().Err(err).Str("endpoint", ep).Msg("probe failed")
			}
			results <- err
		}()
	}
	return results
}

// roundTimeout bounds one probe round: every attempt plus the backoff
// between attempts.
func (w *Watchdog) roundTimeout() time.Duration {
	total := w.cfg.AttemptTimeout * time.Duration(w.cfg.ProbeRetries+1)
	backoff := w.cfg.BackoffBase
	for i := 0; i < w.cfg.ProbeRetries; i++ {
		if backoff > w.cfg.BackoffCap {
			backoff = w.cfg.BackoffCap
		}
		total += backoff
		backoff *= 2
	}
	return total
}
