package main

import (
	"context"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/p2ppsr/metanet-desktop/internal/bridge"
	"github.com/p2ppsr/metanet-desktop/internal/bus"
	"github.com/p2ppsr/metanet-desktop/internal/config"
	"github.com/p2ppsr/metanet-desktop/internal/hostcmd"
	"github.com/p2ppsr/metanet-desktop/internal/hostsrv"
	"github.com/p2ppsr/metanet-desktop/internal/intercept"
	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/internal/storage"
	"github.com/p2ppsr/metanet-desktop/internal/wallet"
	"github.com/p2ppsr/metanet-desktop/internal/watchdog"
)

// App owns the bridge stack and its webview wiring: the loopback host
// server, the correlator with its claimants, outbound interception,
// and the health watchdog.
type App struct {
	cfg *config.Config
	ctx context.Context

	bus       *bus.Local
	store     *storage.Store
	status    *bridge.StatusBridge
	server    *hostsrv.Server
	patch     *intercept.Handle
	dog       *watchdog.Watchdog
	stopRelay func()
}

// NewApp prepares the shell; the stack starts in startup once the
// webview runtime context exists.
func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg, bus: bus.NewLocal()}
}

// newWallet returns the wallet engine the capability bridge dispatches
// to. The shell ships without one attached.
func newWallet() wallet.Interface {
	return wallet.Unimplemented{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	store, err := storage.Open(a.cfg.Sqlite.Dsn)
	if err != nil {
		ilog.L().Fatal().Err(err).Str("dsn", a.cfg.Sqlite.Dsn).Msg("open state store")
	}
	a.store = store

	// Outbound interception: every http.DefaultClient call flows
	// through the classifier, tunneled ones through the host proxy.
	proxy := hostcmd.NewProxy(a.cfg.Host.AllowedHosts)
	a.patch = intercept.NewHandle(nil, proxy)
	a.patch.Install()

	capability := bridge.NewCapabilityBridge(bridge.NewRouter(newWallet()))
	a.status = bridge.NewStatusBridge(store)
	// The status bridge owns its endpoints ahead of the capability
	// table so getNetwork and setNetwork share the persisted mode, and
	// takes everything unclaimed as the fallback.
	statusOwned := bridge.ClaimOnly(a.status, a.status.OwnedPaths()...)
	correlator := bridge.NewCorrelator(a.bus, a.status, statusOwned, capability)
	a.stopRelay = correlator.Start()

	// The webview observes outbound traffic through the mirror and
	// injects responses through the runtime event bridge. Responses are
	// deliberately not mirrored back out: the bus round trip would loop.
	a.bus.SetMirror(func(event, payload string) {
		switch event {
		case bus.EventHostRequest, bus.EventBridgeStatus:
			runtime.EventsEmit(ctx, event, payload)
		}
	})
	runtime.EventsOn(ctx, bus.EventBridgeResponse, func(data ...interface{}) {
		if len(data) == 0 {
			return
		}
		if payload, ok := data[0].(string); ok {
			a.bus.Emit(bus.EventBridgeResponse, payload)
		}
	})

	a.server = hostsrv.New(a.bus, a.cfg.Host.Listen, a.cfg.Version,
		time.Duration(a.cfg.Host.ReplyTimeoutMS)*time.Millisecond)
	if err := a.server.Start(); err != nil {
		ilog.L().Fatal().Err(err).Str("addr", a.cfg.Host.Listen).Msg("start host server")
	}

	a.dog = watchdog.New(a.watchdogConfig(), nil,
		&statusNotifier{bus: a.bus},
		&webviewReloader{ctx: ctx})
	go a.dog.Check(ctx)

	ilog.L().Info().Str("version", a.cfg.Version).Msg("desktop shell started")
}

func (a *App) shutdown(ctx context.Context) {
	if a.stopRelay != nil {
		a.stopRelay()
	}
	if a.server != nil {
		sctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.server.Shutdown(sctx); err != nil {
			ilog.L().Warn().Err(err).Msg("host server shutdown")
		}
	}
	if a.patch != nil {
		a.patch.Uninstall()
	}
}

// OnNetworkChange is called by the frontend on connectivity
// transitions (navigator online/offline events).
func (a *App) OnNetworkChange(online bool) {
	if a.dog == nil {
		return
	}
	a.dog.OnNetworkChange(a.ctx, online)
}

// SetExchangeRate records a fresh rate snapshot fetched by the
// frontend's rate poller.
func (a *App) SetExchangeRate(body string) error {
	if a.status == nil {
		return fmt.Errorf("bridge not started")
	}
	return a.status.SetExchangeRate(body)
}

func (a *App) watchdogConfig() watchdog.Config {
	w := a.cfg.Watchdog
	cfg := watchdog.DefaultConfig(w.Endpoints)
	if w.AttemptTimeoutMS > 0 {
		cfg.AttemptTimeout = time.Duration(w.AttemptTimeoutMS) * time.Millisecond
	}
	if w.ProbeRetries > 0 {
		cfg.ProbeRetries = w.ProbeRetries
	}
	if w.BackoffBaseMS > 0 {
		cfg.BackoffBase = time.Duration(w.BackoffBaseMS) * time.Millisecond
	}
	if w.BackoffCapMS > 0 {
		cfg.BackoffCap = time.Duration(w.BackoffCapMS) * time.Millisecond
	}
	if w.BudgetMS > 0 {
		cfg.Budget = time.Duration(w.BudgetMS) * time.Millisecond
	}
	return cfg
}

// statusNotifier surfaces watchdog banners as bridge-status events so
// both the webview (via the mirror) and local subscribers see them.
type statusNotifier struct {
	bus bus.Bus
}

func (n *statusNotifier) ShowStatus(msg string) {
	n.bus.Emit(bus.EventBridgeStatus, fmt.Sprintf(`{"status":"degraded","message":%q}`, msg))
}

func (n *statusNotifier) ClearStatus() {
	n.bus.Emit(bus.EventBridgeStatus, `{"status":"ok"}`)
}

// webviewReloader performs the hard reload with a cache-busting marker
// so stale bundles cannot survive the reload.
type webviewReloader struct {
	ctx context.Context
}

func (r *webviewReloader) Reload(marker string) {
	js := fmt.Sprintf(`window.location.replace(window.location.pathname + "?r=%s");`, marker)
	runtime.WindowExecJS(r.ctx, js)
}
