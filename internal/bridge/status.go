package bridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/internal/storage"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// Default TTLs for the two cache slots. The mode cache only shields the
// sqlite read on a hot path; one second of staleness is acceptable.
const (
	NetworkModeTTL  = time.Second
	ExchangeRateTTL = 5 * time.Minute
)

var errInvalidRate = errors.New("exchange rate payload is not valid JSON")

// StatusBridge is the always-on background claimant. It answers the
// bridge-internal status endpoints and, by design, replies 200 ok to
// anything it does not recognize: a 404 here would send the host side
// into retry storms over cosmetic probes.
type StatusBridge struct {
	store     *storage.Store
	modeCache *storage.CacheSlot[model.Network]
	rateCache *storage.CacheSlot[string]
	rateTTL   time.Duration
}

// NewStatusBridge wires the bridge over the persistent store.
func NewStatusBridge(store *storage.Store) *StatusBridge {
	return &StatusBridge{
		store:     store,
		modeCache: storage.NewCacheSlot[model.Network](NetworkModeTTL),
		rateCache: storage.NewCacheSlot[string](ExchangeRateTTL),
		rateTTL:   ExchangeRateTTL,
	}
}

// Claims accepts every path; the status bridge is the terminal
// claimant on the channel.
func (b *StatusBridge) Claims(string) bool { return true }

// OwnedPaths are the endpoints the status bridge must serve even when
// another claimant also recognizes them. getNetwork and setNetwork in
// particular have to read and write the same persisted mode: a
// get routed elsewhere would never observe a set.
func (b *StatusBridge) OwnedPaths() []string {
	return []string{"/bridge/ready", "/getNetwork", "/setNetwork", "/exchangerate", "/getStatus"}
}

// Handle answers one host request. No operation here requires an
// origin; these are bridge-internal endpoints.
func (b *StatusBridge) Handle(_ context.Context, req *model.HostRequest) model.HostResponse {
	status, body := b.route(req)
	return model.HostResponse{RequestID: req.RequestID, Status: status, Body: body}
}

func (b *StatusBridge) route(req *model.HostRequest) (int, string) {
	switch requestPath(req.Path) {
	case "/bridge/ready":
		return http.StatusOK, `{"ready":true}`
	case "/getNetwork":
		return b.getNetwork()
	case "/setNetwork":
		return b.setNetwork(req.Body)
	case "/exchangerate":
		return b.exchangeRate()
	case "/getStatus":
		return http.StatusOK, `{"status":"ok"}`
	default:
		return http.StatusOK, `{"ok":true}`
	}
}

// getNetwork reads the mode through the short-TTL cache.
func (b *StatusBridge) getNetwork() (int, string) {
	n, ok := b.modeCache.Get()
	if !ok {
		stored, err := b.store.Network()
		if err != nil {
			ilog.L().Warn().Err(err).Msg("read network mode")
			stored = model.NetworkMain
		}
		n = stored
		b.modeCache.Put(n)
	}
	body, _ := sjson.Set("{}", "network", string(n))
	return http.StatusOK, body
}

// setNetwork validates and persists the mode, then drops the cache so
// the next read observes the new value once the TTL window passes.
func (b *StatusBridge) setNetwork(body string) (int, string) {
	n, err := model.ParseNetwork(gjson.Get(body, "network").String())
	if err != nil {
		return http.StatusBadRequest, `{"ok":false,"error":"invalid_network"}`
	}
	if err := b.store.SetNetwork(n); err != nil {
		ilog.L().Error().Err(err).Msg("persist network mode")
		return http.StatusBadRequest, `{"ok":false,"error":"storage_failure"}`
	}
	b.modeCache.Invalidate()
	out, _ := sjson.Set(`{"ok":true}`, "network", string(n))
	return http.StatusOK, out
}

// exchangeRate serves the cached snapshot, falling back to the store,
// and reports unavailability rather than erroring.
func (b *StatusBridge) exchangeRate() (int, string) {
	if body, ok := b.rateCache.Get(); ok {
		return http.StatusOK, tagCached(body)
	}
	body, at, err := b.store.ExchangeRate()
	if err != nil {
		ilog.L().Warn().Err(err).Msg("read exchange rate")
	}
	if body == "" || time.Since(at) > b.rateTTL {
		return http.StatusOK, `{"cached":false,"unavailable":true}`
	}
	b.rateCache.Put(body)
	return http.StatusOK, tagCached(body)
}

// SetExchangeRate records a fresh snapshot. Callers hand in the
// serialized rate payload as received from the rate provider.
func (b *StatusBridge) SetExchangeRate(body string) error {
	if !gjson.Valid(body) {
		return errInvalidRate
	}
	if err := b.store.SetExchangeRate(body); err != nil {
		return err
	}
	b.rateCache.Put(body)
	return nil
}

func tagCached(body string) string {
	out, err := sjson.Set(body, "cached", true)
	if err != nil {
		return `{"cached":false,"unavailable":true}`
	}
	return out
}
