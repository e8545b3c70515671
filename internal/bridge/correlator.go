package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/p2ppsr/metanet-desktop/internal/bus"
	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// fallbackBody answers requests that could not be routed or handled.
// A wrong status costs less than an unanswered request: the host side
// has no timeout of its own and would hang or retry forever.
const fallbackBody = `{"ok":true}`

// Correlator owns the host-request listener and guarantees that every
// inbound request produces exactly one bridge-response carrying the
// original request id. Requests are handled concurrently and replies
// may be emitted out of order.
type Correlator struct {
	bus      bus.Bus
	handlers []PathHandler
	fallback PathHandler

	mu       sync.Mutex
	inflight map[uint64]struct{}
}

// NewCorrelator builds a correlator. Handlers are consulted in order by
// path claim; fallback takes everything unclaimed and may be one of the
// listed handlers (the capability bridge 404s in that role, the status
// bridge replies 200 ok).
func NewCorrelator(b bus.Bus, fallback PathHandler, handlers ...PathHandler) *Correlator {
	return &Correlator{
		bus:      b,
		handlers: handlers,
		fallback: fallback,
		inflight: make(map[uint64]struct{}),
	}
}

// Start subscribes to the host request channel; the returned func
// cancels the subscription.
func (c *Correlator) Start() func() {
	return c.bus.Subscribe(bus.EventHostRequest, c.dispatch)
}

func (c *Correlator) dispatch(payload string) {
	var req model.HostRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		// Transport error. Salvage the id if the payload carries one
		// and answer with the generic fallback; never stay silent.
		id := gjson.Get(payload, "request_id").Uint()
		ilog.L().Warn().Err(err).Uint64("request_id", id).Msg("malformed host request")
		c.reply(model.HostResponse{RequestID: id, Status: http.StatusOK, Body: fallbackBody})
		return
	}

	if !c.begin(req.RequestID) {
		// Duplicate id among in-flight requests. The protocol treats
		// ids as unique, so the duplicate is answered immediately and
		// the original keeps its pending reply.
		ilog.L().Warn().Uint64("request_id", req.RequestID).Msg("duplicate in-flight request id")
		c.reply(model.HostResponse{
			RequestID: req.RequestID,
			Status:    http.StatusBadRequest,
			Body:      messageBody("duplicate request id"),
		})
		return
	}
	defer c.end(req.RequestID)

	defer func() {
		if r := recover(); r != nil {
			ilog.L().Error().Any("panic", r).Uint64("request_id", req.RequestID).Msg("handler panicked")
			c.reply(model.HostResponse{RequestID: req.RequestID, Status: http.StatusOK, Body: fallbackBody})
		}
	}()

	h := c.resolve(requestPath(req.Path))
	if h == nil {
		c.reply(model.HostResponse{RequestID: req.RequestID, Status: http.StatusOK, Body: fallbackBody})
		return
	}
	c.reply(h.Handle(context.Background(), &req))
}

func (c *Correlator) resolve(path string) PathHandler {
	for _, h := range c.handlers {
		if h.Claims(path) {
			return h
		}
	}
	return c.fallback
}

func (c *Correlator) reply(res model.HostResponse) {
	raw, err := json.Marshal(res)
	if err != nil {
		ilog.L().Error().Err(err).Uint64("request_id", res.RequestID).Msg("marshal response")
		raw = []byte(`{"request_id":0,"status":200,"body":"{}"}`)
	}
	c.bus.Emit(bus.EventBridgeResponse, string(raw))
}

func (c *Correlator) begin(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.inflight[id]; dup {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *Correlator) end(id uint64) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}
