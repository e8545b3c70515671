package intercept

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// ReadyState models the legacy request object's lifecycle.
type ReadyState int

const (
	StateUnsent ReadyState = iota
	StateOpened
	StateHeadersReceived
	StateLoading
	StateDone
)

func (s ReadyState) String() string {
	switch s {
	case StateUnsent:
		return "unsent"
	case StateOpened:
		return "opened"
	case StateHeadersReceived:
		return "headers-received"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("ReadyState(%d)", int(s))
}

// noopTarget keeps the adapter's internal call state consistent when
// the real round trip is replaced by a tunnel at send time.
const noopTarget = "about:blank"

// LegacyRequest adapts the tunnel to the synchronous-looking
// open/send/readyState idiom. It is an explicit adapter over the real
// call, not a subclass: interception is decided at open time, and at
// send time the tunneled result is delivered by overriding the
// status/body/header surface and firing the same event sequence a real
// completed call would fire.
type LegacyRequest struct {
	client  *http.Client
	invoker Invoker

	state       ReadyState
	method      string
	url         string
	internalURL string
	decision    Decision
	target      Target
	reqHeader   http.Header

	status     int
	statusText string
	response   string
	respHeader http.Header

	// Completion handlers, matching the legacy surface. Any nil
	// handler is simply skipped.
	OnReadyStateChange func(ReadyState)
	OnLoad             func()
	OnError            func()
	OnLoadEnd          func()
}

// NewLegacyRequest builds an adapter. A nil client uses
// http.DefaultClient for pass-through traffic.
func NewLegacyRequest(client *http.Client, invoker Invoker) *LegacyRequest {
	if client == nil {
		client = http.DefaultClient
	}
	return &LegacyRequest{client: client, invoker: invoker, state: StateUnsent}
}

// State returns the current lifecycle state.
func (r *LegacyRequest) State() ReadyState { return r.state }

// Status returns the response status, zero until done (and zero
// forever on the simulated-failure path).
func (r *LegacyRequest) Status() int { return r.status }

// StatusText returns the response status text.
func (r *LegacyRequest) StatusText() string { return r.statusText }

// ResponseText returns the materialized response body.
func (r *LegacyRequest) ResponseText() string { return r.response }

// Open initializes the call and decides interception. Re-opening an
// already-used adapter resets it, matching the legacy idiom.
func (r *LegacyRequest) Open(method, rawURL string) error {
	if method == "" || rawURL == "" {
		return fmt.Errorf("legacy request: open requires method and url")
	}
	r.method = strings.ToUpper(method)
	r.url = rawURL
	r.internalURL = rawURL
	r.reqHeader = make(http.Header)
	r.status = 0
	r.statusText = ""
	r.response = ""
	r.respHeader = nil

	r.decision, r.target = Classify(rawURL, nil)
	if r.decision != DecisionPass {
		// Redirect the internal call to a no-op target; the real
		// traffic happens through the tunnel at send time.
		r.internalURL = noopTarget
	}
	r.setState(StateOpened)
	return nil
}

// SetRequestHeader records a header; only legal once opened.
func (r *LegacyRequest) SetRequestHeader(key, value string) error {
	if r.state != StateOpened {
		return fmt.Errorf("legacy request: SetRequestHeader in state %s", r.state)
	}
	r.reqHeader.Add(key, value)
	// Headers can re-decide classification: a bypass marker set after
	// open must still win.
	if r.reqHeader.Get(BypassHeader) != "" {
		r.decision = DecisionPass
		r.internalURL = r.url
	}
	return nil
}

// GetResponseHeader returns one response header, case-insensitively.
func (r *LegacyRequest) GetResponseHeader(key string) string {
	if r.respHeader == nil {
		return ""
	}
	return r.respHeader.Get(key)
}

// GetAllResponseHeaders returns the flattened header block.
func (r *LegacyRequest) GetAllResponseHeaders() string {
	if r.respHeader == nil {
		return ""
	}
	keys := make([]string, 0, len(r.respHeader))
	for k := range r.respHeader {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		for _, v := range r.respHeader[k] {
			b.WriteString(strings.ToLower(k))
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// Send performs the call and drives the lifecycle to Done. Transition
// validation: Send is only legal from Opened.
func (r *LegacyRequest) Send(ctx context.Context, body string) error {
	if r.state != StateOpened {
		return fmt.Errorf("legacy request: Send in state %s", r.state)
	}

	switch r.decision {
	case DecisionFail:
		// Simulated network error: status stays at its unset zero
		// value and the error event sequence fires.
		r.setState(StateDone)
		r.fireError()
		return nil
	case DecisionTunnel:
		r.sendTunneled(ctx, body)
		return nil
	}
	r.sendDirect(ctx, body)
	return nil
}

func (r *LegacyRequest) sendTunneled(ctx context.Context, body string) {
	var res model.ProxyResult
	var err error
	if r.target.IsManifest {
		res, err = r.invoker.ProxyFetchManifest(ctx, r.url)
		if err != nil {
			ilog.L().Debug().Err(err).Str("url", r.url).Msg("legacy manifest tunnel failed, falling back to direct call")
			r.sendDirect(ctx, body)
			return
		}
	} else {
		res, err = r.invoker.ProxyFetchAny(ctx, model.TunnelRequest{
			Method:  r.method,
			URL:     r.url,
			Headers: headerPairs(r.reqHeader),
			Body:    body,
		})
		if err != nil {
			ilog.L().Debug().Err(err).Str("url", r.url).Msg("legacy lookup tunnel failed, soft-failing")
			h := make(http.Header)
			h.Set(SoftFailHeader, "true")
			h.Set("content-type", "application/json")
			r.complete(http.StatusOK, h, emptyLookupBody)
			return
		}
	}

	header := make(http.Header, len(res.Headers))
	for _, kv := range res.Headers {
		header.Add(kv[0], kv[1])
	}
	r.complete(res.Status, header, res.Body)
}

func (r *LegacyRequest) sendDirect(ctx context.Context, body string) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reader)
	if err != nil {
		r.setState(StateDone)
		r.fireError()
		return
	}
	for k, vs := range r.reqHeader {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Del(BypassHeader)

	resp, err := r.client.Do(req)
	if err != nil {
		r.setState(StateDone)
		r.fireError()
		return
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		r.setState(StateDone)
		r.fireError()
		return
	}
	r.complete(resp.StatusCode, resp.Header, string(b))
}

// complete overrides the read-only response surface and fires the
// same event sequence a real completed call would fire. Each surface
// piece is populated before the state change that promises it:
// headers and status before headers-received, the body before loading.
func (r *LegacyRequest) complete(status int, header http.Header, body string) {
	r.respHeader = header
	r.status = status
	r.statusText = http.StatusText(status)
	r.setState(StateHeadersReceived)
	r.response = body
	r.setState(StateLoading)
	r.setState(StateDone)
	if r.OnLoad != nil {
		r.OnLoad()
	}
	if r.OnLoadEnd != nil {
		r.OnLoadEnd()
	}
}

func (r *LegacyRequest) fireError() {
	if r.OnError != nil {
		r.OnError()
	}
	if r.OnLoadEnd != nil {
		r.OnLoadEnd()
	}
}

func (r *LegacyRequest) setState(s ReadyState) {
	r.state = s
	if r.OnReadyStateChange != nil {
		r.OnReadyStateChange(s)
	}
}
