package intercept

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// SoftFailHeader tags a synthesized lookup response that papers over a
// host tunnel failure.
const SoftFailHeader = "x-mnd-soft-fail"

// emptyLookupBody is the minimal valid payload a lookup caller expects.
const emptyLookupBody = `{"type":"output-list","outputs":[]}`

// ErrSimulatedNetworkFailure is returned for calls classified as
// forced-failure.
var ErrSimulatedNetworkFailure = errors.New("intercept: simulated network failure")

// Invoker is the native-host tunnel command surface.
type Invoker interface {
	ProxyFetchAny(ctx context.Context, req model.TunnelRequest) (model.ProxyResult, error)
	ProxyFetchManifest(ctx context.Context, url string) (model.ProxyResult, error)
}

// Transport is an http.RoundTripper that applies the interception rules
// to every outbound call. Pass-through traffic hits the base transport;
// tunneled traffic makes a single host round trip and reconstructs a
// response indistinguishable from a native one.
type Transport struct {
	base    http.RoundTripper
	invoker Invoker
}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, invoker Invoker) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, invoker: invoker}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	decision, target := Classify(req.URL.String(), req.Header)
	switch decision {
	case DecisionFail:
		return nil, ErrSimulatedNetworkFailure
	case DecisionPass:
		if req.Header.Get(BypassHeader) != "" {
			req = req.Clone(req.Context())
			req.Header.Del(BypassHeader)
		}
		return t.base.RoundTrip(req)
	}
	return t.tunnel(req, target)
}

func (t *Transport) tunnel(req *http.Request, target Target) (*http.Response, error) {
	body, err := extractBody(req)
	if err != nil {
		return nil, err
	}

	if target.IsManifest {
		res, err := t.invoker.ProxyFetchManifest(req.Context(), req.URL.String())
		if err != nil {
			// Manifest soft-fail: retry the original call directly. The
			// caller's request must stay untouched, so the body is
			// replayed on a clone.
			ilog.L().Debug().Err(err).Str("url", req.URL.String()).Msg("manifest tunnel failed, falling back to direct call")
			direct := req.Clone(req.Context())
			direct.Body = io.NopCloser(bytes.NewReader(body))
			return t.base.RoundTrip(direct)
		}
		return synthesize(req, res), nil
	}

	res, err := t.invoker.ProxyFetchAny(req.Context(), model.TunnelRequest{
		Method:  req.Method,
		URL:     req.URL.String(),
		Headers: headerPairs(req.Header),
		Body:    string(body),
	})
	if err != nil {
		// Lookup soft-fail: a transport failure must never crash the
		// caller, so hand back an empty-but-valid result instead.
		ilog.L().Debug().Err(err).Str("url", req.URL.String()).Msg("lookup tunnel failed, soft-failing")
		return softFail(req), nil
	}
	return synthesize(req, res), nil
}

// extractBody materializes the request body as text. Absent and
// unreadable bodies are treated as empty.
func extractBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	defer req.Body.Close()
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return b, nil
}

// synthesize reconstructs an *http.Response from a host proxy result.
func synthesize(req *http.Request, res model.ProxyResult) *http.Response {
	header := make(http.Header, len(res.Headers))
	for _, kv := range res.Headers {
		header.Add(kv[0], kv[1])
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", res.Status, http.StatusText(res.Status)),
		StatusCode:    res.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(res.Body)),
		ContentLength: int64(len(res.Body)),
		Request:       req,
	}
}

func softFail(req *http.Request) *http.Response {
	res := synthesize(req, model.ProxyResult{
		Status: http.StatusOK,
		Body:   emptyLookupBody,
	})
	res.Header.Set(SoftFailHeader, "true")
	res.Header.Set("content-type", "application/json")
	return res
}

func headerPairs(h http.Header) model.HeaderPairs {
	pairs := make(model.HeaderPairs, 0, len(h))
	for k, vs := range h {
		for _, v := range vs {
			pairs = append(pairs, [2]string{k, v})
		}
	}
	return pairs
}

// Handle owns the interception installation state for one http.Client.
// Installation is explicit and idempotent through the handle; there are
// no package-level patch flags.
type Handle struct {
	mu        sync.Mutex
	installed bool
	client    *http.Client
	invoker   Invoker
	prev      http.RoundTripper
}

// NewHandle prepares interception for client. A nil client targets
// http.DefaultClient.
func NewHandle(client *http.Client, invoker Invoker) *Handle {
	if client == nil {
		client = http.DefaultClient
	}
	return &Handle{client: client, invoker: invoker}
}

// Install wraps the client transport. Re-invocation is a no-op and
// reports false.
func (h *Handle) Install() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed {
		return false
	}
	h.prev = h.client.Transport
	h.client.Transport = NewTransport(h.prev, h.invoker)
	h.installed = true
	return true
}

// Uninstall restores the previous transport. Reports false when the
// handle was not installed.
func (h *Handle) Uninstall() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.installed {
		return false
	}
	h.client.Transport = h.prev
	h.prev = nil
	h.installed = false
	return true
}
