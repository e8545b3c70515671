package bridge

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// PathHandler is one claimant on the host request channel. A given path
// must be uniquely claimed: the correlator consults claimants in order
// and hands each request to exactly one of them.
type PathHandler interface {
	Claims(path string) bool
	Handle(ctx context.Context, req *model.HostRequest) model.HostResponse
}

// CapabilityBridge serves the wallet operation paths. It is the only
// claimant that legitimately replies 404 to an unknown path.
type CapabilityBridge struct {
	router *Router
}

// NewCapabilityBridge wires the bridge over a built router.
func NewCapabilityBridge(router *Router) *CapabilityBridge {
	return &CapabilityBridge{router: router}
}

// Claims reports whether the capability table owns path.
func (b *CapabilityBridge) Claims(path string) bool {
	return b.router.Claims(requestPath(path))
}

// Handle dispatches one host request. The transport never fails here:
// every outcome, including unknown paths and argument errors, is an
// ordinary reply carrying the request id.
func (b *CapabilityBridge) Handle(ctx context.Context, req *model.HostRequest) model.HostResponse {
	headers := req.Headers.Normalize()
	origin := ResolveOrigin(headers)

	status, body, ok := b.router.Dispatch(ctx, requestPath(req.Path), origin, []byte(req.Body))
	if !ok {
		return model.HostResponse{
			RequestID: req.RequestID,
			Status:    http.StatusNotFound,
			Body:      messageBody("unknown path: " + req.Path),
		}
	}
	return model.HostResponse{RequestID: req.RequestID, Status: status, Body: body}
}

// PathSet narrows a handler's claim to an explicit path list so it can
// sit ahead of broader claimants without absorbing the whole channel.
type PathSet struct {
	handler PathHandler
	paths   map[string]struct{}
}

// ClaimOnly wraps h to claim exactly paths.
func ClaimOnly(h PathHandler, paths ...string) *PathSet {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return &PathSet{handler: h, paths: set}
}

func (s *PathSet) Claims(path string) bool {
	_, ok := s.paths[requestPath(path)]
	return ok
}

func (s *PathSet) Handle(ctx context.Context, req *model.HostRequest) model.HostResponse {
	return s.handler.Handle(ctx, req)
}

// requestPath strips any query portion; host paths arrive as raw URIs.
func requestPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}

// ResolveOrigin derives the calling web origin (host[:port]) from the
// normalized headers. The origin header wins when parseable; otherwise
// the bare originator header is used, upgraded with a default scheme
// when none is present. Empty means no origin could be resolved.
func ResolveOrigin(h model.Header) string {
	if raw := h.Get("origin"); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Host
		}
	}
	raw := h.Get("originator")
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Host
		}
		return ""
	}
	// Bare host: validate by upgrading with a default scheme.
	if u, err := url.Parse("https://" + raw); err == nil && u.Host != "" {
		return u.Host
	}
	return ""
}
