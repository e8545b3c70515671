package intercept

import (
	"net/http"
	"net/url"
	"strings"
)

// BypassHeader marks a call that must skip interception entirely.
const BypassHeader = "x-mnd-no-intercept"

// Decision is the outcome of classifying an outbound call.
type Decision int

const (
	// DecisionPass forwards the call untouched.
	DecisionPass Decision = iota
	// DecisionTunnel routes the call through the native host.
	DecisionTunnel
	// DecisionFail rejects the call immediately as a simulated network
	// error so the caller's own fallback logic triggers deterministically
	// instead of waiting out a real timeout.
	DecisionFail
)

// Target is the pure classification of one outbound URL.
type Target struct {
	Scheme string
	Host   string
	Path   string

	IsManifest    bool
	IsLookup      bool
	IsOverlayHost bool
	IsBackendHost bool
}

// Host patterns, matched case-insensitively and anchored via glob.
var (
	overlayHostPatterns = []string{"overlay-*.bsvb.tech"}
	backendHostPatterns = []string{"*.projects.babbage.systems"}
)

// Classify decides how one outbound call is treated. It never fails:
// malformed URLs classify as pass-through.
func Classify(rawURL string, header http.Header) (Decision, Target) {
	if header != nil && header.Get(BypassHeader) != "" {
		return DecisionPass, Target{}
	}

	t, ok := classifyTarget(rawURL)
	if !ok {
		return DecisionPass, t
	}

	switch {
	case t.IsLookup && t.IsOverlayHost:
		return DecisionFail, t
	case t.IsLookup && t.IsBackendHost && t.Scheme == "https":
		return DecisionTunnel, t
	case t.IsManifest && t.Scheme == "https":
		return DecisionTunnel, t
	}
	return DecisionPass, t
}

func classifyTarget(rawURL string) (Target, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Target{}, false
	}
	t := Target{
		Scheme: strings.ToLower(u.Scheme),
		Host:   strings.ToLower(u.Hostname()),
		Path:   strings.ToLower(u.Path),
	}
	t.IsManifest = t.Path == "/manifest.json" || strings.HasSuffix(t.Path, "/manifest.json")
	t.IsLookup = t.Path == "/lookup" || strings.HasSuffix(t.Path, "/lookup")
	t.IsOverlayHost = matchAny(t.Host, overlayHostPatterns)
	t.IsBackendHost = matchAny(t.Host, backendHostPatterns)
	return t, true
}

func matchAny(host string, patterns []string) bool {
	for _, p := range patterns {
		if glob(host, p) {
			return true
		}
	}
	return false
}

// glob matches s against a pattern containing at most one wildcard;
// without one it is an exact match. Inputs are lower-cased.
func glob(s, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		prefix, suffix := pattern[:i], pattern[i+1:]
		return len(s) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix)
	}
	return s == pattern
}
