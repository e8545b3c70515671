package model

import (
	"fmt"
	"strings"
)

// HeaderPairs mirrors the host wire encoding: an ordered list of
// (name, value) tuples. Names may arrive case-mixed and duplicated.
type HeaderPairs [][2]string

// Normalize folds the pair list into a lower-cased Header.
// Duplicates collapse last-write-wins, matching the host's behaviour.
func (hp HeaderPairs) Normalize() Header {
	h := make(Header, len(hp))
	for _, kv := range hp {
		h.Set(kv[0], kv[1])
	}
	return h
}

// Header is a normalized header map keyed by lower-cased names.
type Header map[string]string

// Get returns the value for key, case-insensitively.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[strings.ToLower(key)]
}

// Set stores value under the lower-cased key.
func (h Header) Set(key, value string) {
	h[strings.ToLower(key)] = value
}

// Del removes the lower-cased key.
func (h Header) Del(key string) {
	delete(h, strings.ToLower(key))
}

// HostRequest is one request event originating in the native host.
// RequestID is opaque and must be echoed back unmodified.
type HostRequest struct {
	Method    string      `json:"method"`
	Path      string      `json:"path"`
	Headers   HeaderPairs `json:"headers"`
	Body      string      `json:"body"`
	RequestID uint64      `json:"request_id"`
}

// HostResponse is the single reply paired to a HostRequest. The body is
// already serialized; the transport never inspects it.
type HostResponse struct {
	RequestID uint64 `json:"request_id"`
	Status    int    `json:"status"`
	Body      string `json:"body"`
}

// TunnelRequest is the payload of one native-host proxy round trip.
type TunnelRequest struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Headers HeaderPairs `json:"headers,omitempty"`
	Body    string      `json:"body,omitempty"`
}

// ProxyResult is what the host returns for a tunneled call. It is owned
// exclusively by the call that requested it and never cached.
type ProxyResult struct {
	Status  int         `json:"status"`
	Headers HeaderPairs `json:"headers"`
	Body    string      `json:"body"`
}

// Network is the persisted chain selector.
type Network string

const (
	NetworkMain Network = "main"
	NetworkTest Network = "test"
)

// ParseNetwork validates s against the two legal values.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkMain:
		return NetworkMain, nil
	case NetworkTest:
		return NetworkTest, nil
	}
	return "", fmt.Errorf("invalid network %q", s)
}
