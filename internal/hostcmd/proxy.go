package hostcmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

const userAgent = "metanet-desktop/1.0 (+https://github.com/bsv-blockchain/metanet-desktop)"

// DefaultAllowedHosts is the upstream allowlist for the generic proxy.
var DefaultAllowedHosts = []string{
	"backend.2efa4b8fe4c2bd42083636871b007e9e.projects.babbage.systems",
	"overlay-eu-1.bsvb.tech",
	"overlay-ap-1.bsvb.tech",
}

// Proxy performs the native-host side of tunneled calls: unrestricted
// network access with tight timeouts so dead endpoints cannot hang the
// UI. It implements intercept.Invoker.
type Proxy struct {
	allowed  []string
	client   *resty.Client
	manifest *resty.Client
}

// NewProxy builds a proxy restricted to allowedHosts (nil uses the
// default allowlist).
func NewProxy(allowedHosts []string) *Proxy {
	if allowedHosts == nil {
		allowedHosts = DefaultAllowedHosts
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: 4 * time.Second}).DialContext,
	}
	client := resty.New().
		SetTransport(transport).
		SetTimeout(8 * time.Second).
		SetHeader("User-Agent", userAgent)
	manifest := resty.New().
		SetTimeout(8 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &Proxy{allowed: allowedHosts, client: client, manifest: manifest}
}

// ProxyFetchAny performs one allowlisted https round trip.
func (p *Proxy) ProxyFetchAny(ctx context.Context, req model.TunnelRequest) (model.ProxyResult, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return model.ProxyResult{}, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "https" {
		return model.ProxyResult{}, fmt.Errorf("only https is allowed")
	}
	if !p.hostAllowed(u.Hostname()) {
		return model.ProxyResult{}, fmt.Errorf("host not allowed: %s", u.Hostname())
	}

	r := p.client.R().SetContext(ctx)
	hasContentType := false
	for _, kv := range req.Headers {
		if strings.EqualFold(kv[0], "content-type") {
			hasContentType = true
		}
		r.SetHeader(kv[0], kv[1])
	}
	if req.Body != "" {
		// A JSON-looking body with no declared type gets one.
		trimmed := strings.TrimSpace(req.Body)
		if !hasContentType && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) {
			r.SetHeader("Content-Type", "application/json")
		}
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(strings.ToUpper(req.Method), u.String())
	if err != nil {
		return model.ProxyResult{}, fmt.Errorf("upstream error: %w", err)
	}
	return toResult(resp), nil
}

// ProxyFetchManifest fetches an https manifest.json with bounded
// redirects; any https host is acceptable, the path is not.
func (p *Proxy) ProxyFetchManifest(ctx context.Context, rawURL string) (model.ProxyResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.ProxyResult{}, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "https" {
		return model.ProxyResult{}, fmt.Errorf("only https scheme is allowed")
	}
	path := strings.ToLower(u.Path)
	if path != "/manifest.json" && !strings.HasSuffix(path, "/manifest.json") {
		return model.ProxyResult{}, fmt.Errorf("only manifest.json paths are allowed")
	}

	resp, err := p.manifest.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, */*;q=0.8").
		Get(u.String())
	if err != nil {
		return model.ProxyResult{}, fmt.Errorf("manifest fetch: %w", err)
	}
	ilog.L().Debug().Str("url", rawURL).Int("status", resp.StatusCode()).Msg("manifest fetched")
	return toResult(resp), nil
}

func (p *Proxy) hostAllowed(host string) bool {
	for _, h := range p.allowed {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

func toResult(resp *resty.Response) model.ProxyResult {
	pairs := make(model.HeaderPairs, 0, len(resp.Header()))
	for k, vs := range resp.Header() {
		for _, v := range vs {
			pairs = append(pairs, [2]string{strings.ToLower(k), v})
		}
	}
	return model.ProxyResult{
		Status:  resp.StatusCode(),
		Headers: pairs,
		Body:    resp.String(),
	}
}
