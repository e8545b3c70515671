package hostcmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

func TestProxyFetchAnyValidation(t *testing.T) {
	p := NewProxy(nil)

	cases := []struct {
		name string
		url  string
		want string
	}{
		{"http scheme", "http://overlay-eu-1.bsvb.tech/lookup", "only https"},
		{"unknown host", "https://evil.example.com/lookup", "host not allowed"},
		{"garbage url", "://nope", "invalid url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.ProxyFetchAny(context.Background(), model.TunnelRequest{
				Method: "POST", URL: tc.url,
			})
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestProxyFetchManifestValidation(t *testing.T) {
	p := NewProxy(nil)

	_, err := p.ProxyFetchManifest(context.Background(), "http://example.com/manifest.json")
	assert.ErrorContains(t, err, "only https")

	_, err = p.ProxyFetchManifest(context.Background(), "https://example.com/app.json")
	assert.ErrorContains(t, err, "manifest.json")
}

func TestProxyHostAllowlist(t *testing.T) {
	p := NewProxy(nil)
	assert.True(t, p.hostAllowed("overlay-eu-1.bsvb.tech"))
	assert.True(t, p.hostAllowed("OVERLAY-AP-1.BSVB.TECH"))
	assert.False(t, p.hostAllowed("example.com"))

	custom := NewProxy([]string{"api.example.com"})
	assert.True(t, custom.hostAllowed("api.example.com"))
	assert.False(t, custom.hostAllowed("overlay-eu-1.bsvb.tech"))
}
