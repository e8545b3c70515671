package watchdog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/p2ppsr/metanet-desktop/internal/intercept"
)

// newRetryProbe builds the default prober: exponential backoff between
// attempts (base doubling up to the cap) with the per-attempt timeout
// enforced through the HTTP client. Probes target local-only endpoints
// and carry the bypass marker so they are never intercepted.
func newRetryProbe(cfg Config) ProbeFunc {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.ProbeRetries
	rc.RetryWaitMin = cfg.BackoffBase
	rc.RetryWaitMax = cfg.BackoffCap
	rc.HTTPClient.Timeout = cfg.AttemptTimeout
	rc.Logger = nil

	return func(ctx context.Context, endpoint string) error {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set(intercept.BypassHeader, "1")

		resp, err := rc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("probe %s: status %d", endpoint, resp.StatusCode)
		}
		return nil
	}
}
