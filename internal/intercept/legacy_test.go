package intercept

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// recordedEvents captures the handler firing order for one request.
type recordedEvents struct {
	states []ReadyState
	events []string
}

func record(r *LegacyRequest) *recordedEvents {
	rec := &recordedEvents{}
	r.OnReadyStateChange = func(s ReadyState) { rec.states = append(rec.states, s) }
	r.OnLoad = func() { rec.events = append(rec.events, "load") }
	r.OnError = func() { rec.events = append(rec.events, "error") }
	r.OnLoadEnd = func() { rec.events = append(rec.events, "loadend") }
	return rec
}

func TestLegacyRequestPassThrough(t *testing.T) {
	client := &http.Client{Transport: rtFunc(func(req *http.Request) (*http.Response, error) {
		resp := okResponse(req, `{"hello":"world"}`)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	})}
	r := NewLegacyRequest(client, &stubInvoker{})
	rec := record(r)

	require.NoError(t, r.Open("get", "https://example.com/data"))
	assert.Equal(t, StateOpened, r.State())

	require.NoError(t, r.Send(context.Background(), ""))

	assert.Equal(t, StateDone, r.State())
	assert.Equal(t, http.StatusOK, r.Status())
	assert.Equal(t, `{"hello":"world"}`, r.ResponseText())
	assert.Equal(t, "application/json", r.GetResponseHeader("content-type"))
	assert.Equal(t, []ReadyState{StateOpened, StateHeadersReceived, StateLoading, StateDone}, rec.states)
	assert.Equal(t, []string{"load", "loadend"}, rec.events)
}

func TestLegacyRequestSimulatedFailure(t *testing.T) {
	r := NewLegacyRequest(&http.Client{Transport: rtFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("must not reach the network")
		return nil, nil
	})}, &stubInvoker{})
	rec := record(r)

	require.NoError(t, r.Open("POST", "https://overlay-eu-1.bsvb.tech/lookup"))
	require.NoError(t, r.Send(context.Background(), `{"service":"x"}`))

	assert.Equal(t, StateDone, r.State())
	assert.Zero(t, r.Status(), "status must stay unset on the failure path")
	assert.Equal(t, []string{"error", "loadend"}, rec.events)
}

func TestLegacyRequestTunneledLookup(t *testing.T) {
	inv := &stubInvoker{anyResult: model.ProxyResult{
		Status:  http.StatusOK,
		Headers: model.HeaderPairs{{"content-type", "application/json"}, {"x-extra", "1"}},
		Body:    `{"type":"output-list","outputs":[]}`,
	}}
	r := NewLegacyRequest(&http.Client{Transport: rtFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("must not reach the network")
		return nil, nil
	})}, inv)
	rec := record(r)

	require.NoError(t, r.Open("POST", "https://backend.x.projects.babbage.systems/lookup"))
	require.NoError(t, r.SetRequestHeader("Content-Type", "application/json"))
	require.NoError(t, r.Send(context.Background(), `{"service":"ls_users"}`))

	assert.Equal(t, StateDone, r.State())
	assert.Equal(t, http.StatusOK, r.Status())
	assert.Equal(t, "OK", r.StatusText())
	assert.Equal(t, "application/json", r.GetResponseHeader("Content-Type"))
	assert.Contains(t, r.GetAllResponseHeaders(), "x-extra: 1\r\n")
	assert.Equal(t, []string{"load", "loadend"}, rec.events)

	require.Len(t, inv.anyCalls, 1)
	assert.Equal(t, "POST", inv.anyCalls[0].Method)
}

func TestLegacyRequestTunnelSoftFail(t *testing.T) {
	inv := &stubInvoker{anyErr: errors.New("tunnel down")}
	r := NewLegacyRequest(&http.Client{Transport: rtFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("must not reach the network")
		return nil, nil
	})}, inv)

	require.NoError(t, r.Open("POST", "https://backend.x.projects.babbage.systems/lookup"))
	require.NoError(t, r.Send(context.Background(), "{}"))

	assert.Equal(t, http.StatusOK, r.Status())
	assert.Equal(t, "true", r.GetResponseHeader(SoftFailHeader))
	assert.JSONEq(t, `{"type":"output-list","outputs":[]}`, r.ResponseText())
}

func TestLegacyRequestBypassHeaderReclassifies(t *testing.T) {
	hit := false
	r := NewLegacyRequest(&http.Client{Transport: rtFunc(func(req *http.Request) (*http.Response, error) {
		hit = true
		assert.Empty(t, req.Header.Get(BypassHeader))
		return okResponse(req, "ok"), nil
	})}, &stubInvoker{})

	require.NoError(t, r.Open("GET", "https://overlay-eu-1.bsvb.tech/lookup"))
	require.NoError(t, r.SetRequestHeader(BypassHeader, "1"))
	require.NoError(t, r.Send(context.Background(), ""))

	assert.True(t, hit, "bypass marker must force a direct call")
	assert.Equal(t, http.StatusOK, r.Status())
}

func TestLegacyRequestSurfaceVisiblePerState(t *testing.T) {
	inv := &stubInvoker{anyResult: model.ProxyResult{
		Status:  http.StatusOK,
		Headers: model.HeaderPairs{{"content-type", "application/json"}},
		Body:    `{"type":"output-list","outputs":[]}`,
	}}
	r := NewLegacyRequest(&http.Client{Transport: rtFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("must not reach the network")
		return nil, nil
	})}, inv)

	type snapshot struct {
		ctype  string
		status int
		body   string
	}
	snaps := make(map[ReadyState]snapshot)
	r.OnReadyStateChange = func(s ReadyState) {
		snaps[s] = snapshot{
			ctype:  r.GetResponseHeader("content-type"),
			status: r.Status(),
			body:   r.ResponseText(),
		}
	}

	require.NoError(t, r.Open("POST", "https://backend.x.projects.babbage.systems/lookup"))
	require.NoError(t, r.Send(context.Background(), "{}"))

	// Headers and status are readable the moment headers-received fires.
	hr := snaps[StateHeadersReceived]
	assert.Equal(t, "application/json", hr.ctype)
	assert.Equal(t, http.StatusOK, hr.status)

	// The body is readable by loading.
	assert.Equal(t, `{"type":"output-list","outputs":[]}`, snaps[StateLoading].body)
}

func TestLegacyRequestTransitionValidation(t *testing.T) {
	r := NewLegacyRequest(nil, &stubInvoker{})

	assert.Error(t, r.Send(context.Background(), ""), "send before open")
	assert.Error(t, r.SetRequestHeader("a", "b"), "header before open")
	assert.Error(t, r.Open("", ""))
}

