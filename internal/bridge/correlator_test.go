package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/p2ppsr/metanet-desktop/internal/bus"
	"github.com/p2ppsr/metanet-desktop/internal/storage"
	"github.com/p2ppsr/metanet-desktop/internal/wallet"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

type stubHandler struct {
	claims func(string) bool
	handle func(ctx context.Context, req *model.HostRequest) model.HostResponse
}

func (s stubHandler) Claims(p string) bool {
	if s.claims == nil {
		return false
	}
	return s.claims(p)
}

func (s stubHandler) Handle(ctx context.Context, req *model.HostRequest) model.HostResponse {
	return s.handle(ctx, req)
}

func collectResponses(b *bus.Local) <-chan model.HostResponse {
	ch := make(chan model.HostResponse, 16)
	b.Subscribe(bus.EventBridgeResponse, func(payload string) {
		var res model.HostResponse
		if err := json.Unmarshal([]byte(payload), &res); err == nil {
			ch <- res
		}
	})
	return ch
}

func waitResponse(t *testing.T, ch <-chan model.HostResponse) model.HostResponse {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bridge response")
		return model.HostResponse{}
	}
}

func emitRequest(t *testing.T, b *bus.Local, req model.HostRequest) {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	b.Emit(bus.EventHostRequest, string(raw))
}

func TestCorrelatorRepliesWithRequestID(t *testing.T) {
	b := bus.NewLocal()
	h := stubHandler{
		claims: func(p string) bool { return p == "/op" },
		handle: func(_ context.Context, req *model.HostRequest) model.HostResponse {
			return model.HostResponse{RequestID: req.RequestID, Status: http.StatusOK, Body: `{"done":true}`}
		},
	}
	c := NewCorrelator(b, h, h)
	defer c.Start()()
	responses := collectResponses(b)

	emitRequest(t, b, model.HostRequest{Method: "POST", Path: "/op", RequestID: 7})

	res := waitResponse(t, responses)
	assert.Equal(t, uint64(7), res.RequestID)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, `{"done":true}`, res.Body)
}

func TestCorrelatorFallbackTakesUnclaimed(t *testing.T) {
	b := bus.NewLocal()
	fallback := stubHandler{
		claims: func(string) bool { return true },
		handle: func(_ context.Context, req *model.HostRequest) model.HostResponse {
			return model.HostResponse{RequestID: req.RequestID, Status: http.StatusOK, Body: `{"ok":true}`}
		},
	}
	c := NewCorrelator(b, fallback)
	defer c.Start()()
	responses := collectResponses(b)

	emitRequest(t, b, model.HostRequest{Method: "GET", Path: "/anything", RequestID: 8})

	res := waitResponse(t, responses)
	assert.Equal(t, uint64(8), res.RequestID)
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestCorrelatorMalformedPayloadStillReplies(t *testing.T) {
	b := bus.NewLocal()
	c := NewCorrelator(b, stubHandler{
		claims: func(string) bool { return true },
		handle: func(_ context.Context, req *model.HostRequest) model.HostResponse {
			return model.HostResponse{RequestID: req.RequestID, Status: http.StatusOK, Body: "{}"}
		},
	})
	defer c.Start()()
	responses := collectResponses(b)

	// Truncated payload: the id is salvageable, the rest is not.
	b.Emit(bus.EventHostRequest, `{"request_id":5,"path":`)

	res := waitResponse(t, responses)
	assert.Equal(t, uint64(5), res.RequestID)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"ok":true}`, res.Body)
}

func TestCorrelatorRecoversFromHandlerPanic(t *testing.T) {
	b := bus.NewLocal()
	h := stubHandler{
		claims: func(string) bool { return true },
		handle: func(context.Context, *model.HostRequest) model.HostResponse {
			panic("handler exploded")
		},
	}
	c := NewCorrelator(b, h, h)
	defer c.Start()()
	responses := collectResponses(b)

	emitRequest(t, b, model.HostRequest{Method: "POST", Path: "/op", RequestID: 12})

	res := waitResponse(t, responses)
	assert.Equal(t, uint64(12), res.RequestID)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"ok":true}`, res.Body)
}

// TestCorrelatorNetworkModeRoundTrip drives the production claimant
// chain (status endpoints ahead of the capability table, status bridge
// as fallback): a set followed by a get must observe the same persisted
// mode even though the capability table also knows /getNetwork.
func TestCorrelatorNetworkModeRoundTrip(t *testing.T) {
	b := bus.NewLocal()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)

	status := NewStatusBridge(store)
	capability := NewCapabilityBridge(NewRouter(wallet.Unimplemented{}))
	c := NewCorrelator(b, status, ClaimOnly(status, status.OwnedPaths()...), capability)
	defer c.Start()()
	responses := collectResponses(b)

	emitRequest(t, b, model.HostRequest{
		Method: "POST", Path: "/setNetwork", Body: `{"network":"test"}`, RequestID: 1,
	})
	res := waitResponse(t, responses)
	require.Equal(t, http.StatusOK, res.Status)
	require.True(t, gjson.Get(res.Body, "ok").Bool())

	emitRequest(t, b, model.HostRequest{Method: "GET", Path: "/getNetwork", RequestID: 2})
	res = waitResponse(t, responses)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "test", gjson.Get(res.Body, "network").String())
}

func TestCorrelatorRejectsDuplicateInflightID(t *testing.T) {
	b := bus.NewLocal()
	release := make(chan struct{})
	h := stubHandler{
		claims: func(string) bool { return true },
		handle: func(_ context.Context, req *model.HostRequest) model.HostResponse {
			<-release
			return model.HostResponse{RequestID: req.RequestID, Status: http.StatusOK, Body: "{}"}
		},
	}
	c := NewCorrelator(b, h, h)
	defer c.Start()()
	responses := collectResponses(b)

	emitRequest(t, b, model.HostRequest{Method: "POST", Path: "/op", RequestID: 9})
	emitRequest(t, b, model.HostRequest{Method: "POST", Path: "/op", RequestID: 9})

	// The duplicate is answered immediately while the original blocks.
	dup := waitResponse(t, responses)
	assert.Equal(t, uint64(9), dup.RequestID)
	assert.Equal(t, http.StatusBadRequest, dup.Status)
	assert.Contains(t, dup.Body, "duplicate request id")

	close(release)
	orig := waitResponse(t, responses)
	assert.Equal(t, uint64(9), orig.RequestID)
	assert.Equal(t, http.StatusOK, orig.Status)
}
