package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/p2ppsr/metanet-desktop/internal/wallet"
)

// route is one entry of the capability dispatch table.
type route struct {
	needsOrigin bool
	fn          func(ctx context.Context, origin string, body []byte) (int, string)
}

// Router maps host request paths onto the wallet capability interface.
// The table is closed: it is built once from the interface, so adding
// an operation is a compile-checked change here, not a stringly switch.
type Router struct {
	routes map[string]route
}

// NewRouter builds the dispatch table over w.
func NewRouter(w wallet.Interface) *Router {
	r := &Router{routes: make(map[string]route, 28)}

	add(r, "/createAction", true, w.CreateAction)
	add(r, "/signAction", true, w.SignAction)
	add(r, "/abortAction", true, w.AbortAction)
	add(r, "/listActions", true, w.ListActions)
	add(r, "/internalizeAction", true, w.InternalizeAction)
	add(r, "/listOutputs", true, w.ListOutputs)
	add(r, "/relinquishOutput", true, w.RelinquishOutput)
	add(r, "/getPublicKey", true, w.GetPublicKey)
	add(r, "/revealCounterpartyKeyLinkage", true, w.RevealCounterpartyKeyLinkage)
	add(r, "/revealSpecificKeyLinkage", true, w.RevealSpecificKeyLinkage)
	add(r, "/encrypt", true, w.Encrypt)
	add(r, "/decrypt", true, w.Decrypt)
	add(r, "/createHmac", true, w.CreateHMAC)
	add(r, "/verifyHmac", true, w.VerifyHMAC)
	add(r, "/createSignature", true, w.CreateSignature)
	add(r, "/verifySignature", true, w.VerifySignature)
	add(r, "/acquireCertificate", true, w.AcquireCertificate)
	add(r, "/listCertificates", true, w.ListCertificates)
	add(r, "/proveCertificate", true, w.ProveCertificate)
	add(r, "/relinquishCertificate", true, w.RelinquishCertificate)
	add(r, "/discoverByIdentityKey", true, w.DiscoverByIdentityKey)
	add(r, "/discoverByAttributes", true, w.DiscoverByAttributes)
	addNoArgs(r, "/isAuthenticated", true, w.IsAuthenticated)
	addNoArgs(r, "/waitForAuthentication", true, w.WaitForAuthentication)
	addNoArgs(r, "/getHeight", false, w.GetHeight)
	add(r, "/getHeaderForHeight", false, w.GetHeaderForHeight)
	addNoArgs(r, "/getNetwork", false, w.GetNetwork)
	addNoArgs(r, "/getVersion", false, w.GetVersion)

	return r
}

// Claims reports whether path belongs to the capability table.
func (r *Router) Claims(path string) bool {
	_, ok := r.routes[path]
	return ok
}

// Paths returns every claimed path.
func (r *Router) Paths() []string {
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	return out
}

// Dispatch runs the handler for path. ok is false for unknown paths.
func (r *Router) Dispatch(ctx context.Context, path, origin string, body []byte) (status int, respBody string, ok bool) {
	rt, found := r.routes[path]
	if !found {
		return 0, "", false
	}
	if rt.needsOrigin && origin == "" {
		return http.StatusBadRequest, messageBody("missing originator"), true
	}
	status, respBody = rt.fn(ctx, origin, body)
	return status, respBody, true
}

// add registers an operation taking a parsed argument structure.
func add[A any, R any](r *Router, path string, needsOrigin bool, op func(context.Context, A, string) (*R, error)) {
	r.routes[path] = route{
		needsOrigin: needsOrigin,
		fn: func(ctx context.Context, origin string, body []byte) (int, string) {
			var args A
			if len(body) > 0 {
				if err := json.Unmarshal(body, &args); err != nil {
					return http.StatusBadRequest, messageBody("invalid request body: " + err.Error())
				}
			}
			res, err := op(ctx, args, origin)
			if err != nil {
				return capabilityError(err)
			}
			return okBody(res)
		},
	}
}

// addNoArgs registers an operation with no argument structure.
func addNoArgs[R any](r *Router, path string, needsOrigin bool, op func(context.Context, string) (*R, error)) {
	r.routes[path] = route{
		needsOrigin: needsOrigin,
		fn: func(ctx context.Context, origin string, _ []byte) (int, string) {
			res, err := op(ctx, origin)
			if err != nil {
				return capabilityError(err)
			}
			return okBody(res)
		},
	}
}

func okBody(res any) (int, string) {
	raw, err := json.Marshal(res)
	if err != nil {
		return http.StatusBadRequest, messageBody("failed to serialize result: " + err.Error())
	}
	return http.StatusOK, string(raw)
}

// capabilityError maps a wallet failure to a reply. The review case
// keeps its structured payload so the host can special-case it.
func capabilityError(err error) (int, string) {
	var rev *wallet.ReviewActionsError
	if errors.As(err, &rev) {
		return http.StatusBadRequest, string(rev.Payload())
	}
	return http.StatusBadRequest, messageBody(err.Error())
}

func messageBody(msg string) string {
	raw, err := json.Marshal(map[string]string{"message": msg})
	if err != nil {
		return `{"message":"internal error"}`
	}
	return string(raw)
}
