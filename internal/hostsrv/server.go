package hostsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/p2ppsr/metanet-desktop/internal/bus"
	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// Server is the loopback HTTP listener external applications call. It
// is the emitting side of the host event channel: every forwarded
// request gets a fresh id, is published as a host-request event, and
// waits (bounded) for the paired bridge-response.
type Server struct {
	bus     bus.Bus
	addr    string
	version string
	timeout time.Duration

	counter atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan model.HostResponse

	srv         *http.Server
	unsubscribe func()
	done        chan struct{}
}

// New creates a server on addr. replyTimeout bounds the wait for the
// bridge so callers never hang.
func New(b bus.Bus, addr, version string, replyTimeout time.Duration) *Server {
	if replyTimeout <= 0 {
		replyTimeout = 1500 * time.Millisecond
	}
	return &Server{
		bus:     b,
		addr:    addr,
		version: version,
		timeout: replyTimeout,
		pending: make(map[uint64]chan model.HostResponse),
		done:    make(chan struct{}),
	}
}

// Start binds the listener, subscribes to bridge responses, and begins
// serving. The bind is synchronous so a failure surfaces here instead
// of racing the first caller; serve errors are logged.
func (s *Server) Start() error {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Built-in endpoints answered without a renderer dependency.
	r.HandleFunc("/healthz", s.handleStatus)
	r.HandleFunc("/getStatus", s.handleStatus)
	r.HandleFunc("/getVersion", s.handleVersion)
	r.HandleFunc("/version", s.handleVersion)
	r.PathPrefix("/").HandlerFunc(s.forward)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.unsubscribe = s.bus.Subscribe(bus.EventBridgeResponse, s.onBridgeResponse)

	s.srv = &http.Server{Addr: s.addr, Handler: r}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ilog.L().Error().Err(err).Str("addr", s.addr).Msg("host server stopped")
		}
	}()
	ilog.L().Info().Str("addr", ln.Addr().String()).Msg("host server listening")
	return nil
}

// Shutdown stops the listener and the response subscription. In-flight
// forwards are answered 502 instead of waiting out their timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, `{"status":"ok","source":"mnd"}`)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, fmt.Sprintf(`{"version":%q,"source":"mnd"}`, s.version))
}

// forward relays one HTTP request over the event channel and waits for
// the correlated reply.
func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	id := s.counter.Add(1)

	headers := make(model.HeaderPairs, 0, len(r.Header))
	for k, vs := range r.Header {
		for _, v := range vs {
			headers = append(headers, [2]string{k, v})
		}
	}
	body, _ := io.ReadAll(r.Body)

	payload, err := json.Marshal(model.HostRequest{
		Method:    r.Method,
		Path:      r.URL.RequestURI(),
		Headers:   headers,
		Body:      string(body),
		RequestID: id,
	})
	if err != nil {
		ilog.L().Error().Err(err).Msg("serialize host request")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ch := make(chan model.HostResponse, 1)
	s.register(id, ch)
	defer s.unregister(id)

	s.bus.Emit(bus.EventHostRequest, string(payload))

	// Bounded wait so callers never hang on a dead bridge.
	select {
	case res := <-ch:
		writeJSON(w, res.Status, res.Body)
	case <-time.After(s.timeout):
		ilog.L().Warn().Uint64("request_id", id).Msg("bridge timed out")
		writeJSON(w, http.StatusGatewayTimeout, `{"error":"frontend-timeout"}`)
	case <-s.done:
		writeJSON(w, http.StatusBadGateway, `{"error":"frontend-dropped"}`)
	case <-r.Context().Done():
	}
}

func (s *Server) onBridgeResponse(payload string) {
	var res model.HostResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		ilog.L().Warn().Err(err).Msg("malformed bridge response")
		return
	}
	s.mu.Lock()
	ch, ok := s.pending[res.RequestID]
	if ok {
		delete(s.pending, res.RequestID)
	}
	s.mu.Unlock()
	if !ok {
		ilog.L().Warn().Uint64("request_id", res.RequestID).Msg("bridge response for unknown request id")
		return
	}
	ch <- res
}

func (s *Server) register(id uint64, ch chan model.HostResponse) {
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
}

func (s *Server) unregister(id uint64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// corsMiddleware mirrors the permissive headers the host always sent;
// the listener only binds loopback.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Expose-Headers", "*")
		h.Set("Access-Control-Allow-Private-Network", "true")
		next.ServeHTTP(w, r)
	})
}
