// Package server exposes the entropy pool over HTTP. Handlers never touch
// pipeline state directly; every read and reset runs on the engine loop
// through Engine.Do.
package server

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/DM41131/RNG-password-generator/internal/engine"
	"github.com/DM41131/RNG-password-generator/internal/pool"
)

const (
	DefaultMaxBytes        = 64 << 20
	DefaultShutdownTimeout = 5 * time.Second
)

type Options struct {
	// MaxBytes caps tail and wait requests.
	MaxBytes int
}

type Server struct {
	eng    *engine.Engine
	log    *zap.Logger
	opts   Options
	router *mux.Router
}

func New(eng *engine.Engine, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	s := &Server{eng: eng, log: log, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/pool", s.handlePool).Methods("GET")
	v1.HandleFunc("/pool/tail", s.handleTail).Methods("GET")
	v1.HandleFunc("/pool/wait", s.handleWait).Methods("GET")
	v1.HandleFunc("/pool/reset", s.handleReset).Methods("POST")
	v1.HandleFunc("/digests", s.handleDigests).Methods("GET")
	v1.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

type poolResponse struct {
	Length     int    `json:"length"`
	Bits       uint64 `json:"bits"`
	Generation uint64 `json:"generation"`
	Waiting    int    `json:"waiting"`
	Digests    uint64 `json:"digests"`
	RawBits    uint64 `json:"raw_bits"`
	Debiased   uint64 `json:"debiased_bits"`
	Rendered   uint64 `json:"rendered_bits"`
	Stopped    bool   `json:"stopped"`
}

type bytesResponse struct {
	Length     int    `json:"length"`
	Generation uint64 `json:"generation"`
	Hex        string `json:"hex"`
}

type digestResponse struct {
	Seq        uint64    `json:"seq"`
	Index      uint64    `json:"index"`
	Generation uint64    `json:"generation"`
	Time       time.Time `json:"time"`
	Hex        string    `json:"hex"`
}

type errorResponse struct {
	Error string `json:"error"`
	Want  int    `json:"want,omitempty"`
	Have  int    `json:"have,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.eng.Done():
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: engine.ErrStopped.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	var resp poolResponse
	err := s.eng.Do(r.Context(), func(e *engine.Engine) {
		st := e.Stats()
		resp = poolResponse{
			Length:     st.PoolLen,
			Bits:       uint64(st.PoolLen) * 8,
			Generation: st.Generation,
			Waiting:    st.Waiting,
			Digests:    st.Digests,
			RawBits:    st.RawBits,
			Debiased:   st.DebiasedBits,
			Rendered:   st.Render.Cursor,
			Stopped:    st.Stopped,
		}
	})
	if err != nil {
		s.engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTail(w http.ResponseWriter, r *http.Request) {
	n, ok := s.byteCount(w, r)
	if !ok {
		return
	}

	var data []byte
	var gen uint64
	var tailErr error
	err := s.eng.Do(r.Context(), func(e *engine.Engine) {
		data, tailErr = e.Pool().Tail(n)
		gen = e.Pool().Generation()
	})
	if err != nil {
		s.engineError(w, err)
		return
	}

	var insufficient *pool.InsufficientError
	if errors.As(tailErr, &insufficient) {
		writeJSON(w, http.StatusTooEarly, errorResponse{
			Error: pool.ErrInsufficientEntropy.Error(),
			Want:  insufficient.Want,
			Have:  insufficient.Have,
		})
		return
	}
	writeJSON(w, http.StatusOK, bytesResponse{Length: len(data), Generation: gen, Hex: hex.EncodeToString(data)})
}

// handleWait blocks until the pool holds n bytes. With reset=true the pool
// is reset after the bytes are taken, the way a one-shot consumer would.
func (s *Server) handleWait(w http.ResponseWriter, r *http.Request) {
	n, ok := s.byteCount(w, r)
	if !ok {
		return
	}
	consume := r.URL.Query().Get("reset") == "true"

	c, err := s.eng.Collect(r.Context(), n, consume)
	switch {
	case errors.Is(err, pool.ErrReset):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Want: n})
		return
	case err != nil:
		s.engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bytesResponse{Length: len(c.Data), Generation: c.Generation, Hex: hex.EncodeToString(c.Data)})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "http request"
	}
	var notified int
	var gen uint64
	if err := s.eng.Do(r.Context(), func(e *engine.Engine) {
		notified = e.Reset(reason)
		gen = e.Pool().Generation()
	}); err != nil {
		s.engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"generation": gen, "notified": notified})
}

func (s *Server) handleDigests(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		var err error
		if since, err = strconv.ParseUint(v, 10, 64); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "since must be a non-negative integer"})
			return
		}
	}

	var entries []engine.Entry
	var last uint64
	if err := s.eng.Do(r.Context(), func(e *engine.Engine) {
		entries = e.History().Since(since)
		last = e.History().Last()
	}); err != nil {
		s.engineError(w, err)
		return
	}

	out := make([]digestResponse, len(entries))
	for i, e := range entries {
		out[i] = digestResponse{
			Seq:        e.Seq,
			Index:      e.Digest.Index,
			Generation: e.Generation,
			Time:       e.Time,
			Hex:        e.Digest.Hex(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"last": last, "digests": out})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var metrics map[string]float64
	if err := s.eng.Do(r.Context(), func(e *engine.Engine) { metrics = e.Stats().Metrics }); err != nil {
		s.engineError(w, err)
		return
	}
	if metrics == nil {
		metrics = map[string]float64{}
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) byteCount(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "n must be a positive integer"})
		return 0, false
	}
	return min(n, s.opts.MaxBytes), true
}

func (s *Server) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrStopped):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away.
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
