package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DM41131/RNG-password-generator/internal/capture"
	"github.com/DM41131/RNG-password-generator/internal/engine"
	"github.com/DM41131/RNG-password-generator/internal/extract"
	"github.com/DM41131/RNG-password-generator/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// chanSource delivers frames pushed by the test.
type chanSource struct {
	frames chan capture.Frame
	once   sync.Once
}

func newChanSource() *chanSource {
	return &chanSource{frames: make(chan capture.Frame)}
}

func (s *chanSource) Start(context.Context) error  { return nil }
func (s *chanSource) Frames() <-chan capture.Frame { return s.frames }
func (s *chanSource) Dropped() uint64              { return 0 }
func (s *chanSource) Stop() error {
	s.once.Do(func() { close(s.frames) })
	return nil
}

// batch debiases to one full hasher batch.
func batch() capture.Frame {
	samples := make([]uint8, 0, extract.BatchSize*16)
	for i := 0; i < extract.BatchSize*8; i++ {
		samples = append(samples, 0, 1)
	}
	return capture.Frame{Samples: samples}
}

type harness struct {
	t      *testing.T
	eng    *engine.Engine
	src    *chanSource
	ts     *httptest.Server
	cancel context.CancelFunc
	errc   chan error
	once   sync.Once
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	eng := engine.New(engine.DefaultConfig())
	for _, m := range metrics.Standard() {
		eng.AddMetric(m)
	}
	src := newChanSource()
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		t:      t,
		eng:    eng,
		src:    src,
		ts:     httptest.NewServer(New(eng, Options{MaxBytes: 4096}, nil).Handler()),
		cancel: cancel,
		errc:   make(chan error, 1),
	}
	go func() { h.errc <- eng.Run(ctx, src, 0) }()
	t.Cleanup(h.close)
	return h
}

func (h *harness) close() {
	h.once.Do(func() {
		h.ts.Close()
		h.cancel()
		require.NoError(h.t, <-h.errc)
	})
}

func (h *harness) push(n int) {
	for i := 0; i < n; i++ {
		h.src.frames <- batch()
	}
}

func (h *harness) get(path string, out any) int {
	h.t.Helper()
	resp, err := http.Get(h.ts.URL + path)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) waiting() int {
	var n int
	require.NoError(h.t, h.eng.Do(context.Background(), func(e *engine.Engine) { n = e.Pool().Waiting() }))
	return n
}

func TestPoolStatus(t *testing.T) {
	h := newHarness(t)

	var st poolResponse
	assert.Equal(t, http.StatusOK, h.get("/v1/pool", &st))
	assert.Zero(t, st.Length)

	h.push(2)
	assert.Equal(t, http.StatusOK, h.get("/v1/pool", &st))
	assert.Equal(t, 64, st.Length)
	assert.Equal(t, uint64(512), st.Bits)
	assert.Equal(t, uint64(2), st.Digests)
	assert.Equal(t, uint64(32000), st.RawBits)

	var health map[string]string
	assert.Equal(t, http.StatusOK, h.get("/health", &health))
	assert.Equal(t, "ok", health["status"])
}

func TestTail(t *testing.T) {
	h := newHarness(t)

	var e errorResponse
	assert.Equal(t, http.StatusTooEarly, h.get("/v1/pool/tail?n=8", &e))
	assert.Equal(t, 8, e.Want)
	assert.Zero(t, e.Have)

	h.push(1)
	var b bytesResponse
	assert.Equal(t, http.StatusOK, h.get("/v1/pool/tail?n=8", &b))
	assert.Equal(t, 8, b.Length)
	// Tail of the all-zero batch digest.
	assert.Equal(t, "db87742b70138a53", b.Hex)

	for _, q := range []string{"", "?n=0", "?n=-4", "?n=lots"} {
		assert.Equal(t, http.StatusBadRequest, h.get("/v1/pool/tail"+q, nil), q)
	}
}

func TestWaitSatisfied(t *testing.T) {
	h := newHarness(t)

	type result struct {
		status int
		body   bytesResponse
	}
	done := make(chan result, 1)
	go func() {
		var r result
		r.status = h.get("/v1/pool/wait?n=64&reset=true", &r.body)
		done <- r
	}()

	require.Eventually(t, func() bool { return h.waiting() == 1 }, 5*time.Second, 5*time.Millisecond)
	h.push(2)

	r := <-done
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 64, r.body.Length)
	assert.Len(t, r.body.Hex, 128)

	// The consumer asked for a reset after reading.
	var st poolResponse
	h.get("/v1/pool", &st)
	assert.Zero(t, st.Length)
	assert.Equal(t, uint64(1), st.Generation)
}

func TestWaitInterruptedByReset(t *testing.T) {
	h := newHarness(t)

	done := make(chan int, 1)
	go func() {
		var e errorResponse
		done <- h.get("/v1/pool/wait?n=64", &e)
	}()
	require.Eventually(t, func() bool { return h.waiting() == 1 }, 5*time.Second, 5*time.Millisecond)

	h.push(1)
	resp, err := http.Post(h.ts.URL+"/v1/pool/reset?reason=test", "", nil)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["notified"])

	assert.Equal(t, http.StatusConflict, <-done)
}

func TestWaitCanceledByClient(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.ts.URL+"/v1/pool/wait?n=32", nil)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
		}
		errc <- err
	}()
	require.Eventually(t, func() bool { return h.waiting() == 1 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	assert.Error(t, <-errc)
	require.Eventually(t, func() bool { return h.waiting() == 0 }, 5*time.Second, 5*time.Millisecond)
	http.DefaultClient.CloseIdleConnections()
}

func TestDigestsSince(t *testing.T) {
	h := newHarness(t)
	h.push(3)

	var all struct {
		Last    uint64           `json:"last"`
		Digests []digestResponse `json:"digests"`
	}
	assert.Equal(t, http.StatusOK, h.get("/v1/digests", &all))
	assert.Equal(t, uint64(3), all.Last)
	require.Len(t, all.Digests, 3)
	assert.Equal(t, "541b3e9daa09b20bf85fa273e5cbd3e80185aa4ec298e765db87742b70138a53", all.Digests[0].Hex)
	assert.Equal(t, uint64(2), all.Digests[2].Index)

	var recent struct {
		Digests []digestResponse `json:"digests"`
	}
	h.get("/v1/digests?since=2", &recent)
	require.Len(t, recent.Digests, 1)
	assert.Equal(t, uint64(3), recent.Digests[0].Seq)

	assert.Equal(t, http.StatusBadRequest, h.get("/v1/digests?since=x", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.push(1)

	var m map[string]float64
	assert.Equal(t, http.StatusOK, h.get("/v1/metrics", &m))
	assert.Contains(t, m, "monobit")
	assert.Contains(t, m, "entropy")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusMethodNotAllowed, h.get("/v1/pool/reset", nil))
}

func TestStoppedEngine(t *testing.T) {
	h := newHarness(t)
	h.close()

	var e errorResponse
	srv := httptest.NewServer(New(h.eng, Options{}, nil).Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/v1/pool")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, engine.ErrStopped.Error(), e.Error)
}
