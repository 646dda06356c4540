package revalidate

import (
	"Trestle/internal/geometry"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	mu    sync.Mutex
	calls []geometry.ValidateRequest
	gate  chan struct{}
	err   error
}

func (s *stubChecker) Check(_ context.Context, req geometry.ValidateRequest) (geometry.ValidateResponse, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	return geometry.DefaultBounds().Evaluate(req), s.err
}

func (s *stubChecker) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func editRequest(spacing float64) geometry.ValidateRequest {
	return geometry.ValidateRequest{
		Span: 30, CarriagewayWidth: 8.5, GirderSpacing: spacing,
		GirderCount: 4, DeckOverhang: 1.75, ChangedField: geometry.FieldGirderSpacing,
	}
}

func TestRevalidatorCoalescesRapidEdits(t *testing.T) {
	checker := &stubChecker{}
	outcomes := make(chan Outcome, 4)
	rv := NewRevalidator(checker, 50*time.Millisecond, func(o Outcome) { outcomes <- o })
	defer rv.Stop()

	rv.Queue(editRequest(2.0))
	rv.Queue(editRequest(2.1))
	last := rv.Queue(editRequest(2.2))

	select {
	case o := <-outcomes:
		assert.Equal(t, last, o.Seq)
		require.NoError(t, o.Err)
	case <-time.After(time.Second):
		t.Fatal("no outcome delivered")
	}

	// Only the surviving edit reached the checker.
	assert.Equal(t, 1, checker.callCount())
	assert.Equal(t, 2.2, checker.calls[0].GirderSpacing)
}

func TestRevalidatorDropsStaleResponse(t *testing.T) {
	checker := &stubChecker{gate: make(chan struct{})}
	outcomes := make(chan Outcome, 4)
	rv := NewRevalidator(checker, time.Millisecond, func(o Outcome) { outcomes <- o })
	defer rv.Stop()

	rv.Queue(editRequest(2.0))
	time.Sleep(10 * time.Millisecond) // first check is now blocked in flight

	newest := rv.Queue(editRequest(3.0))
	close(checker.gate) // release both checks

	o := <-outcomes
	assert.Equal(t, newest, o.Seq, "stale confirmation must be discarded")
	assert.Equal(t, geometry.DefaultBounds().Evaluate(editRequest(3.0)), o.Response)

	select {
	case extra := <-outcomes:
		t.Fatalf("unexpected second outcome for seq %d", extra.Seq)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRevalidatorReportsCheckerFailure(t *testing.T) {
	checker := &stubChecker{err: errors.New("validator unreachable")}
	outcomes := make(chan Outcome, 1)
	rv := NewRevalidator(checker, time.Millisecond, func(o Outcome) { outcomes <- o })
	defer rv.Stop()

	seq := rv.Queue(editRequest(2.0))

	o := <-outcomes
	assert.Equal(t, seq, o.Seq)
	assert.Error(t, o.Err)
}

func TestRevalidatorFlush(t *testing.T) {
	checker := &stubChecker{}
	outcomes := make(chan Outcome, 1)
	rv := NewRevalidator(checker, time.Hour, func(o Outcome) { outcomes <- o })
	defer rv.Stop()

	seq := rv.Queue(editRequest(2.0))
	rv.Flush()

	select {
	case o := <-outcomes:
		assert.Equal(t, seq, o.Seq)
	case <-time.After(time.Second):
		t.Fatal("flush did not fire the pending check")
	}
}

func TestRevalidatorStopSilencesDelivery(t *testing.T) {
	checker := &stubChecker{gate: make(chan struct{})}
	outcomes := make(chan Outcome, 1)
	rv := NewRevalidator(checker, time.Millisecond, func(o Outcome) { outcomes <- o })

	rv.Queue(editRequest(2.0))
	time.Sleep(10 * time.Millisecond)
	rv.Stop()
	close(checker.gate)

	select {
	case o := <-outcomes:
		t.Fatalf("outcome delivered after Stop: seq %d", o.Seq)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLocalAndRemoteCheckersAgree(t *testing.T) {
	bounds := geometry.DefaultBounds()

	mux := http.NewServeMux()
	h := &geometry.Handler{Bounds: bounds}
	mux.HandleFunc("/api/geometry/validate", h.Validate)
	server := httptest.NewServer(mux)
	defer server.Close()

	local := LocalChecker{Bounds: bounds}
	remote := &HTTPChecker{BaseURL: server.URL, HTTPClient: server.Client()}

	requests := []geometry.ValidateRequest{
		editRequest(2.2),
		{Span: 10, CarriagewayWidth: 8.5, GirderSpacing: 2.5, GirderCount: 4, DeckOverhang: 1.75},
		{Span: 30, CarriagewayWidth: 8.5, GirderSpacing: 30, GirderCount: 4, DeckOverhang: 1.75},
	}
	for _, req := range requests {
		localResp, err := local.Check(context.Background(), req)
		require.NoError(t, err)
		remoteResp, err := remote.Check(context.Background(), req)
		require.NoError(t, err)

		// One engine, two tiers: the results must agree bit for bit after
		// the JSON round trip.
		assert.Equal(t, localResp, remoteResp)
	}
}
