package inventory

import (
	"context"
	"sync"
)

// RequestGate orders the requests of one view so that the later request wins.
// A response is accepted only while its criteria fingerprint matches the most
// recent request. Starting a request with a different fingerprint cancels the
// requests still in flight.
// 後発リクエスト優先のゲート（古いレスポンスは破棄）
type RequestGate struct {
	mu       sync.Mutex
	seq      uint64
	latest   string
	inFlight map[uint64]inFlightRequest
}

type inFlightRequest struct {
	fingerprint string
	cancel      context.CancelFunc
}

// Ticket identifies one request started through a RequestGate
type Ticket struct {
	seq         uint64
	fingerprint string
}

// NewRequestGate creates an empty gate
func NewRequestGate() *RequestGate {
	return &RequestGate{inFlight: make(map[uint64]inFlightRequest)}
}

// Begin registers a request and returns the context it must run under
func (g *RequestGate) Begin(ctx context.Context, criteria Criteria) (context.Context, Ticket) {
	fp := criteria.Fingerprint()
	reqCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	for seq, req := range g.inFlight {
		if req.fingerprint != fp {
			req.cancel()
			delete(g.inFlight, seq)
		}
	}
	g.seq++
	g.latest = fp
	g.inFlight[g.seq] = inFlightRequest{fingerprint: fp, cancel: cancel}

	return reqCtx, Ticket{seq: g.seq, fingerprint: fp}
}

// Accept returns ErrStaleResponse if a request with other criteria has been
// started since the ticket was issued
func (g *RequestGate) Accept(t Ticket) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.fingerprint != g.latest {
		return ErrStaleResponse
	}
	return nil
}

// Finish releases the request's context
func (g *RequestGate) Finish(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if req, ok := g.inFlight[t.seq]; ok {
		req.cancel()
		delete(g.inFlight, t.seq)
	}
}

// InFlight returns the number of requests that have not finished
func (g *RequestGate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}

// Do runs fetch under the gate. A superseded fetch yields ErrStaleResponse
// whatever fetch itself returned.
// ゲート経由でリクエストを実行
func (g *RequestGate) Do(ctx context.Context, criteria Criteria, fetch func(context.Context) ([]Item, error)) ([]Item, error) {
	reqCtx, ticket := g.Begin(ctx, criteria)
	defer g.Finish(ticket)

	items, err := fetch(reqCtx)
	if staleErr := g.Accept(ticket); staleErr != nil {
		return nil, staleErr
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}
