// Package router implements the router process's request surface:
// admission control, validation, consistent-hash dispatch, and pooled
// forwarding to cache nodes, plus the JOIN/LEAVE administrative RPCs
// that mutate the ring.
package router

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
	"golang.org/x/time/rate"

	"github.com/dreamware/milena/internal/pool"
	"github.com/dreamware/milena/internal/ring"
)

// Server holds the router's mutable state: the consistent-hash ring, one
// connection pool per known node, and the single global rate limiter
// admission passes through before any other work.
type Server struct {
	ring    *ring.Ring
	limiter *rate.Limiter
	log     zerolog.Logger

	mu    sync.RWMutex
	pools map[string]*pool.Pool
	nodes []string
}

// New creates a router server rate-limited at ratePerSec requests/second,
// with burst capacity equal to the rate so a full second's worth of
// traffic can be admitted instantaneously before throttling kicks in.
func New(ratePerSec float64, log zerolog.Logger) *Server {
	return &Server{
		ring:    ring.New(),
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), int(ratePerSec)),
		log:     log,
		pools:   make(map[string]*pool.Pool),
	}
}

// admit checks the global rate limiter. Called before any other work on
// every client-facing call.
func (s *Server) admit() bool {
	return s.limiter.Allow()
}

// poolFor returns the pool for addr, or (nil, false) if the node is not
// currently known -- e.g. racing a LEAVE.
func (s *Server) poolFor(addr string) (*pool.Pool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[addr]
	return p, ok
}

// join validates addr, adds it to the ring with 2 replicas, and opens a
// bounded connection pool targeting it. Re-joining an address already
// present is a no-op beyond validation.
func (s *Server) join(addr string) error {
	if err := validateAddress(addr); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pools[addr]; exists {
		return nil
	}

	p, err := pool.New(addr)
	if err != nil {
		return err
	}

	s.ring.Add(addr)
	s.pools[addr] = p
	s.nodes = append(s.nodes, addr)
	s.log.Info().Str("addr", addr).Msg("node joined")
	return nil
}

// leave removes addr from the ring and drops its pool entry. Best
// effort: always succeeds even if addr was never known.
func (s *Server) leave(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring.Remove(addr)
	if p, ok := s.pools[addr]; ok {
		p.Close()
		delete(s.pools, addr)
	}
	if idx := slices.Index(s.nodes, addr); idx >= 0 {
		s.nodes = slices.Delete(s.nodes, idx, idx+1)
	}
	s.log.Info().Str("addr", addr).Msg("node left")
}

// lookup resolves the owning node for key via the ring, then returns its
// pool. Mirrors the router request surface's placement + pool-lookup
// steps.
func (s *Server) lookup(ctx context.Context, key []byte) (*pool.Pool, string, error) {
	addr, err := s.ring.Lookup(key)
	if err != nil {
		return nil, "", err
	}
	p, ok := s.poolFor(addr)
	if !ok {
		return nil, "", errNoPoolForNode
	}
	return p, addr, nil
}
