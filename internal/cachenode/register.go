package cachenode

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamware/milena/internal/rpcclient"
)

// registerAttempts and registerBackoff bound the retry loop against
// the router's JOIN endpoint.
const (
	registerAttempts = 10
	registerBackoff  = 400 * time.Millisecond
)

// Register dials routerAddr and sends JOIN(listenAddr), retrying up to
// registerAttempts times. Failure is logged and returned to the caller,
// but is never fatal: the cache node keeps serving even if it never
// joins the ring.
func Register(ctx context.Context, routerAddr, listenAddr string, log zerolog.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= registerAttempts; attempt++ {
		resp, err := rpcclient.Join(ctx, routerAddr, listenAddr)
		if err == nil && resp.Successful {
			log.Info().Str("router", routerAddr).Str("listen_addr", listenAddr).Msg("joined router")
			return nil
		}
		lastErr = err
		if lastErr == nil {
			lastErr = errors.New("router did not accept join")
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Int("max_attempts", registerAttempts).Msg("join attempt failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(registerBackoff):
		}
	}
	log.Error().Err(lastErr).Str("router", routerAddr).Msg("giving up on joining router")
	return lastErr
}
