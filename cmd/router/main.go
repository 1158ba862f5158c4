// Command router runs the router process: it accepts client GET/PUT/
// DELETE RPCs, validates and rate-limits them, maps each key onto a
// cache node via consistent hashing, and forwards the request over a
// pooled connection. It also accepts JOIN/LEAVE from cache nodes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamware/milena/internal/config"
	"github.com/dreamware/milena/internal/router"
)

func main() {
	cfg := config.LoadRouter()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	srv := router.New(cfg.RateLimitPerSec, log)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("router listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("router failed to bind listen address")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down router")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("router shutdown did not complete cleanly")
	}
}
