// Command cachenode runs a cache node: it exposes the GET/PUT/DELETE
// surface backed by a three-tier store (memory LRU, on-disk TTL KV,
// remote object store), and registers itself with the router on
// startup.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/dreamware/milena/internal/cachenode"
	"github.com/dreamware/milena/internal/config"
	"github.com/dreamware/milena/internal/store"
	"github.com/dreamware/milena/internal/telemetry"
	"github.com/dreamware/milena/internal/tieredcache"
)

func main() {
	cfg, err := config.LoadCacheNode()
	if err != nil {
		// Invalid configuration is fatal at startup.
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("invalid cache node configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Str("node_addr", cfg.ListenAddr).Logger()

	memory, err := store.NewMemoryStore(cfg.LRUSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct memory tier")
	}

	diskDir := "./data"
	disk, err := store.NewDiskStore(diskDir, cfg.TTL())
	if err != nil {
		// Failure to open the on-disk engine is fatal.
		log.Fatal().Err(err).Str("dir", diskDir).Msg("failed to open on-disk store")
	}
	defer disk.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}
	remote := store.NewRemoteStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket)

	cache := tieredcache.New(memory, disk, remote)
	metrics := telemetry.New()
	handler := cachenode.New(cache, metrics, log)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{
		Addr:              addrWithPort(cfg.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("cache node listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("cache node failed to bind listen address")
		}
	}()
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := cachenode.Register(ctx, cfg.RouterAddr, cfg.ListenAddr, log); err != nil {
			log.Warn().Err(err).Msg("did not join router; serving without routed traffic until next restart")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down cache node")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("cache node shutdown did not complete cleanly")
	}
	_ = metricsSrv.Shutdown(ctx)
}

func addrWithPort(port int) string {
	return ":" + strconv.Itoa(port)
}
