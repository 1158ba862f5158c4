// Package config binds the cache node's environment-sourced
// configuration and validates it at startup.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// CacheNode holds every environment-sourced setting a cache node process
// needs.
type CacheNode struct {
	ListenAddr  string
	MetricsPort int
	AWSRegion   string
	LRUSize     int
	TTLSeconds  int
	RouterAddr  string
	S3Bucket    string
	LogLevel    string
}

// TTL returns TTLSeconds as a time.Duration, for handing to the disk tier.
func (c CacheNode) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoadCacheNode reads cache-node configuration from the process
// environment, applying the same defaults the source carries, then
// validates it.
func LoadCacheNode() (CacheNode, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", "[::1]:50051")
	v.SetDefault("metrics_port", 9090)
	v.SetDefault("lru_size", 100)
	v.SetDefault("ttl_seconds", 360)
	v.SetDefault("log_level", "info")

	cfg := CacheNode{
		ListenAddr:  v.GetString("listen_addr"),
		MetricsPort: v.GetInt("metrics_port"),
		AWSRegion:   v.GetString("aws_region"),
		LRUSize:     v.GetInt("lru_size"),
		TTLSeconds:  v.GetInt("ttl_seconds"),
		RouterAddr:  v.GetString("router_addr"),
		S3Bucket:    v.GetString("s3_bucket"),
		LogLevel:    v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return CacheNode{}, err
	}
	return cfg, nil
}

// validate enforces the constraints required of cache-node configuration:
// lru_size and ttl_seconds must be positive, router_addr and s3_bucket
// must be set.
func (c CacheNode) validate() error {
	if c.LRUSize <= 0 {
		return fmt.Errorf("config: lru_size must be > 0, got %d", c.LRUSize)
	}
	if c.TTLSeconds <= 0 {
		return fmt.Errorf("config: ttl_seconds must be > 0, got %d", c.TTLSeconds)
	}
	if c.RouterAddr == "" {
		return fmt.Errorf("config: router_addr must be set")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("config: s3_bucket must be set")
	}
	return nil
}

// Router holds the router process's fixed configuration: only the
// listen address is overridable (for tests binding an ephemeral port),
// everything else is fixed by spec.
type Router struct {
	ListenAddr      string
	RateLimitPerSec float64
	Replicas        int
	PoolMax         int
}

// LoadRouter returns the router's fixed configuration, honoring
// ROUTER_ADDR for tests that need an ephemeral listener.
func LoadRouter() Router {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("router_addr", "[::1]:50052")

	return Router{
		ListenAddr:      v.GetString("router_addr"),
		RateLimitPerSec: 100,
		Replicas:        2,
		PoolMax:         10,
	}
}
