// Package cachenode implements the cache node's HTTP+JSON request
// surface over a tiered cache, and the startup handshake that registers
// the node with the router.
package cachenode

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dreamware/milena/internal/rpcclient"
	"github.com/dreamware/milena/internal/telemetry"
	"github.com/dreamware/milena/internal/tieredcache"
)

// Handler exposes GET/PUT/DELETE over one tiered cache, timing every
// call and updating the request/error/hit/miss counters.
type Handler struct {
	cache   *tieredcache.Cache
	metrics *telemetry.Metrics
	log     zerolog.Logger
}

// New wraps cache with the metrics-instrumented request surface.
func New(cache *tieredcache.Cache, metrics *telemetry.Metrics, log zerolog.Logger) *Handler {
	return &Handler{cache: cache, metrics: metrics, log: log}
}

// Routes returns the HTTP mux a cache node serves to the router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/get", h.handleGet)
	mux.HandleFunc("/v1/put", h.handlePut)
	mux.HandleFunc("/v1/delete", h.handleDelete)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	var req rpcclient.GetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	h.metrics.Requests.Inc()
	timer := h.metrics.Timer()

	value, found, err := h.cache.Get(req.Bucket, string(req.Key))
	timer.Observe()
	if err != nil {
		h.metrics.Errors.Inc()
		h.log.Error().Err(err).Str("bucket", req.Bucket).Msg("get failed")
		writeError(w, err)
		return
	}

	if found {
		h.metrics.Hits.Inc()
	} else {
		h.metrics.Misses.Inc()
		value = nil
	}
	writeJSON(w, rpcclient.GetResponse{Successful: true, Value: value})
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req rpcclient.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	h.metrics.Requests.Inc()
	timer := h.metrics.Timer()

	err := h.cache.Put(req.Bucket, string(req.Key), req.Value)
	timer.Observe()
	if err != nil {
		h.metrics.Errors.Inc()
		h.log.Error().Err(err).Str("bucket", req.Bucket).Msg("put failed")
		writeError(w, err)
		return
	}
	writeJSON(w, rpcclient.PutResponse{Successful: true})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req rpcclient.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	h.metrics.Requests.Inc()
	timer := h.metrics.Timer()

	err := h.cache.Delete(req.Bucket, string(req.Key))
	timer.Observe()
	if err != nil {
		h.metrics.Errors.Inc()
		h.log.Error().Err(err).Str("bucket", req.Bucket).Msg("delete failed")
		writeError(w, err)
		return
	}
	writeJSON(w, rpcclient.DeleteResponse{Successful: true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError responds Internal with a stringified cause: every
// cache-node-side failure surfaces as Internal, never a more specific
// kind -- only the router distinguishes validation/rate-limit failures
// from internal ones.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(rpcclient.Error{Kind: rpcclient.KindInternal, Message: err.Error()})
}
