package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dreamware/milena/internal/rpcclient"
)

var errNoPoolForNode = errors.New("no connection pool for resolved node")

// Routes returns the HTTP mux exposing the client-facing GET/PUT/DELETE
// surface and the administrative JOIN/LEAVE surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/get", s.handleGet)
	mux.HandleFunc("/v1/put", s.handlePut)
	mux.HandleFunc("/v1/delete", s.handleDelete)
	mux.HandleFunc("/v1/join", s.handleJoin)
	mux.HandleFunc("/v1/leave", s.handleLeave)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if !s.admit() {
		writeError(w, rpcclient.KindResourceExhausted, "rate limit exceeded")
		return
	}

	var req rpcclient.GetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateBucket(req.Bucket); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateKey(req.Key); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}

	p, _, err := s.lookup(r.Context(), req.Key)
	if err != nil {
		writeError(w, rpcclient.KindInternal, err.Error())
		return
	}
	lease, err := p.Acquire(r.Context())
	if err != nil {
		writeError(w, rpcclient.KindInternal, err.Error())
		return
	}
	defer lease.Release()

	resp, err := lease.Client().Get(r.Context(), req.Bucket, req.Key)
	if err != nil {
		relayUpstreamError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if !s.admit() {
		writeError(w, rpcclient.KindResourceExhausted, "rate limit exceeded")
		return
	}

	var req rpcclient.PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateBucket(req.Bucket); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateKey(req.Key); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateValue(req.Value); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}

	p, _, err := s.lookup(r.Context(), req.Key)
	if err != nil {
		writeError(w, rpcclient.KindInternal, err.Error())
		return
	}
	lease, err := p.Acquire(r.Context())
	if err != nil {
		writeError(w, rpcclient.KindInternal, err.Error())
		return
	}
	defer lease.Release()

	resp, err := lease.Client().Put(r.Context(), req.Bucket, req.Key, req.Value)
	if err != nil {
		relayUpstreamError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.admit() {
		writeError(w, rpcclient.KindResourceExhausted, "rate limit exceeded")
		return
	}

	var req rpcclient.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateBucket(req.Bucket); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := validateKey(req.Key); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}

	p, _, err := s.lookup(r.Context(), req.Key)
	if err != nil {
		writeError(w, rpcclient.KindInternal, err.Error())
		return
	}
	lease, err := p.Acquire(r.Context())
	if err != nil {
		writeError(w, rpcclient.KindInternal, err.Error())
		return
	}
	defer lease.Release()

	resp, err := lease.Client().Delete(r.Context(), req.Bucket, req.Key)
	if err != nil {
		relayUpstreamError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if !s.admit() {
		writeError(w, rpcclient.KindResourceExhausted, "rate limit exceeded")
		return
	}

	var req rpcclient.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	if err := s.join(req.Address); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	writeJSON(w, rpcclient.JoinResponse{Successful: true})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req rpcclient.LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, rpcclient.KindInvalidArgument, err.Error())
		return
	}
	s.leave(req.Address)
	writeJSON(w, rpcclient.LeaveResponse{Successful: true})
}

// relayUpstreamError relays a cache-node failure to the client: upstream
// transport errors and upstream Internal errors both collapse into
// Internal.
func relayUpstreamError(w http.ResponseWriter, err error) {
	if rpcErr, ok := err.(*rpcclient.Error); ok {
		writeError(w, rpcclient.KindInternal, rpcErr.Message)
		return
	}
	writeError(w, rpcclient.KindInternal, err.Error())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, kind rpcclient.Kind, message string) {
	status := http.StatusInternalServerError
	switch kind {
	case rpcclient.KindInvalidArgument:
		status = http.StatusBadRequest
	case rpcclient.KindResourceExhausted:
		status = http.StatusTooManyRequests
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rpcclient.Error{Kind: kind, Message: message})
}
