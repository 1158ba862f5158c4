// Package rpcclient implements the HTTP+JSON wire protocol shared by the
// router and cache nodes: the GET/PUT/DELETE surface both expose, plus
// the JOIN/LEAVE administrative calls cache nodes send to the router.
//
// Plain HTTP carrying JSON bodies, treating the RPC framing layer
// itself as an external, swappable collaborator.
package rpcclient

import "fmt"

// Kind names the externally-observable error categories a call can fail
// with. These map 1:1 onto HTTP status codes at the handler boundary.
type Kind string

const (
	KindInvalidArgument   Kind = "InvalidArgument"
	KindResourceExhausted Kind = "ResourceExhausted"
	KindInternal          Kind = "Internal"
)

// Error is the structured failure returned by a call, carrying both the
// externally-visible Kind and a human-readable message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// GetRequest is the wire shape of a GET call.
type GetRequest struct {
	Bucket string `json:"bucket"`
	Key    []byte `json:"key"`
}

// GetResponse is the wire shape of a GET reply. A miss is represented as
// Successful=true with an empty Value, never as an error.
type GetResponse struct {
	Successful bool   `json:"successful"`
	Value      []byte `json:"value"`
}

// PutRequest is the wire shape of a PUT call.
type PutRequest struct {
	Bucket string `json:"bucket"`
	Key    []byte `json:"key"`
	Value  []byte `json:"value"`
}

// PutResponse is the wire shape of a PUT reply.
type PutResponse struct {
	Successful bool `json:"successful"`
}

// DeleteRequest is the wire shape of a DELETE call.
type DeleteRequest struct {
	Bucket string `json:"bucket"`
	Key    []byte `json:"key"`
}

// DeleteResponse is the wire shape of a DELETE reply.
type DeleteResponse struct {
	Successful bool `json:"successful"`
}

// JoinRequest is sent by a cache node to the router on startup.
type JoinRequest struct {
	Address string `json:"address"`
}

// JoinResponse acknowledges a JOIN.
type JoinResponse struct {
	Successful bool `json:"successful"`
}

// LeaveRequest removes a node from the router's ring.
type LeaveRequest struct {
	Address string `json:"address"`
}

// LeaveResponse acknowledges a LEAVE. LEAVE is best-effort and always
// reports success.
type LeaveResponse struct {
	Successful bool `json:"successful"`
}
