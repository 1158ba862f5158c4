// Package pool provides a bounded pool of reusable RPC client handles to
// one cache-node address, and the map from address to pool the router
// keeps as nodes join and leave.
package pool

import (
	"context"

	"github.com/jackc/puddle/v2"

	"github.com/dreamware/milena/internal/rpcclient"
)

// MaxSize is the maximum number of channels held open to a single node,
// per the pool-entry data model: (node_address, connection_pool) bounded
// at 10 channels.
const MaxSize = 10

// Pool is a bounded pool of *rpcclient.Client handles targeting one
// cache-node address. Channels outlive individual requests and are
// recycled indiscriminately -- there is no health probe on release.
type Pool struct {
	inner *puddle.Pool[*rpcclient.Client]
	addr  string
}

// New creates a pool targeting addr, constructing up to MaxSize clients
// lazily as load demands.
func New(addr string) (*Pool, error) {
	constructor := func(context.Context) (*rpcclient.Client, error) {
		return rpcclient.NewClient(addr), nil
	}
	destructor := func(*rpcclient.Client) {}

	inner, err := puddle.NewPool(&puddle.Config[*rpcclient.Client]{
		Constructor: constructor,
		Destructor:  destructor,
		MaxSize:     MaxSize,
	})
	if err != nil {
		return nil, err
	}
	return &Pool{inner: inner, addr: addr}, nil
}

// Lease is a pooled client checked out for the duration of one forwarded
// request. Release must be called exactly once.
type Lease struct {
	res *puddle.Resource[*rpcclient.Client]
}

// Client returns the leased client.
func (l *Lease) Client() *rpcclient.Client { return l.res.Value() }

// Release returns the client to the pool for reuse.
func (l *Lease) Release() { l.res.Release() }

// Acquire checks out a client, creating one if the pool is below
// MaxSize and none are idle.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	res, err := p.inner.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Lease{res: res}, nil
}

// Close releases every pooled client and prevents further acquisition.
func (p *Pool) Close() {
	p.inner.Close()
}
