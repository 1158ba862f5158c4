// Package ring implements the consistent-hash ring the router uses to
// map a key onto an owning cache-node address, with two virtual
// positions per physical node and stable-within-a-build placement.
package ring

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"sort"
	"sync"
)

// replicas is fixed at 2 virtual positions per physical node, per the
// ring-entry data model: (node_address, replicas=2).
const replicas = 2

// ErrEmpty is returned by Lookup when the ring has no members.
var ErrEmpty = errors.New("ring: no nodes")

// Ring is a sorted-position consistent-hash ring. Lookup, Add, and
// Remove all take the same read/write lock (Lookup shared, Add and
// Remove exclusive), held only for the duration of the call --
// membership change is not globally atomic with in-flight requests
// elsewhere in the system.
type Ring struct {
	mu        sync.RWMutex
	positions []uint64          // sorted virtual-node hash positions
	owners    map[uint64]string // position -> physical node address
	members   map[string]bool   // physical node address -> present
}

// New creates an empty ring.
func New() *Ring {
	return &Ring{
		owners:  make(map[uint64]string),
		members: make(map[string]bool),
	}
}

// Add inserts addr's two virtual positions into the ring. Adding an
// already-present address is a no-op.
func (r *Ring) Add(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[addr] {
		return
	}
	r.members[addr] = true

	for v := 0; v < replicas; v++ {
		pos := hashPosition(addr, v)
		r.owners[pos] = addr
		r.positions = append(r.positions, pos)
	}
	sort.Slice(r.positions, func(i, j int) bool { return r.positions[i] < r.positions[j] })
}

// Remove deletes every virtual position belonging to addr. Removing an
// absent address is a no-op.
func (r *Ring) Remove(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.members[addr] {
		return
	}
	delete(r.members, addr)

	kept := r.positions[:0]
	for _, pos := range r.positions {
		if r.owners[pos] == addr {
			delete(r.owners, pos)
			continue
		}
		kept = append(kept, pos)
	}
	r.positions = kept
}

// Lookup returns the node address owning key: the first virtual
// position with hash >= hash(key), wrapping around to the lowest
// position if key's hash is past the last one.
func (r *Ring) Lookup(key []byte) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.positions) == 0 {
		return "", ErrEmpty
	}

	target := hashBytes(key)
	idx := sort.Search(len(r.positions), func(i int) bool { return r.positions[i] >= target })
	if idx == len(r.positions) {
		idx = 0
	}
	return r.owners[r.positions[idx]], nil
}

// Contains reports whether addr currently has virtual positions on the
// ring.
func (r *Ring) Contains(addr string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[addr]
}

func hashPosition(addr string, vnode int) uint64 {
	data := append([]byte(addr), byte(vnode))
	return hashBytes(data)
}

func hashBytes(data []byte) uint64 {
	sum := sha1.Sum(data)
	return binary.BigEndian.Uint64(sum[:8])
}
