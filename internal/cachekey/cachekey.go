// Package cachekey derives the physical address used for one (bucket, key)
// pair across all three cache tiers.
//
// The derivation is fixed by the system this module reimplements: it must
// produce byte-identical output on the router and on every cache node of
// the same build, since the derived key is never transmitted on the wire
// -- only implied by consistent addressing. See Derive for the formula.
package cachekey

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"strconv"
)

// Derive returns H(bucket, key): shard_ascii + "/" + md5_hex(shard_ascii + "/" + key + bucket).
//
// shard is ((hash64(key) mod 256) + 1), rendered as decimal ASCII with no
// leading zeroes. The result is the physical address used inside the disk
// store and as the object name in the remote store.
func Derive(bucket, key string) string {
	shard := shardFor(key)
	shardASCII := strconv.Itoa(shard)

	h := md5.New()
	h.Write([]byte(shardASCII))
	h.Write([]byte("/"))
	h.Write([]byte(key))
	h.Write([]byte(bucket))
	digest := hex.EncodeToString(h.Sum(nil))

	return shardASCII + "/" + digest
}

// shardFor hashes key with an unseeded, build-independent hash (the same
// SHA-1-over-bytes approach the ring uses) so the shard component is
// stable across process restarts, not just within one process.
func shardFor(key string) int {
	sum := sha1.Sum([]byte(key))
	hi := binary.BigEndian.Uint64(sum[:8])
	return int(hi%256) + 1
}
