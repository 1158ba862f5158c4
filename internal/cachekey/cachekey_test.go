package cachekey

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
)

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive("topic", "some_key")
	b := Derive("topic", "some_key")
	if a != b {
		t.Fatalf("Derive is not deterministic: %q != %q", a, b)
	}
}

func TestDeriveDiffersByBucket(t *testing.T) {
	a := Derive("bucket-a", "k")
	b := Derive("bucket-b", "k")
	if a == b {
		t.Fatalf("expected different derived keys for different buckets, got %q for both", a)
	}
}

func TestDeriveDiffersByKey(t *testing.T) {
	a := Derive("b", "k1")
	b := Derive("b", "k2")
	if a == b {
		t.Fatalf("expected different derived keys for different keys, got %q for both", a)
	}
}

func TestDeriveMatchesItsOwnFormula(t *testing.T) {
	bucket, key := "topic", "some_key"
	got := Derive(bucket, key)

	shard := shardFor(key)
	if shard < 1 || shard > 256 {
		t.Fatalf("shard %d out of range [1,256]", shard)
	}

	shardASCII := strconv.Itoa(shard)
	sum := md5.Sum([]byte(shardASCII + "/" + key + bucket))
	want := shardASCII + "/" + hex.EncodeToString(sum[:])

	if got != want {
		t.Fatalf("Derive(%q,%q) = %q, want %q", bucket, key, got, want)
	}
}

func TestDeriveShardRange(t *testing.T) {
	keys := []string{"", "a", "some_key", strings.Repeat("x", 1024)}
	for _, k := range keys {
		s := shardFor(k)
		if s < 1 || s > 256 {
			t.Errorf("shardFor(%q) = %d, want in [1,256]", k, s)
		}
	}
}

func TestDeriveFormatHasSlashSeparatedShardPrefix(t *testing.T) {
	out := Derive("b", "k")
	idx := strings.IndexByte(out, '/')
	if idx <= 0 {
		t.Fatalf("expected shard_ascii/digest format, got %q", out)
	}
	shard, err := strconv.Atoi(out[:idx])
	if err != nil {
		t.Fatalf("shard prefix %q is not an integer: %v", out[:idx], err)
	}
	if shard < 1 || shard > 256 {
		t.Fatalf("shard prefix %d out of range", shard)
	}
	digest := out[idx+1:]
	if len(digest) != 32 {
		t.Fatalf("expected 32-char md5 hex digest, got %d chars: %q", len(digest), digest)
	}
}
