package tieredcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/milena/internal/cachekey"
	"github.com/dreamware/milena/internal/store"
)

// mockStore is an in-memory stand-in used to substitute each tier
// independently, so each tier's contribution to a composite operation
// can be tested without standing up the other two.
type mockStore struct {
	data    map[string][]byte
	getErr  error
	putErr  error
	getCall int
	putCall int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(key string) ([]byte, error) {
	m.getCall++
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (m *mockStore) Put(key string, value []byte) error {
	m.putCall++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func newTestCache() (*Cache, *mockStore, *mockStore, *mockStore) {
	mem, disk, remote := newMockStore(), newMockStore(), newMockStore()
	return New(mem, disk, remote), mem, disk, remote
}

func TestPutThenGetRoundtrips(t *testing.T) {
	c, _, _, _ := newTestCache()
	require.NoError(t, c.Put("b", "k", []byte("v1")))
	v, found, err := c.Get("b", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", string(v))
}

func TestSecondPutOverwritesFirst(t *testing.T) {
	c, _, _, _ := newTestCache()
	_ = c.Put("b", "k", []byte("v1"))
	_ = c.Put("b", "k", []byte("v2"))
	v, found, err := c.Get("b", "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v2", string(v))
}

func TestDeleteThenGetIsMiss(t *testing.T) {
	c, _, _, _ := newTestCache()
	_ = c.Put("b", "k", []byte("v"))
	require.NoError(t, c.Delete("b", "k"))
	_, found, err := c.Get("b", "k")
	require.NoError(t, err)
	require.False(t, found, "expected miss after delete")
}

func TestGetMissingEverywhereIsMissNotError(t *testing.T) {
	c, _, _, _ := newTestCache()
	_, found, err := c.Get("b", "nope")
	require.NoError(t, err)
	require.False(t, found)
}

// Scenario 6 from the testable-properties list: memory empty, disk has
// the value, remote is never consulted; after the call memory holds the
// value and disk is unchanged.
func TestGetPromotesFromDiskAndSkipsRemote(t *testing.T) {
	c, mem, disk, remote := newTestCache()

	key := "k"
	bucket := "b"
	ph := deriveForTest(bucket, key)
	disk.data[ph] = []byte("from-disk")

	v, found, err := c.Get(bucket, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "from-disk", string(v))
	require.Zero(t, remote.getCall, "expected remote tier never consulted")
	got, ok := mem.data[ph]
	require.True(t, ok, "expected memory promoted with disk value")
	require.Equal(t, "from-disk", string(got))
	require.Zero(t, disk.putCall, "expected disk tier unchanged")
	require.Equal(t, "from-disk", string(disk.data[ph]))
}

func TestGetPromotesFromRemoteToDiskAndMemory(t *testing.T) {
	c, mem, disk, remote := newTestCache()
	bucket, key := "b", "k"
	ph := deriveForTest(bucket, key)
	remote.data[ph] = []byte("from-remote")

	v, found, err := c.Get(bucket, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "from-remote", string(v))
	_, ok := mem.data[ph]
	require.True(t, ok, "expected memory promoted")
	_, ok = disk.data[ph]
	require.True(t, ok, "expected disk promoted")
}

func TestGetDoesNotFallThroughOnTierError(t *testing.T) {
	c, _, disk, remote := newTestCache()
	disk.getErr = errors.New("disk corrupted")

	_, _, err := c.Get("b", "k")
	require.Error(t, err)
	require.Zero(t, remote.getCall, "expected remote tier not consulted after disk error")
}

func TestPutAbortsOnRemoteFailureWithoutWritingLowerTiers(t *testing.T) {
	c, mem, disk, remote := newTestCache()
	remote.putErr = errors.New("remote unavailable")

	err := c.Put("b", "k", []byte("v"))
	require.Error(t, err)
	require.Zero(t, disk.putCall, "expected no write to disk tier")
	require.Zero(t, mem.putCall, "expected no write to memory tier")
}

func TestPutAbortsOnDiskFailureAfterRemoteSucceeds(t *testing.T) {
	c, mem, disk, remote := newTestCache()
	disk.putErr = errors.New("disk full")

	err := c.Put("b", "k", []byte("v"))
	require.Error(t, err)
	require.Equal(t, 1, remote.putCall, "expected remote write attempted exactly once")
	require.Zero(t, mem.putCall, "expected memory not written after disk failure")
}

func deriveForTest(bucket, key string) string {
	return cachekey.Derive(bucket, key)
}
