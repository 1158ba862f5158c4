package store

import (
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// DiskStore is the on-disk tier: a persistent key/value store opened on
// a filesystem path with a uniform per-entry TTL. A physical key that is
// absent or has expired is reported as ErrNotFound, same as the memory
// tier. Put is a blind overwrite; Delete is idempotent.
type DiskStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewDiskStore opens (creating if missing) a badger database at dir,
// applying ttl to every entry written through Put.
func NewDiskStore(dir string, ttl time.Duration) (*DiskStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &DiskStore{db: db, ttl: ttl}, nil
}

func (d *DiskStore) Get(key string) ([]byte, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (d *DiskStore) Put(key string, value []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(d.ttl)
		return txn.SetEntry(entry)
	})
}

func (d *DiskStore) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close releases the underlying database handle. Must be called at most
// once, typically at process shutdown.
func (d *DiskStore) Close() error {
	return d.db.Close()
}
