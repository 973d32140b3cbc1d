package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	cookieBucket     = "cookies"
	expiryValueBytes = 8
)

// boltJar implements a CookieJar backed by BoltDB.
// Values are stored as an 8 byte big-endian unix expiry (0 = session) followed by the raw value.
// Every operation opens its own short-lived handle so the file lock is never held between
// calls; reads use a read-only handle and may overlap with other processes' reads.
type boltJar struct {
	path            string
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt prepares the BoltDB file and bucket backing a CookieJar.
func openBolt(path string, opts Options) (CookieJar, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create cookie jar directory: %w", err)
		}
	}

	jar := &boltJar{
		path:            path,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	if err := jar.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cookieBucket))
		return err
	}); err != nil {
		return nil, fmt.Errorf("init bucket: %w", err)
	}
	jar.lastCleanup.Store(jar.now().Unix())
	return jar, nil
}

// Close is a no-op: no handle outlives a single operation.
func (b *boltJar) Close() error { return nil }

func (b *boltJar) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	return db, nil
}

func (b *boltJar) view(fn func(tx *bolt.Tx) error) error {
	db, err := b.open(true)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.View(fn)
}

func (b *boltJar) update(fn func(tx *bolt.Tx) error) error {
	db, err := b.open(false)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Update(fn)
}

// Get reads a cookie value. Expired entries are reported as absent and purged by the next write.
func (b *boltJar) Get(name string) (string, bool, error) {
	if b == nil {
		return "", false, nil
	}

	now := b.now()
	var (
		value string
		found bool
	)
	err := b.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}

		raw := bucket.Get([]byte(name))
		if raw == nil {
			return nil
		}
		value, found = decodeEntry(raw, now)
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}
	return value, true, nil
}

// Set stores a cookie value with the given ttl.
func (b *boltJar) Set(name, value string, ttl time.Duration) error {
	if b == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}
		return bucket.Put([]byte(name), encodeEntry(value, now, ttl))
	})
}

// Delete removes a cookie. Deleting a missing cookie is not an error.
func (b *boltJar) Delete(name string) error {
	if b == nil {
		return nil
	}

	return b.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}
		return bucket.Delete([]byte(name))
	})
}

// maybeCleanupExpired removes expired cookies on a fixed cadence to avoid unbounded growth.
func (b *boltJar) maybeCleanupExpired(now time.Time) error {
	if b == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cookieBucket))
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if _, ok := decodeEntry(v, now); !ok {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeEntry(value string, now time.Time, ttl time.Duration) []byte {
	buf := make([]byte, expiryValueBytes+len(value))
	var expiry uint64
	if ttl > 0 {
		expiry = uint64(now.Add(ttl).Unix())
	}
	binary.BigEndian.PutUint64(buf, expiry)
	copy(buf[expiryValueBytes:], value)
	return buf
}

// decodeEntry returns the stored value and whether it is still live at now.
func decodeEntry(raw []byte, now time.Time) (string, bool) {
	if len(raw) < expiryValueBytes {
		return "", false
	}
	unix := int64(binary.BigEndian.Uint64(raw[:expiryValueBytes]))
	if unix < 0 {
		return "", false
	}
	if unix > 0 && !time.Unix(unix, 0).After(now) {
		return "", false
	}
	return string(raw[expiryValueBytes:]), true
}
