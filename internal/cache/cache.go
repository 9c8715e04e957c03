// Package cache stores rendered pages in BadgerDB so repeat requests skip the
// upstream fetch and render.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Key prefixes.
const (
	PostPrefix    = "post:"
	IndexPrefix   = "index:"
	SitemapKey    = "sitemap"
	maxGCAttempts = 10
)

// PostKey is the cache key of a rendered post page.
func PostKey(slug string) string { return PostPrefix + slug }

// IndexKey is the cache key of a rendered index page filtered by category.
// An empty category means the unfiltered index.
func IndexKey(category string) string {
	if category == "" {
		category = "all"
	}
	return IndexPrefix + category
}

// ETag returns a strong entity tag for a response body.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// Entry is one cached response.
type Entry struct {
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

// Stats counts cache traffic since open.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// Store is a TTL key/value cache backed by BadgerDB. An empty directory
// opens an in-memory database.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	ttl time.Duration

	hits, misses, sets atomic.Int64
}

// Open opens or creates the cache at dir. ttl applies to every Set; zero
// means entries never expire.
func Open(dir string, ttl time.Duration, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.
		WithLogger(newBadgerLogger(log.With("component", "badger"))).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	log.Info("cache opened", "dir", dir, "in_memory", dir == "", "ttl", ttl)
	return &Store{db: db, log: log, ttl: ttl}, nil
}

// Get returns the entry for key. A missing or expired key reports false.
func (s *Store) Get(key string) (*Entry, bool, error) {
	var entry *Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e Entry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			entry = &e
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		s.misses.Add(1)
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	s.hits.Add(1)
	return entry, true, nil
}

// Set stores body under key and returns the stored entry.
func (s *Store) Set(key, contentType string, body []byte) (*Entry, error) {
	e := &Entry{
		ContentType: contentType,
		ETag:        ETag(body),
		Body:        body,
		StoredAt:    time.Now().UTC(),
	}
	val, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		be := badger.NewEntry([]byte(key), val)
		if s.ttl > 0 {
			be = be.WithTTL(s.ttl)
		}
		return txn.SetEntry(be)
	})
	if err != nil {
		return nil, fmt.Errorf("cache set %s: %w", key, err)
	}
	s.sets.Add(1)
	return e, nil
}

// Delete removes a single key.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DeletePrefix removes every key starting with prefix.
func (s *Store) DeletePrefix(prefix string) error {
	if err := s.db.DropPrefix([]byte(prefix)); err != nil {
		return fmt.Errorf("cache drop %s: %w", prefix, err)
	}
	return nil
}

// Purge empties the cache.
func (s *Store) Purge() error {
	return s.db.DropAll()
}

// Len counts live keys.
func (s *Store) Len() int {
	n := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Stats returns hit and miss counters.
func (s *Store) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Sets: s.sets.Load()}
}

// RunGC reclaims value log space until there is nothing left to rewrite.
func (s *Store) RunGC() {
	for range maxGCAttempts {
		if err := s.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
				s.log.Warn("cache gc failed", "error", err)
			}
			return
		}
	}
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
