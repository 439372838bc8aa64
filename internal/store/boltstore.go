// internal/store/boltstore.go - bounded pass history on BoltDB
package store

import (
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "go.etcd.io/bbolt"
    "aidiag/internal/diag"
)

var passesBucket = []byte("passes")

// Store persists sealed diagnostic passes. Retention is bounded: only the
// newest maxPasses survive, which keeps the file small forever. This is raw
// history for restart recovery and inspection, not a time series.
type Store struct {
    db        *bbolt.DB
    maxPasses int
}

func Open(path string, maxPasses int) (*Store, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
        return nil, fmt.Errorf("failed to create data directory: %w", err)
    }

    db, err := bbolt.Open(path, 0600, &bbolt.Options{
        Timeout: 1 * time.Second,
    })
    if err != nil {
        return nil, fmt.Errorf("failed to open history database: %w", err)
    }

    store := &Store{db: db, maxPasses: maxPasses}

    if err := store.initBuckets(); err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to initialize buckets: %w", err)
    }

    return store, nil
}

func (s *Store) initBuckets() error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        _, err := tx.CreateBucketIfNotExists(passesBucket)
        return err
    })
}

// SavePass appends a sealed pass and prunes anything beyond the retention
// bound. Keys sort chronologically, so pruning walks from the front.
func (s *Store) SavePass(pass *diag.DiagnosticPass) error {
    data, err := json.Marshal(pass)
    if err != nil {
        return fmt.Errorf("failed to marshal pass: %w", err)
    }

    key := passKey(pass)

    return s.db.Update(func(tx *bbolt.Tx) error {
        b := tx.Bucket(passesBucket)
        if err := b.Put(key, data); err != nil {
            return err
        }

        // Stats reflect the last commit, so the Put above adds one.
        excess := b.Stats().KeyN + 1 - s.maxPasses
        if excess <= 0 {
            return nil
        }

        var stale [][]byte
        c := b.Cursor()
        for k, _ := c.First(); k != nil && len(stale) < excess; k, _ = c.Next() {
            stale = append(stale, append([]byte(nil), k...))
        }
        for _, k := range stale {
            if err := b.Delete(k); err != nil {
                return err
            }
        }
        return nil
    })
}

// LastPass returns the newest stored pass, or nil if the store is empty.
func (s *Store) LastPass() (*diag.DiagnosticPass, error) {
    var pass *diag.DiagnosticPass

    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(passesBucket).Cursor()
        _, v := c.Last()
        if v == nil {
            return nil
        }
        pass = &diag.DiagnosticPass{}
        return json.Unmarshal(v, pass)
    })

    return pass, err
}

// RecentPasses returns up to limit passes, newest first.
func (s *Store) RecentPasses(limit int) ([]diag.DiagnosticPass, error) {
    var passes []diag.DiagnosticPass

    err := s.db.View(func(tx *bbolt.Tx) error {
        c := tx.Bucket(passesBucket).Cursor()
        for k, v := c.Last(); k != nil; k, v = c.Prev() {
            var pass diag.DiagnosticPass
            if err := json.Unmarshal(v, &pass); err != nil {
                continue // skip malformed entries
            }
            passes = append(passes, pass)
            if limit > 0 && len(passes) >= limit {
                break
            }
        }
        return nil
    })

    return passes, err
}

func (s *Store) Close() error {
    return s.db.Close()
}

func passKey(pass *diag.DiagnosticPass) []byte {
    return []byte(fmt.Sprintf("%s:%s", pass.StartedAt.UTC().Format(time.RFC3339Nano), pass.ID))
}
