// Package storage provides the persistent panel view log for the trend
// dashboard. It uses BoltDB as the underlying storage engine to record one
// event per panel render, backing the audience stats endpoint.
//
// Parsed classification reports are never stored here; every report render
// re-reads its file from disk.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const viewsBucket = "views" // Bucket name for panel view events

// ViewEvent records a single panel render.
type ViewEvent struct {
	Panel string    `json:"panel"`
	Ts    time.Time `json:"ts"`
}

// Store provides persistent storage for panel view events using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates the views bucket.
// Returns an error if the database cannot be opened or the bucket cannot
// be created.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "trendboard-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(viewsBucket)); err != nil {
			return fmt.Errorf("create views bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordView stores a panel view event in the views bucket.
// Events are stored with a key format of "panel_timestamp" for efficient
// time-range queries. Returns an error if the event cannot be serialized
// or stored.
func (s *Store) RecordView(event ViewEvent) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(viewsBucket))

		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal view event: %w", err)
		}

		key := fmt.Sprintf("%s_%d", event.Panel, event.Ts.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// CountViews returns per-panel view counts for events whose timestamp falls
// within the inclusive [start, end] range, scanning the bucket with a
// cursor. Malformed records are skipped.
func (s *Store) CountViews(start, end time.Time) (map[string]int, error) {
	counts := make(map[string]int)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(viewsBucket))
		c := b.Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var event ViewEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue // Skip malformed records
			}
			if event.Ts.Before(start) || event.Ts.After(end) {
				continue
			}
			counts[event.Panel]++
		}

		return nil
	})

	return counts, err
}

// GetViews retrieves view events for a specific panel within a time range,
// using the key prefix for an efficient cursor range scan.
func (s *Store) GetViews(panel string, start, end time.Time) ([]ViewEvent, error) {
	var events []ViewEvent

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(viewsBucket))
		c := b.Cursor()

		prefix := []byte(panel + "_")
		startKey := []byte(fmt.Sprintf("%s_%d", panel, start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%s_%d", panel, end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				continue
			}

			var event ViewEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue // Skip malformed records
			}
			events = append(events, event)
		}

		return nil
	})

	return events, err
}
