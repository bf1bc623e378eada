// Package history records conversion jobs handled by the server.
package history

import (
	"context"
	"time"
)

// Entry is one handled conversion request.
type Entry struct {
	ID        int64         `json:"id"`
	Time      time.Time     `json:"time"`
	Route     string        `json:"route"`
	Files     []string      `json:"files"`
	Output    string        `json:"output,omitempty"`
	Format    string        `json:"format,omitempty"`
	Rows      int           `json:"rows"`
	Unmatched int           `json:"unmatched"`
	Status    int           `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Store persists entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// NopStore discards entries. Used when no database is configured.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (NopStore) Record(context.Context, Entry) error                   { return nil }
func (NopStore) Recent(context.Context, int) ([]Entry, error)          { return []Entry{}, nil }
func (NopStore) Cleanup(context.Context, time.Duration) (int64, error) { return 0, nil }
func (NopStore) Close() error                                          { return nil }
