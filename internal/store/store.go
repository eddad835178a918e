package store

import "time"

// Store is the dispatch history persistence interface for Chime.
type Store interface {
	Record(d *Delivery) error
	List(limit int) ([]Delivery, error)
	Cleanup(retentionDays int) error
	Close() error
}

// Delivery is one dispatched notification and its per-channel outcome.
type Delivery struct {
	ID        string
	SessionID string
	EventKind string
	Project   string
	Title     string
	Priority  int
	Outcome   map[string]bool
	CreatedAt time.Time
}

// Delivered reports whether any channel accepted the notification.
func (d *Delivery) Delivered() bool {
	for _, ok := range d.Outcome {
		if ok {
			return true
		}
	}
	return false
}
