package models

import "time"

// Event types
const (
	EventTypeSnapshotStored = "DMS_SNAPSHOT_STORED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SnapshotStoredEvent published when the remote document has been replaced by a push
type SnapshotStoredEvent struct {
	BaseEvent
	Counts    map[string]int `json:"counts"`
	UpdatedAt time.Time      `json:"updated_at"`
}
