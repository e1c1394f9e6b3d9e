package amqp

import (
	"encoding/json"
	"time"

	"kharcha/internal/core"
)

// BackupEvent distinguishes the two things the backup worker can do with a
// record: write its current state or remove it.
type BackupEvent string

const (
	EventUpsert BackupEvent = "upsert"
	EventDelete BackupEvent = "delete"
)

// BackupMessage is the lightweight notification published on every
// mutation. It carries only the kind, id and event; the worker re-reads the
// record from the store, so a stale queue never backs up stale data.
type BackupMessage struct {
	Kind      core.RecordKind `json:"kind"`
	ID        string          `json:"id"`
	Event     BackupEvent     `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewBackupMessage(kind core.RecordKind, id string, event BackupEvent) *BackupMessage {
	return &BackupMessage{
		Kind:      kind,
		ID:        id,
		Event:     event,
		Timestamp: time.Now(),
	}
}

func (m *BackupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BackupMessageFromJSON(data []byte) (*BackupMessage, error) {
	var msg BackupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
