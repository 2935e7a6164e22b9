package core

import "time"

const (
	OpCreated       ChangeOp = "created"
	OpUpdated       ChangeOp = "updated"
	OpDeleted       ChangeOp = "deleted"
	OpStatusToggled ChangeOp = "status_toggled"
	OpImported      ChangeOp = "imported"
)

type (
	ChangeOp string

	// ChangeEvent describes one successful mutation of the entry collection.
	// Consumers reload the collection rather than replaying the event.
	ChangeEvent struct {
		Op        ChangeOp  `json:"op"`
		IDs       []string  `json:"ids"`
		Version   uint64    `json:"version"`
		Timestamp time.Time `json:"timestamp"`
	}
)
