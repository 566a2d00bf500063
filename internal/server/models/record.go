package models

import (
	"encoding/json"
	"time"
)

// Record is the server-side copy of one synced record. Version carries the
// per-user counter value assigned at the last write; clients pull by asking
// for versions greater than their cursor.
type Record struct {
	ID        string
	UserID    string
	Kind      string
	Payload   json.RawMessage
	Version   int64
	UpdatedAt time.Time
}
