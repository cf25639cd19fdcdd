package amqp

import (
	"encoding/json"
	"time"

	"cambio/internal/core"
)

// Routing keys on the export exchange. One queue receives both; the
// consumer dispatches on the delivery's routing key.
const (
	RoutingKeyEntryRecorded = "entry.recorded"
	RoutingKeyEntryDeleted  = "entry.deleted"
)

// EntryRecordedMessage is a lightweight pointer to a freshly stored
// entry. The worker fetches the full row from the database.
type EntryRecordedMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// EntryDeletedMessage carries enough of the deleted entry to locate its
// row in the report, since the source row is already soft-deleted when
// the worker runs.
type EntryDeletedMessage struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewEntryRecordedMessage(id, version int64) *EntryRecordedMessage {
	return &EntryRecordedMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewEntryDeletedMessage(e core.Entry) *EntryDeletedMessage {
	return &EntryDeletedMessage{
		ID:          e.ID,
		Date:        e.Date.Format("2006-01-02"),
		Description: e.Description,
		Value:       e.Amount.Value,
		Currency:    e.Amount.Currency,
		Timestamp:   time.Now(),
	}
}

func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *EntryDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryDeletedMessageFromJSON(data []byte) (*EntryDeletedMessage, error) {
	var msg EntryDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
