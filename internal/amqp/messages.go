package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncOp is the mirror operation a message asks for.
type SyncOp string

const (
	OpUpsert SyncOp = "upsert"
	OpDelete SyncOp = "delete"
)

// TransactionSyncMessage asks the worker to mirror one transaction to the
// spreadsheet. It carries only the id and version; the worker reads the row
// from the database, so a stale message for an older version is harmless.
type TransactionSyncMessage struct {
	MessageID string    `json:"message_id"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Op        SyncOp    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates an upsert message.
func NewTransactionSyncMessage(id, version int64) *TransactionSyncMessage {
	return newMessage(id, version, OpUpsert)
}

// NewTransactionDeleteMessage creates a delete message.
func NewTransactionDeleteMessage(id, version int64) *TransactionSyncMessage {
	return newMessage(id, version, OpDelete)
}

func newMessage(id, version int64, op SyncOp) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		MessageID: uuid.NewString(),
		ID:        id,
		Version:   version,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON decodes and validates a message.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", msg.ID)
	}
	switch msg.Op {
	case OpUpsert, OpDelete:
	case "":
		msg.Op = OpUpsert
	default:
		return nil, fmt.Errorf("unknown sync op %q", msg.Op)
	}
	return &msg, nil
}
