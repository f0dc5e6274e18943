package domain

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LogEntry is one activity-log entry inside a batch
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Company   string            `json:"company"`
	JobTitle  string            `json:"jobTitle"`
	JobID     string            `json:"jobId"`
	Details   string            `json:"details"`
	Username  string            `json:"username"`
	Metadata  map[string]string `json:"metadata"`
}

// BatchMessage is a bulk import published by the API service
type BatchMessage struct {
	BatchID     string     `json:"batchId"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Entries     []LogEntry `json:"entries"`
}

// BatchDelivery pairs a parsed batch with the delivery to acknowledge
type BatchDelivery struct {
	Batch    *BatchMessage
	Delivery amqp.Delivery
}

// ParseBatch decodes and validates a message body
func ParseBatch(body []byte) (*BatchMessage, error) {
	var msg BatchMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if msg.BatchID == "" {
		return nil, fmt.Errorf("%w: batchId is required", ErrInvalidPayload)
	}

	if len(msg.Entries) == 0 {
		return nil, ErrEmptyBatch
	}

	for i, e := range msg.Entries {
		if e.Action == "" {
			return nil, fmt.Errorf("%w: entry %d has no action", ErrInvalidEntry, i)
		}
		if e.Timestamp.IsZero() {
			msg.Entries[i].Timestamp = msg.SubmittedAt
		}
	}

	return &msg, nil
}
