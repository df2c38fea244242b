package kafka

import (
	"encoding/json"
	"time"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string
}

// ParseRecord parses the message value as a loosely-keyed intake record.
// Upstream producers are not held to one key convention; the params package
// reconciles them downstream.
func (m *IncomingMessage) ParseRecord() (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(m.Value, &record); err != nil {
		return nil, err
	}
	return record, nil
}
