package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch(t *testing.T) {
	msg, err := ParseBatch([]byte(`{
		"batchId": "b-1",
		"submittedAt": "2026-10-14T12:00:00Z",
		"entries": [
			{"action": "created", "company": "Acme", "timestamp": "2026-03-01T08:00:00Z"},
			{"action": "deleted", "company": "Beta"}
		]
	}`))

	require.NoError(t, err)
	assert.Equal(t, "b-1", msg.BatchID)
	require.Len(t, msg.Entries, 2)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), msg.Entries[0].Timestamp.UTC())
	assert.Equal(t, msg.SubmittedAt, msg.Entries[1].Timestamp, "missing timestamp falls back to submission time")
}

func TestParseBatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "not json", body: `not json`, want: ErrInvalidPayload},
		{name: "missing batch id", body: `{"entries":[{"action":"created"}]}`, want: ErrInvalidPayload},
		{name: "no entries", body: `{"batchId":"b-1","entries":[]}`, want: ErrEmptyBatch},
		{name: "entry without action", body: `{"batchId":"b-1","entries":[{"company":"Acme"}]}`, want: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch([]byte(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRetryableError(t *testing.T) {
	inner := ErrInvalidEntry
	err := NewRetryableError(inner)

	var retryable *RetryableError
	require.ErrorAs(t, err, &retryable)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "retryable error: invalid log entry", err.Error())
}
