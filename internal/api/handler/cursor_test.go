package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
)

func TestLogCursor_RoundTrip(t *testing.T) {
	in := &storage.LogCursor{Timestamp: time.Date(2026, 3, 7, 10, 0, 0, 123, time.UTC), ID: 42}

	out, err := DecodeLogCursor(EncodeLogCursor(in))

	require.NoError(t, err)
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	assert.Equal(t, int64(42), out.ID)
}

func TestDecodeLogCursor(t *testing.T) {
	enc := func(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name    string
		cursor  string
		wantNil bool
		wantErr bool
	}{
		{name: "empty means first page", cursor: "", wantNil: true},
		{name: "not base64", cursor: "!!!", wantErr: true},
		{name: "one part", cursor: enc("123"), wantErr: true},
		{name: "bad timestamp", cursor: enc("abc|1"), wantErr: true},
		{name: "bad id", cursor: enc("123|x"), wantErr: true},
		{name: "valid", cursor: enc("1700000000000000000|7")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLogCursor(tt.cursor)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCursor)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, int64(7), got.ID)
		})
	}
}
