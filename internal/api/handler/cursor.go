package handler

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
)

// DecodeLogCursor parses a base64 "unixnano|id" cursor. An empty string means the first page.
func DecodeLogCursor(cursorStr string) (*storage.LogCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected 2 parts, got %d", domain.ErrInvalidCursor, len(parts))
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp: %v", domain.ErrInvalidCursor, err)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id: %v", domain.ErrInvalidCursor, err)
	}

	return &storage.LogCursor{
		Timestamp: time.Unix(0, nanos).UTC(),
		ID:        id,
	}, nil
}

func EncodeLogCursor(cursor *storage.LogCursor) string {
	cs := fmt.Sprintf("%d|%d", cursor.Timestamp.UnixNano(), cursor.ID)
	return base64.URLEncoding.EncodeToString([]byte(cs))
}
