package logapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{
		BaseURL:        srv.URL + "/",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base url is required")

	c, err := NewClient(&Config{BaseURL: "http://localhost:3001"})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.timeout)
	assert.Equal(t, 2.0, c.multiplier)
}

func TestFilter_Values(t *testing.T) {
	from := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	v := Filter{Company: "Acme", Action: "created", From: from, Limit: 10}.Values()

	assert.Equal(t, "Acme", v.Get("company"))
	assert.Equal(t, "created", v.Get("action"))
	assert.Equal(t, "2026-01-02T03:04:05Z", v.Get("from"))
	assert.Equal(t, "10", v.Get("limit"))
	assert.False(t, v.Has("username"))
	assert.False(t, v.Has("to"))
	assert.False(t, v.Has("cursor"))
	assert.Empty(t, Filter{}.Values())
}

func TestFilter_Matches(t *testing.T) {
	ts := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	e := activity.Entry{Action: "created", Company: "Acme", Username: "sam", JobID: "42", Timestamp: ts}

	assert.True(t, Filter{}.Matches(e))
	assert.True(t, Filter{Company: "acme", Action: "created"}.Matches(e))
	assert.False(t, Filter{Action: "deleted"}.Matches(e))
	assert.False(t, Filter{Username: "kim"}.Matches(e))
	assert.False(t, Filter{JobID: "7"}.Matches(e))
	assert.False(t, Filter{From: ts.Add(time.Hour)}.Matches(e))
	assert.False(t, Filter{To: ts.Add(-time.Hour)}.Matches(e))
}

func TestClient_CreateLog(t *testing.T) {
	var got activity.Entry
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/logs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": 17})
	}, 0)

	id, err := c.CreateLog(context.Background(), activity.Entry{Action: "created", Company: "Acme"})

	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
	assert.Equal(t, "Acme", got.Company)
}

func TestClient_ListLogs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Acme", r.URL.Query().Get("company"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"count":      2,
			"nextCursor": "abc",
			"data": []map[string]any{
				{"id": 2, "timestamp": "2026-05-02T10:00:00Z", "action": "updated", "company": "Acme"},
				{"id": 1, "timestamp": "2026-05-01T10:00:00Z", "action": "created", "company": "Acme"},
			},
		})
	}, 0)

	page, err := c.ListLogs(context.Background(), Filter{Company: "Acme"})

	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, int64(2), page.Entries[0].ID)
	assert.Equal(t, time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC), page.Entries[0].Timestamp.UTC())
	assert.Equal(t, "abc", page.NextCursor)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}, 3)

	page, err := c.ListLogs(context.Background(), Filter{})

	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "db down"})
	}, 2)

	_, err := c.ListLogs(context.Background(), Filter{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, int32(3), calls.Load())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Log entry not found"})
	}, 5)

	_, err := c.GetLog(context.Background(), 99)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_OverallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewClient(&Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, MaxRetries: 10, InitialBackoff: time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Stats(context.Background())

	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_StatsAndBulk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/logs/stats":
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"total":        3,
					"byAction":     map[string]int{"created": 2, "deleted": 1},
					"topCompanies": []map[string]any{{"company": "Acme", "count": 3}},
				},
			})
		case "/api/logs/bulk":
			var entries []activity.Entry
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&entries))
			writeJSON(w, http.StatusAccepted, map[string]any{"success": true, "queued": len(entries), "batchId": "b-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, 0)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByAction["created"])
	assert.Equal(t, []CompanyCount{{Company: "Acme", Count: 3}}, stats.TopCompanies)

	res, err := c.BulkImport(context.Background(), []activity.Entry{{Action: "created"}, {Action: "updated"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Queued)
	assert.Equal(t, "b-1", res.BatchID)
}

func TestClient_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": "2026-10-14T00:00:00Z", "uptime": 12.5})
		}, 0)

		h := c.Health(context.Background())
		assert.Equal(t, "healthy", h.Status)
		assert.Equal(t, 12.5, h.Uptime)
	})

	t.Run("unreachable is synthesized", func(t *testing.T) {
		c, err := NewClient(&Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
		require.NoError(t, err)

		h := c.Health(context.Background())
		assert.Equal(t, "unhealthy", h.Status)
		assert.NotEmpty(t, h.Error)
	})
}

func TestClient_DeleteLog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/logs/5", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}, 0)

	require.NoError(t, c.DeleteLog(context.Background(), 5))
}
