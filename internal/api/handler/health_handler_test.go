package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeDB struct {
	err error
}

func (f fakeDB) HealthCheck(context.Context) error {
	return f.err
}

func newHealthEngine(db HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler(&Dependencies{
		DB:        db,
		StartedAt: fixedNow.Add(-90 * time.Second),
		Now:       func() time.Time { return fixedNow },
	})

	r := gin.New()
	r.GET("/health", h.Health)
	return r
}

func TestHealth(t *testing.T) {
	w := serve(newHealthEngine(fakeDB{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2026-10-14T12:00:00Z", body["timestamp"])
	assert.Equal(t, float64(90), body["uptime"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	w := serve(newHealthEngine(fakeDB{err: errors.New("database health check failed: dial tcp")}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "database health check failed: dial tcp", body["error"])
}
