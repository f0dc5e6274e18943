package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/dto"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateLog handles POST /api/logs
func (h *LogHandler) CreateLog(c *gin.Context) {
	h.logger.Info("CreateLog called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if req.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   domain.ErrActionRequired.Error(),
		})
		return
	}

	log := req.ToModel(h.now())
	if err := h.storage.CreateLog(c.Request.Context(), &log); err != nil {
		h.logger.Error("Failed to create log", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create log entry",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      log.ID,
	})
}

// ListLogs handles GET /api/logs
// Lists logs newest first with optional filtering and keyset pagination
func (h *LogHandler) ListLogs(c *gin.Context) {
	h.logger.Info("ListLogs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
	)

	var req dto.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 {
		req.Limit = domain.DefaultListLimit
	}

	if req.Limit > domain.MaxListLimit {
		req.Limit = domain.MaxListLimit
	}

	cursor, err := DecodeLogCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid cursor",
		})
		return
	}

	from, err := parseTime("from", req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	to, err := parseTime("to", req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if from != nil && to != nil && from.After(*to) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": domain.ErrInvalidRange.Error()})
		return
	}

	filter := storage.LogFilter{
		Action:   req.Action,
		Company:  req.Company,
		Username: req.Username,
		JobID:    req.JobID,
		From:     from,
		To:       to,
		Limit:    req.Limit,
		Cursor:   cursor,
	}

	logs, err := h.storage.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list logs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list log entries",
		})
		return
	}

	hasMore := len(logs) > req.Limit
	if hasMore {
		logs = logs[:req.Limit]
	}

	data := make([]dto.LogDTO, len(logs))
	for i, log := range logs {
		data[i] = dto.FromModel(log)
	}

	var nextCursor string
	if hasMore {
		last := logs[len(logs)-1]
		nextCursor = EncodeLogCursor(&storage.LogCursor{
			Timestamp: last.Timestamp,
			ID:        last.ID,
		})
	}

	c.JSON(http.StatusOK, dto.ListLogsResponse{
		Success:    true,
		Count:      len(data),
		Data:       data,
		NextCursor: nextCursor,
	})
}

// GetStats handles GET /api/logs/stats
func (h *LogHandler) GetStats(c *gin.Context) {
	h.logger.Info("GetStats called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	stats, err := h.storage.GetStats(c.Request.Context(), domain.TopCompanies)
	if err != nil {
		h.logger.Error("Failed to get stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to get log statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.FromStats(stats),
	})
}

// GetLog handles GET /api/logs/:id
func (h *LogHandler) GetLog(c *gin.Context) {
	id, ok := h.logID(c)
	if !ok {
		return
	}

	h.logger.Info("GetLog called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int64("id", id),
	)

	log, err := h.storage.GetLogByID(c.Request.Context(), id)
	if err != nil {
		h.writeLookupError(c, "Failed to get log", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.FromModel(*log),
	})
}

// DeleteLog handles DELETE /api/logs/:id
func (h *LogHandler) DeleteLog(c *gin.Context) {
	id, ok := h.logID(c)
	if !ok {
		return
	}

	h.logger.Info("DeleteLog called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int64("id", id),
	)

	if err := h.storage.DeleteLog(c.Request.Context(), id); err != nil {
		h.writeLookupError(c, "Failed to delete log", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// BulkImport handles POST /api/logs/bulk
// Validates the batch and hands it to the worker service through RabbitMQ
func (h *LogHandler) BulkImport(c *gin.Context) {
	h.logger.Info("BulkImport called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var reqs []dto.CreateLogRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if err := validateBatch(reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	now := h.now()
	msg := dto.BulkImportMessage{
		BatchID:     uuid.New().String(),
		SubmittedAt: now.UTC(),
		Entries:     make([]dto.LogDTO, len(reqs)),
	}
	c.Set(ContextKeyBatchID, msg.BatchID)
	for i, req := range reqs {
		msg.Entries[i] = dto.FromModel(req.ToModel(now))
	}

	body, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode batch", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to queue batch",
		})
		return
	}

	if err := h.publisher.PublishWithRetry(c.Request.Context(), body, "application/json"); err != nil {
		h.logger.Error("Failed to publish batch",
			slog.String("batch_id", msg.BatchID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Failed to queue batch",
		})
		return
	}

	h.logger.Info("Batch queued",
		slog.String("batch_id", msg.BatchID),
		slog.Int("entries", len(msg.Entries)),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"queued":  len(msg.Entries),
		"batchId": msg.BatchID,
	})
}

func (h *LogHandler) logID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid log id", slog.String("id", c.Param("id")))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (h *LogHandler) writeLookupError(c *gin.Context, msg string, err error) {
	if errors.Is(err, domain.ErrLogNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Log entry not found",
		})
		return
	}

	h.logger.Error(msg, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   msg,
	})
}

func validateBatch(reqs []dto.CreateLogRequest) error {
	if len(reqs) == 0 {
		return domain.ErrEmptyBatch
	}
	if len(reqs) > domain.MaxBulkEntries {
		return fmt.Errorf("%w: %d > %d", domain.ErrBatchTooLarge, len(reqs), domain.MaxBulkEntries)
	}
	for i, req := range reqs {
		if req.Action == "" {
			return fmt.Errorf("entry %d: %w", i, domain.ErrActionRequired)
		}
	}
	return nil
}

func parseTime(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", name)
	}
	return &ts, nil
}
