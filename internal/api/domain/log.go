package domain

import (
	"errors"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
	MaxBulkEntries   = 1000
	TopCompanies     = 5
)

var (
	ErrLogNotFound     = errors.New("log entry not found")
	ErrActionRequired  = errors.New("action is required")
	ErrEmptyBatch      = errors.New("at least one entry is required")
	ErrBatchTooLarge   = errors.New("too many entries in one batch")
	ErrInvalidCursor   = errors.New("invalid cursor")
	ErrInvalidRange    = errors.New("from must not be after to")
)
