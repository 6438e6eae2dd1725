// Package engine implements the HTTP surface of the backend: routing,
// middleware and the per-entity handlers calling the generic store and
// the conversion and dashboard services.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/projektcopilot/backend/internal/conversion"
	"github.com/projektcopilot/backend/internal/dashboard"
	"github.com/projektcopilot/backend/internal/store"
	"github.com/projektcopilot/backend/pkg/config"
	"github.com/projektcopilot/backend/pkg/database"
	"github.com/projektcopilot/backend/pkg/health"
	"github.com/projektcopilot/backend/pkg/logger"
)

// ServiceName and Version identify the backend in the root and health
// endpoints.
const (
	ServiceName = "projektcopilot"
	Version     = "2.0.0"
)

// Engine owns the HTTP server and the services behind it.
type Engine struct {
	config     *config.Config
	logger     *logger.Logger
	db         *database.SQLite
	store      *store.Store
	conversion *conversion.Service
	dashboard  *dashboard.Service
	checker    *health.Checker
	server     *http.Server
	state      struct {
		sync.Mutex
		isRunning         bool
		ongoingOperations int32
	}
	metrics struct {
		requestsProcessed int64
		errors            int64
	}
}

// NewEngine wires the services over the given database handle.
func NewEngine(cfg *config.Config, db *database.SQLite, log *logger.Logger) *Engine {
	st := store.New(db, log)
	return &Engine{
		config:     cfg,
		logger:     log,
		db:         db,
		store:      st,
		conversion: conversion.NewService(st, log),
		dashboard:  dashboard.NewService(st, log),
		checker:    health.NewChecker(),
	}
}

// Store returns the engine's record store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(log *logger.Logger) {
	e.logger = log
}

// Start ensures the schema exists and begins serving HTTP.
func (e *Engine) Start(ctx context.Context) error {
	e.state.Lock()
	if e.state.isRunning {
		e.state.Unlock()
		return fmt.Errorf("engine is already running")
	}
	e.state.isRunning = true
	e.state.Unlock()

	if err := e.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	server := NewServer(e)
	addr := e.config.ListenAddr()
	e.server = &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if e.logger != nil {
		e.logger.Infof("Starting HTTP server on %s (database: %s)", addr, e.db.Path())
	}

	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if e.logger != nil {
				e.logger.Errorf("HTTP server error: %v", err)
			}
		}
	}()

	return nil
}

// Stop shuts the HTTP server down gracefully.
func (e *Engine) Stop(ctx context.Context) error {
	e.state.Lock()
	e.state.isRunning = false
	e.state.Unlock()

	if e.server == nil {
		return nil
	}
	if e.logger != nil {
		e.logger.Info("Stopping HTTP server")
	}
	return e.server.Shutdown(ctx)
}

// TrackOperation marks the start of a request-scoped operation.
func (e *Engine) TrackOperation() {
	atomic.AddInt32(&e.state.ongoingOperations, 1)
	atomic.AddInt64(&e.metrics.requestsProcessed, 1)
}

// UntrackOperation marks the end of a request-scoped operation.
func (e *Engine) UntrackOperation() {
	atomic.AddInt32(&e.state.ongoingOperations, -1)
}

// TrackError counts a failed request.
func (e *Engine) TrackError() {
	atomic.AddInt64(&e.metrics.errors, 1)
}

// GetMetrics returns current engine counters.
func (e *Engine) GetMetrics() map[string]int64 {
	return map[string]int64{
		"requests_processed": atomic.LoadInt64(&e.metrics.requestsProcessed),
		"errors":             atomic.LoadInt64(&e.metrics.errors),
		"ongoing_operations": int64(atomic.LoadInt32(&e.state.ongoingOperations)),
	}
}

// HealthChecks returns the engine's health check functions.
func (e *Engine) HealthChecks() map[string]health.CheckFunc {
	return map[string]health.CheckFunc{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return e.db.Ping(ctx)
		},
	}
}

func (e *Engine) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		if e.logger != nil {
			e.logger.Errorf("Failed to encode JSON response: %v", err)
		}
	}
}

func (e *Engine) writeErrorResponse(w http.ResponseWriter, statusCode int, message, detail string) {
	if statusCode >= http.StatusInternalServerError {
		e.TrackError()
	}
	response := ErrorResponse{
		Error:   detail,
		Message: message,
		Status:  StatusError,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		if e.logger != nil {
			e.logger.Errorf("Failed to encode error response: %v", err)
		}
	}
}

// writeServiceError maps a service-layer error onto the HTTP error
// taxonomy: missing records are 404, rejected state transitions and
// bad input are 400, anything else is a 500.
func (e *Engine) writeServiceError(w http.ResponseWriter, err error) {
	var stateErr *conversion.StateError
	var inputErr *conversion.InputError

	switch {
	case store.IsNotFound(err):
		e.writeErrorResponse(w, http.StatusNotFound, err.Error(), "")
	case errors.As(err, &stateErr), errors.As(err, &inputErr), store.IsValueError(err):
		e.writeErrorResponse(w, http.StatusBadRequest, err.Error(), "")
	default:
		if e.logger != nil {
			e.logger.Errorf("Internal error: %v", err)
		}
		e.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}
