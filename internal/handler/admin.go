package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"

	"produce-lookup-api/internal/middleware"
	"produce-lookup-api/internal/service"
	"produce-lookup-api/pkg/apierror"
	"produce-lookup-api/pkg/response"
)

// AdminHandler serves the passcode gate and session endpoints for the
// admin dashboard.
type AdminHandler struct {
	sessions  *service.SessionService
	produce   *service.ProduceService
	dbType    string
	cacheType string
	logger    *zap.SugaredLogger
}

// NewAdminHandler creates a new admin handler. dbType and cacheType are
// surfaced in the stats payload so the dashboard shows which backends
// the instance runs on.
func NewAdminHandler(sessions *service.SessionService, produce *service.ProduceService, dbType, cacheType string, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{
		sessions:  sessions,
		produce:   produce,
		dbType:    dbType,
		cacheType: cacheType,
		logger:    logger,
	}
}

// LoginRequest is the passcode submission payload.
type LoginRequest struct {
	Passcode string `json:"passcode"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /admin/{routeToken}/api/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid request body"))
		return
	}

	token, session, err := h.sessions.Login(r.Context(), req.Passcode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPasscode) {
			response.Error(w, apierror.Unauthorized("Invalid passcode. Please try again."))
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	response.OK(w, LoginResponse{Token: token, ExpiresAt: session.ExpiresAt})
}

// Logout handles POST /admin/{routeToken}/api/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.SessionTokenHeader)
	if token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			h.logger.Warnw("session revoke failed", "error", err)
		}
	}
	response.NoContent(w)
}

// SessionInfo describes the authenticated admin session.
type SessionInfo struct {
	IssuedAt  int64     `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session handles GET /admin/{routeToken}/api/session
// Returns details of the current session so the dashboard can surface
// remaining time before the 30 minute expiry.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("Admin session required"))
		return
	}

	response.OK(w, SessionInfo{
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	})
}

// StatsResponse summarises the instance for the dashboard header.
type StatsResponse struct {
	TotalItems    int64   `json:"total_items"`
	DatabaseType  string  `json:"database_type"`
	CacheType     string  `json:"cache_type"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	MemoryMB      float64 `json:"memory_mb"`
	Goroutines    int     `json:"goroutines"`
}

// Stats handles GET /admin/{routeToken}/api/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.produce.Count(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.OK(w, StatsResponse{
		TotalItems:    total,
		DatabaseType:  h.dbType,
		CacheType:     h.cacheType,
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
		MemoryMB:      float64(memStats.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
	})
}
