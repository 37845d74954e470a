package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"agriportal-go/config"
	"agriportal-go/middleware"
	"agriportal-go/models"
	"agriportal-go/services"
	"agriportal-go/utils"
)

// ErrorResponse represents a standardized error response
// Status: HTTP status code
// Error: Error message
// Details: Additional details about the error
// Timestamp: When the error occurred
type ErrorResponse struct {
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func sendError(w http.ResponseWriter, status int, err string, details interface{}) {
	sendJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     err,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type Handlers struct {
	db           *gorm.DB
	config       *config.Config
	log          *slog.Logger
	accounts     *services.Accounts
	schemes      *services.Schemes
	applications *services.Applications
}

func NewHandlers(db *gorm.DB, cfg *config.Config, log *slog.Logger, accounts *services.Accounts,
	schemes *services.Schemes, applications *services.Applications) *Handlers {
	return &Handlers{
		db:           db,
		config:       cfg,
		log:          log,
		accounts:     accounts,
		schemes:      schemes,
		applications: applications,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	sendJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"service":   "AgriPortalGo",
		"version":   "1.0.0",
	})
}

// decodeAndValidate reads a JSON body into dst and runs struct validation,
// writing the 400 response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationError(err))
		return false
	}
	return true
}

// internalError logs the cause and answers with a generic message.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.Error(msg, "path", r.URL.Path, "method", r.Method, "err", err)
	sendError(w, http.StatusInternalServerError, msg, nil)
}

// serviceError maps domain errors onto the HTTP error taxonomy.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		sendError(w, http.StatusNotFound, notFound, nil)
	case errors.Is(err, services.ErrSchemeNotFound):
		sendError(w, http.StatusNotFound, "Scheme not found", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, services.ErrPhoneTaken):
		sendError(w, http.StatusBadRequest, "Farmer already registered with this phone number", nil)
	case errors.Is(err, services.ErrDuplicateApplication):
		sendError(w, http.StatusBadRequest, "You have already applied for this scheme", nil)
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidSchemeWindow):
		sendError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.internalError(w, r, failure, err)
	}
}

// logAudit records an action in the audit trail. Failures are logged and
// never affect the response.
func (h *Handlers) logAudit(r *http.Request, actorID string, role models.Role, action, resource, resourceID, details string) {
	audit := models.AuditLog{
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
	if err := h.db.WithContext(r.Context()).Create(&audit).Error; err != nil {
		h.log.Warn("audit log write failed", "action", action, "resource", resource, "err", err)
	}
}

func (h *Handlers) logAuditAs(r *http.Request, action, resource, resourceID, details string) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		return
	}
	h.logAudit(r, claims.ID, claims.Role, action, resource, resourceID, details)
}
