package handlers

import (
	"net/http"
	"strconv"

	"agriportal-go/models"
)

func (h *Handlers) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.applications.Stats(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to fetch stats", err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

func (h *Handlers) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var auditLogs []models.AuditLog
	if err := h.db.WithContext(r.Context()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&auditLogs).Error; err != nil {
		h.internalError(w, r, "Failed to fetch audit logs", err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"auditLogs": auditLogs,
		"page":      page,
		"limit":     limit,
	})
}
