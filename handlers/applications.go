package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"agriportal-go/middleware"
	"agriportal-go/models"
	"agriportal-go/services"
)

func (h *Handlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		sendError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	apps, err := h.applications.List(r.Context(), claims.Role, claims.ID)
	if err != nil {
		h.internalError(w, r, "Failed to fetch applications", err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (h *Handlers) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil || claims.Role != models.RoleFarmer {
		sendError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req models.ApplicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	app, err := h.applications.Submit(r.Context(), claims.ID, req)
	if err != nil {
		h.serviceError(w, r, err, "Scheme not found", "Failed to submit application")
		return
	}
	h.logAudit(r, claims.ID, claims.Role, "CREATE", "APPLICATION", app.ID, "Applied for scheme "+app.SchemeID)

	sendJSON(w, http.StatusCreated, map[string]interface{}{"application": app})
}

func (h *Handlers) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil || claims.Role != models.RoleAdmin {
		sendError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req models.ApplicationReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id := mux.Vars(r)["id"]
	app, err := h.applications.Review(r.Context(), claims.ID, id, req)
	if err != nil {
		h.serviceError(w, r, err, "Application not found", "Failed to update application")
		return
	}
	h.logAudit(r, claims.ID, claims.Role, "UPDATE", "APPLICATION", id, "Status set to "+string(app.Status))

	sendJSON(w, http.StatusOK, map[string]interface{}{"application": app})
}

// ExportApplications streams every application as an XLSX workbook.
func (h *Handlers) ExportApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applications.ListAll(r.Context())
	if err != nil {
		h.internalError(w, r, "Failed to fetch applications", err)
		return
	}

	f, err := services.ApplicationsWorkbook(apps)
	if err != nil {
		h.internalError(w, r, "Failed to build export", err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("applications-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		h.log.Error("write export", "err", err)
	}
	h.logAuditAs(r, "EXPORT", "APPLICATION", "", fmt.Sprintf("Exported %d applications", len(apps)))
}
