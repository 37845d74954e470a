package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"agriportal-go/models"
	"agriportal-go/utils"
)

func (h *Handlers) ListSchemes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SchemeFilter{
		Issuer:   models.Issuer(utils.SanitizeString(q.Get("issuer"))),
		CropType: utils.SanitizeString(q.Get("cropType")),
	}

	schemes, err := h.schemes.List(r.Context(), filter)
	if err != nil {
		h.internalError(w, r, "Failed to fetch schemes", err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"schemes": schemes})
}

func (h *Handlers) GetScheme(w http.ResponseWriter, r *http.Request) {
	scheme, err := h.schemes.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.serviceError(w, r, err, "Scheme not found", "Failed to fetch scheme")
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"scheme": scheme})
}

func (h *Handlers) CreateScheme(w http.ResponseWriter, r *http.Request) {
	var req models.SchemeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	scheme, err := h.schemes.Create(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err, "Scheme not found", "Failed to create scheme")
		return
	}
	h.logAuditAs(r, "CREATE", "SCHEME", scheme.ID, "Scheme created: "+scheme.Title)

	sendJSON(w, http.StatusCreated, map[string]interface{}{"scheme": scheme})
}

func (h *Handlers) UpdateScheme(w http.ResponseWriter, r *http.Request) {
	var patch models.SchemePatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	id := mux.Vars(r)["id"]
	scheme, err := h.schemes.Update(r.Context(), id, patch)
	if err != nil {
		h.serviceError(w, r, err, "Scheme not found", "Failed to update scheme")
		return
	}
	h.logAuditAs(r, "UPDATE", "SCHEME", id, "Scheme updated")

	sendJSON(w, http.StatusOK, map[string]interface{}{"scheme": scheme})
}

func (h *Handlers) DeleteScheme(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.schemes.Delete(r.Context(), id); err != nil {
		h.serviceError(w, r, err, "Scheme not found", "Failed to delete scheme")
		return
	}
	h.logAuditAs(r, "DELETE", "SCHEME", id, "Scheme deleted")

	sendJSON(w, http.StatusOK, map[string]string{"message": "Scheme deleted successfully"})
}
