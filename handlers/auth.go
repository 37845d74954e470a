package handlers

import (
	"errors"
	"net/http"

	"agriportal-go/middleware"
	"agriportal-go/models"
	"agriportal-go/services"
	"agriportal-go/utils"
)

type principalResponse struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Username string      `json:"username,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	Role     models.Role `json:"role"`
}

// issueToken signs a token for the principal and sets the token cookie.
func (h *Handlers) issueToken(w http.ResponseWriter, id string, role models.Role) (string, error) {
	token, err := utils.GenerateToken(id, role)
	if err != nil {
		return "", err
	}
	middleware.SetTokenCookie(w, token, utils.TokenTTL(), h.config.CookieSecure)
	return token, nil
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	admin, err := h.accounts.AuthenticateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.log.Info("admin login rejected", "username", req.Username)
		}
		h.serviceError(w, r, err, "Invalid credentials", "Login failed")
		return
	}

	token, err := h.issueToken(w, admin.ID, models.RoleAdmin)
	if err != nil {
		h.internalError(w, r, "Login failed", err)
		return
	}
	h.logAudit(r, admin.ID, models.RoleAdmin, "LOGIN", "AUTH", admin.ID, "Admin logged in")

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"admin": principalResponse{
			ID:       admin.ID,
			Username: admin.Username,
			Role:     admin.Role,
		},
	})
}

func (h *Handlers) FarmerLogin(w http.ResponseWriter, r *http.Request) {
	var req models.FarmerLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	farmer, err := h.accounts.AuthenticateFarmer(r.Context(), utils.SanitizeString(req.Phone), req.Password)
	if err != nil {
		h.serviceError(w, r, err, "Invalid credentials", "Login failed")
		return
	}

	token, err := h.issueToken(w, farmer.ID, models.RoleFarmer)
	if err != nil {
		h.internalError(w, r, "Login failed", err)
		return
	}
	h.logAudit(r, farmer.ID, models.RoleFarmer, "LOGIN", "AUTH", farmer.ID, "Farmer logged in")

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"farmer": principalResponse{
			ID:    farmer.ID,
			Name:  farmer.Name,
			Phone: farmer.Phone,
			Role:  farmer.Role,
		},
	})
}

func (h *Handlers) FarmerRegister(w http.ResponseWriter, r *http.Request) {
	var req models.FarmerRegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	farmer, err := h.accounts.RegisterFarmer(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err, "Farmer not found", "Registration failed")
		return
	}

	token, err := h.issueToken(w, farmer.ID, models.RoleFarmer)
	if err != nil {
		h.internalError(w, r, "Registration failed", err)
		return
	}
	h.logAudit(r, farmer.ID, models.RoleFarmer, "CREATE", "FARMER", farmer.ID, "Farmer registered")

	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"token":   token,
		"farmer": principalResponse{
			ID:    farmer.ID,
			Name:  farmer.Name,
			Phone: farmer.Phone,
			Role:  farmer.Role,
		},
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearTokenCookie(w, h.config.CookieSecure)
	sendJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the profile of the signed-in principal.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		sendError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	switch claims.Role {
	case models.RoleAdmin:
		admin, err := h.accounts.GetAdmin(r.Context(), claims.ID)
		if err != nil {
			h.serviceError(w, r, err, "Admin not found", "Failed to load profile")
			return
		}
		sendJSON(w, http.StatusOK, map[string]interface{}{"admin": admin})
	case models.RoleFarmer:
		farmer, err := h.accounts.GetFarmer(r.Context(), claims.ID)
		if err != nil {
			h.serviceError(w, r, err, "Farmer not found", "Failed to load profile")
			return
		}
		farmer.BankAccount = utils.MaskAccount(farmer.BankAccount)
		sendJSON(w, http.StatusOK, map[string]interface{}{"farmer": farmer})
	default:
		sendError(w, http.StatusUnauthorized, "Unauthorized", nil)
	}
}
