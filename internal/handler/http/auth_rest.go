package http

import (
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/response"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in usecase.RegisterInput
	if !decodeBody(w, r, &in) {
		return
	}

	user, token, err := h.uc.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	user, token, err := h.uc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.uc.GetMe(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	user, err := h.uc.UpdateMe(r.Context(), userID, in.Name, in.PhoneNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := h.uc.ChangePassword(r.Context(), userID, in.CurrentPassword, in.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "password updated", nil)
}

func (h *AuthHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in struct {
		CompanyName string `json:"companyName"`
		CompanyLogo string `json:"companyLogo"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	user, err := h.uc.UpdateCompanyInfo(r.Context(), userID, in.CompanyName, in.CompanyLogo)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.uc.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "account deleted", nil)
}

// ListUsers is admin-only; the router gates it behind the role check.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.uc.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}
