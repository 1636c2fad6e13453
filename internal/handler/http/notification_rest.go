package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/response"
)

type NotificationHandler struct {
	uc *usecase.NotificationUsecase
}

func NewNotificationHandler(uc *usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	page, limit, offset := pageParams(r)

	var isRead *bool
	switch r.URL.Query().Get("isRead") {
	case "true":
		v := true
		isRead = &v
	case "false":
		v := false
		isRead = &v
	}

	notifications, total, err := h.uc.ListNotifications(r.Context(), userID, isRead, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Paginated(w, http.StatusOK, notifications, paginationOf(total, page, limit))
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	notification, err := h.uc.MarkAsRead(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, notification)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.uc.MarkAllAsRead(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "all notifications marked as read", nil)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.uc.DeleteNotification(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "notification deleted", nil)
}

func (h *NotificationHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	settings, err := h.uc.GetSettings(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, settings)
}

func (h *NotificationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in struct {
		Settings []domain.SettingUpdate `json:"settings"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if len(in.Settings) == 0 {
		response.Error(w, http.StatusBadRequest, "no settings provided")
		return
	}

	settings, err := h.uc.UpdateSettings(r.Context(), userID, in.Settings)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, settings)
}
