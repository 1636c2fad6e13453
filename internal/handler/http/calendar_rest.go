package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/response"
)

type CalendarHandler struct {
	uc *usecase.CalendarUsecase
}

func NewCalendarHandler(uc *usecase.CalendarUsecase) *CalendarHandler {
	return &CalendarHandler{uc: uc}
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in usecase.CalendarEventInput
	if !decodeBody(w, r, &in) {
		return
	}

	event, err := h.uc.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, event)
}

func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		to = &t
	}

	events, err := h.uc.List(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in usecase.CalendarEventInput
	if !decodeBody(w, r, &in) {
		return
	}

	event, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, event)
}

func (h *CalendarHandler) Related(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	relatedID := r.URL.Query().Get("relatedId")
	eventType := domain.CalendarEventType(r.URL.Query().Get("eventType"))

	events, err := h.uc.Related(r.Context(), userID, relatedID, eventType)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "event deleted", nil)
}
