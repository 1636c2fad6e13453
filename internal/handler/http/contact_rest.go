package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/response"
)

type ContactHandler struct {
	uc *usecase.ContactUsecase
}

func NewContactHandler(uc *usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{uc: uc}
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in usecase.ContactInput
	if !decodeBody(w, r, &in) {
		return
	}

	contact, err := h.uc.Create(r.Context(), ownerFor(r, in.ForUserID), in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	contact, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	page, limit, offset := pageParams(r)

	var status *domain.ContactStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.ContactStatus(v)
		status = &s
	}

	contacts, total, err := h.uc.List(r.Context(), userID, status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Paginated(w, http.StatusOK, contacts, paginationOf(total, page, limit))
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in usecase.ContactInput
	if !decodeBody(w, r, &in) {
		return
	}

	contact, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "contact deleted", nil)
}

func (h *ContactHandler) AddTags(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in struct {
		Tags []string `json:"tags"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	contact, err := h.uc.AddTags(r.Context(), chi.URLParam(r, "id"), userID, in.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) RemoveTags(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in struct {
		Tags []string `json:"tags"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	contact, err := h.uc.RemoveTags(r.Context(), chi.URLParam(r, "id"), userID, in.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) UpdatePipelineStage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in struct {
		PipelineStage string `json:"pipelineStage"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	contact, err := h.uc.UpdatePipelineStage(r.Context(), chi.URLParam(r, "id"), userID, in.PipelineStage)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contact)
}
