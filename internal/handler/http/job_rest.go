package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/response"
)

type JobHandler struct {
	uc *usecase.JobUsecase
}

func NewJobHandler(uc *usecase.JobUsecase) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in usecase.JobInput
	if !decodeBody(w, r, &in) {
		return
	}

	job, err := h.uc.Create(r.Context(), ownerFor(r, in.ForUserID), in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, job)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	job, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	page, limit, offset := pageParams(r)

	var status *domain.JobStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.JobStatus(v)
		status = &s
	}

	jobs, total, err := h.uc.List(r.Context(), userID, status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Paginated(w, http.StatusOK, jobs, paginationOf(total, page, limit))
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in usecase.JobInput
	if !decodeBody(w, r, &in) {
		return
	}

	job, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "job deleted", nil)
}

func (h *JobHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	metrics, err := h.uc.Metrics(r.Context(), userID, daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, metrics)
}
