package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/response"
)

type EstimateHandler struct {
	uc *usecase.EstimateUsecase
}

func NewEstimateHandler(uc *usecase.EstimateUsecase) *EstimateHandler {
	return &EstimateHandler{uc: uc}
}

func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in usecase.EstimateInput
	if !decodeBody(w, r, &in) {
		return
	}

	estimate, err := h.uc.Create(r.Context(), ownerFor(r, in.ForUserID), in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, estimate)
}

func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	estimate, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, estimate)
}

func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	page, limit, offset := pageParams(r)

	var status *domain.EstimateStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.EstimateStatus(v)
		status = &s
	}

	estimates, total, err := h.uc.List(r.Context(), userID, status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Paginated(w, http.StatusOK, estimates, paginationOf(total, page, limit))
}

func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var in usecase.EstimateInput
	if !decodeBody(w, r, &in) {
		return
	}

	estimate, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, estimate)
}

func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "estimate deleted", nil)
}

func (h *EstimateHandler) ConvertToJob(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	job, estimate, err := h.uc.ConvertToJob(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"job":      job,
		"estimate": estimate,
	})
}

func (h *EstimateHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	metrics, err := h.uc.Metrics(r.Context(), userID, daysParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, metrics)
}
