package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crm-backend/internal/middleware"
	"crm-backend/internal/usecase"
	"crm-backend/pkg/logger"
	"crm-backend/pkg/response"
	"crm-backend/pkg/xerrors"

	"go.uber.org/zap"
)

type AIHandler struct {
	uc *usecase.ConversationUsecase
}

func NewAIHandler(uc *usecase.ConversationUsecase) *AIHandler {
	return &AIHandler{uc: uc}
}

// Webhook receives AI-generated messages from the automation workflow. The
// workflow retries on non-2xx, so every request is acknowledged with
// success regardless of validation outcome; rejected payloads are only
// logged.
func (h *AIHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ack := func() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}

	var in usecase.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.L().Warn("ai webhook: undecodable payload", zap.Error(err))
		ack()
		return
	}

	if _, err := h.uc.SaveInbound(r.Context(), in); err != nil {
		if usecase.IsRejectable(err) {
			logger.L().Warn("ai webhook: message rejected",
				zap.String("userID", in.UserID),
				zap.String("contactID", in.ContactID),
				zap.Error(err))
		} else {
			logger.L().Error("ai webhook: failed to save message", zap.Error(err))
		}
	}
	ack()
}

func (h *AIHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in struct {
		Message    string  `json:"message"`
		ContactID  string  `json:"contactId"`
		EstimateID *string `json:"estimateId"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	msg, forwarded, err := h.uc.Reply(r.Context(), userID, in.ContactID, in.EstimateID, in.Message)
	if err != nil {
		if errors.Is(err, xerrors.ErrForwardingFailed) {
			// The message made it to storage; the caller needs to know both
			// facts.
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(response.APIResponse{
				Status:  "error",
				Message: err.Error(),
				Data:    msg,
			})
			return
		}
		writeError(w, err)
		return
	}

	if !forwarded {
		response.JSONMessage(w, http.StatusCreated, "message saved, AI forwarding not configured", msg)
		return
	}
	response.JSON(w, http.StatusCreated, msg)
}

func (h *AIHandler) ContactHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	contactID := chi.URLParam(r, "contactId")

	messages, err := h.uc.History(r.Context(), userID, &contactID, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, messages)
}

func (h *AIHandler) EstimateHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	estimateID := chi.URLParam(r, "estimateId")

	messages, err := h.uc.History(r.Context(), userID, nil, &estimateID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, messages)
}

func (h *AIHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	threads, err := h.uc.ListThreads(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, threads)
}

func (h *AIHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.uc.ClearHistory(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	response.JSONMessage(w, http.StatusOK, "conversation history cleared", nil)
}
