package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/DeepakChander/leadmaster-ai-web/internal/middleware"
	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
	"github.com/DeepakChander/leadmaster-ai-web/internal/service"
	"github.com/DeepakChander/leadmaster-ai-web/internal/webhook"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
)

// QueryHandler handles query submission and clarification endpoints.
type QueryHandler struct {
	dispatcher *service.Dispatcher
	logger     *logger.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(dispatcher *service.Dispatcher, log *logger.Logger) *QueryHandler {
	return &QueryHandler{
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Submit handles POST /api/v1/queries
func (h *QueryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.dispatcher.Submit(r.Context(), req.Query)
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, resp)
}

// FollowUp handles POST /api/v1/queries/clarify
func (h *QueryHandler) FollowUp(w http.ResponseWriter, r *http.Request) {
	var req model.FollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateFollowUp(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.dispatcher.FollowUp(r.Context(), req.Message)
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Session handles GET /api/v1/session
func (h *QueryHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dispatcher.Session())
}

func (h *QueryHandler) writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoDialogue):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, webhook.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "the automation did not respond in time, please try again")
	case errors.Is(err, webhook.ErrTransport):
		writeError(w, http.StatusBadGateway, "failed to reach the automation service")
	default:
		h.logger.Error("dispatch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to dispatch query")
	}
}
