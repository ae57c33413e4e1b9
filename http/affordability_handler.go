package http

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"elena-agent/domain"
	"elena-agent/service"
)

const (
	defaultTimelineLimit = 20
	maxTimelineLimit     = 100
)

type AffordabilityHandler struct {
	service   *service.AffordabilityService
	validator *RequestValidator
}

func NewAffordabilityHandler(service *service.AffordabilityService, validator *RequestValidator) *AffordabilityHandler {
	return &AffordabilityHandler{service: service, validator: validator}
}

func (h *AffordabilityHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var input domain.EvaluateRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields, err := h.validator.Validate(input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request", fields...)
		return
	}

	result, err := h.service.Evaluate(r.Context(), input)
	if err != nil {
		zap.L().Warn("affordability evaluation aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AffordabilityHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.validator.validator.Var(email, "email"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid email", "email")
		return
	}

	limit := defaultTimelineLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxTimelineLimit)
	}

	entries, err := h.service.Timeline(r.Context(), email, limit)
	if err != nil {
		zap.L().Error("error listing timeline", zap.String("email", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "entries": entries})
}
