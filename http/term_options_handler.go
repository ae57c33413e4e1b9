package http

import (
	"net/http"

	"go.uber.org/zap"

	"elena-agent/domain"
	"elena-agent/service"
)

type TermOptionsHandler struct {
	service   *service.TermOptionsService
	validator *RequestValidator
}

func NewTermOptionsHandler(service *service.TermOptionsService, validator *RequestValidator) *TermOptionsHandler {
	return &TermOptionsHandler{service: service, validator: validator}
}

func (h *TermOptionsHandler) RecommendTerm(w http.ResponseWriter, r *http.Request) {
	var input domain.TermOptionsRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields, err := h.validator.Validate(input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request", fields...)
		return
	}

	result, err := h.service.RecommendTerm(r.Context(), input)
	if err != nil {
		zap.L().Warn("term recommendation aborted", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
