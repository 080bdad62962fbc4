package handler

import (
	"net/http"

	"b2b-quote/internal/response"
	"b2b-quote/internal/service"

	"github.com/rs/zerolog"
)

// QuoteHandler serves quote projections of RFQs.
type QuoteHandler struct {
	service service.QuoteService
	logger  zerolog.Logger
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service service.QuoteService, logger zerolog.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		logger:  logger.With().Str("handler", "quote").Logger(),
	}
}

// List handles GET /api/quotes requests.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	quotes, err := h.service.List(r.Context(), p, limit, offset)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "", quotes)
}

// GetByRFQ handles GET /api/quotes/{rfqId} requests.
func (h *QuoteHandler) GetByRFQ(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	rfqID, err := uuidParam(r, "rfqId")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	quote, err := h.service.GetByRFQ(r.Context(), p, rfqID)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "", quote)
}
