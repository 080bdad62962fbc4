package handler

import (
	"net/http"

	"b2b-quote/internal/model"
	"b2b-quote/internal/response"
	"b2b-quote/internal/service"

	"github.com/rs/zerolog"
)

// RFQHandler handles RFQ lifecycle HTTP requests.
type RFQHandler struct {
	service service.RFQService
	logger  zerolog.Logger
}

// NewRFQHandler creates a new RFQ handler.
func NewRFQHandler(service service.RFQService, logger zerolog.Logger) *RFQHandler {
	return &RFQHandler{
		service: service,
		logger:  logger.With().Str("handler", "rfq").Logger(),
	}
}

// Create handles POST /api/rfq requests.
func (h *RFQHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.CreateRFQRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, "RFQ created successfully", rfq)
}

// List handles GET /api/rfq requests with optional status filter and pagination.
func (h *RFQHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	status := model.RFQStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		response.WriteError(w, r, model.Validation("invalid status parameter %q", status), h.logger)
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfqs, err := h.service.List(r.Context(), p, status, limit, offset)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "", rfqs)
}

// GetByID handles GET /api/rfq/{id} requests.
func (h *RFQHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.GetByID(r.Context(), p, id)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "", rfq)
}

// AddQuote handles POST /api/rfq/{id}/quotes requests.
func (h *RFQHandler) AddQuote(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.SubmitQuoteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.AddQuote(r.Context(), p, id, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, "Quote submitted", rfq)
}

// AcceptQuote handles POST /api/rfq/{id}/quotes/{quoteId}/accept requests.
func (h *RFQHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	quoteID, err := uuidParam(r, "quoteId")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.AcceptQuote(r.Context(), p, id, quoteID)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "Quote accepted", rfq)
}

// CounterOffer handles POST /api/rfq/{id}/quotes/{quoteId}/counter requests.
func (h *RFQHandler) CounterOffer(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	quoteID, err := uuidParam(r, "quoteId")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.CounterOfferRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.CounterOffer(r.Context(), p, id, quoteID, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, "Counter-offer sent", rfq)
}

// Reject handles POST /api/rfq/{id}/reject requests. The body is optional.
func (h *RFQHandler) Reject(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.RejectRFQRequest
	if err := decodeOptionalJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.Reject(r.Context(), p, id, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "RFQ rejected", rfq)
}

// AttachDocument handles POST /api/rfq/{id}/documents requests.
func (h *RFQHandler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.AttachDocumentRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	rfq, err := h.service.AttachDocument(r.Context(), p, id, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, "Document attached", rfq)
}
