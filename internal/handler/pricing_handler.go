package handler

import (
	"net/http"

	"b2b-quote/internal/response"
	"b2b-quote/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PricingHandler serves volume price lists.
type PricingHandler struct {
	service service.PricingService
	logger  zerolog.Logger
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(service service.PricingService, logger zerolog.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		logger:  logger.With().Str("handler", "pricing").Logger(),
	}
}

// Get handles GET /api/pricing/{productId} requests. Without a quantity the
// price list is returned; with ?quantity=n the resolved tier and totals.
func (h *PricingHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if r.URL.Query().Get("quantity") == "" {
		pricing, err := h.service.Get(r.Context(), productID)
		if err != nil {
			response.WriteError(w, r, err, h.logger)
			return
		}
		response.WriteSuccess(w, http.StatusOK, "", pricing)
		return
	}

	quantity, err := intQuery(r, "quantity", 0)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	resolution, err := h.service.Resolve(r.Context(), productID, quantity)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "", resolution)
}
