package handler

import (
	"net/http"

	"b2b-quote/internal/model"
	"b2b-quote/internal/response"
	"b2b-quote/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles buyer cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), p)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, cartMessage(cart, ""), cart)
}

// AddItem handles POST /api/cart requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.AddCartItemRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), p, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, http.StatusCreated, cart, "Item added to cart")
}

// UpdateQuantity handles PUT /api/cart/{id} requests.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
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

	var req model.UpdateCartItemRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), p, id, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, http.StatusOK, cart, "Quantity updated")
}

// SetCustomPrice handles PUT /api/cart/{id}/price requests.
func (h *CartHandler) SetCustomPrice(w http.ResponseWriter, r *http.Request) {
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

	var req model.SetCustomPriceRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.SetCustomPrice(r.Context(), p, id, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, http.StatusOK, cart, "Price updated")
}

// RemoveItem handles DELETE /api/cart/{id} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
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

	cart, err := h.service.RemoveItem(r.Context(), p, id)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, http.StatusOK, cart, "Item removed")
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.Clear(r.Context(), p)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, http.StatusOK, cart, "Cart cleared")
}

// Submit handles POST /api/cart/submit requests.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	var req model.SubmitCartRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.Submit(r.Context(), p, &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, "Cart submitted as RFQs", result)
}

// writeCart answers 202 when the change was queued instead of stored.
func (h *CartHandler) writeCart(w http.ResponseWriter, status int, cart *model.Cart, message string) {
	if cart.Mode == model.CartModeOffline {
		status = http.StatusAccepted
	}
	response.WriteSuccess(w, status, cartMessage(cart, message), cart)
}

func cartMessage(cart *model.Cart, message string) string {
	if cart.Mode == model.CartModeOffline {
		return "Working offline: changes will sync when the service recovers"
	}
	return message
}
