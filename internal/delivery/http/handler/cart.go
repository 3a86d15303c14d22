package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/point_of_sale/internal/delivery/http/request"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/response"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	"github.com/Pesokrava/point_of_sale/internal/usecase/cart"
	"github.com/Pesokrava/point_of_sale/internal/usecase/catalog"
	"github.com/Pesokrava/point_of_sale/internal/usecase/checkout"
)

// CartHandler handles HTTP requests for carts and checkout
type CartHandler struct {
	carts    *cart.Registry
	catalog  *catalog.Store
	checkout *checkout.Service
	logger   *logger.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Registry, store *catalog.Store, service *checkout.Service, log *logger.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		catalog:  store,
		checkout: service,
		logger:   log,
	}
}

// AddItemRequest represents the request body for adding a product to a cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId" swaggertype:"string" format:"uuid"`
	// Quantity defaults to 1 when omitted
	Quantity *int `json:"quantity,omitempty"`
}

// SetQuantityRequest represents the request body for changing a line's quantity
type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CheckoutRequest represents the request body for completing a sale
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// LineView is a cart line as returned by the API
type LineView struct {
	cart.Line
	Subtotal decimal.Decimal `json:"subtotal" swaggertype:"string" example:"8.50"`
}

// CartView is a cart as returned by the API
type CartView struct {
	ID             uuid.UUID       `json:"id" swaggertype:"string" format:"uuid"`
	Items          []LineView      `json:"items"`
	ItemCount      int             `json:"itemCount"`
	Total          decimal.Decimal `json:"total" swaggertype:"string" example:"8.50"`
	PaymentMethods []string        `json:"paymentMethods"`
}

func (h *CartHandler) view(c *cart.Cart) CartView {
	lines := c.Lines()
	items := make([]LineView, 0, len(lines))
	count := 0
	for _, l := range lines {
		items = append(items, LineView{Line: l, Subtotal: l.Subtotal()})
		count += l.Quantity
	}
	return CartView{
		ID:             c.ID,
		Items:          items,
		ItemCount:      count,
		Total:          cart.TotalOf(lines),
		PaymentMethods: h.checkout.PaymentMethods(),
	}
}

func (h *CartHandler) lookup(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cart ID")
		return nil, false
	}

	c, err := h.carts.Get(id)
	if err != nil {
		writeError(w, h.logger, err, "Cart not found")
		return nil, false
	}
	return c, true
}

// Open handles POST /api/v1/carts
// @Summary Open a new empty cart
// @Tags Carts
// @Produce json
// @Success 201 {object} response.Envelope{data=CartView} "Cart"
// @Router /carts [post]
func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Open()
	h.logger.Debugf("Cart opened: %s", c.ID)
	response.Created(w, h.view(c))
}

// Get handles GET /api/v1/carts/{id}
// @Summary Get a cart with its total
// @Tags Carts
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Success 200 {object} response.Envelope{data=CartView} "Cart"
// @Failure 404 {object} response.ErrorBody "Cart not found"
// @Router /carts/{id} [get]
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	response.Success(w, h.view(c))
}

// Discard handles DELETE /api/v1/carts/{id}
// @Summary Discard a cart
// @Tags Carts
// @Param id path string true "Cart ID (UUID)"
// @Success 204 "Cart discarded"
// @Failure 404 {object} response.ErrorBody "Cart not found"
// @Router /carts/{id} [delete]
func (h *CartHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cart ID")
		return
	}

	if err := h.carts.Discard(id); err != nil {
		writeError(w, h.logger, err, "Cart not found")
		return
	}

	response.NoContent(w)
}

// AddItem handles POST /api/v1/carts/{id}/items
// @Summary Add a product to a cart
// @Description Adding a product already in the cart increases its quantity
// @Tags Carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param item body AddItemRequest true "Product and quantity"
// @Success 200 {object} response.Envelope{data=CartView} "Cart"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 404 {object} response.ErrorBody "Cart or product not found"
// @Failure 409 {object} response.ErrorBody "Checkout in progress"
// @Router /carts/{id}/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	if err := c.AddItem(product, quantity); err != nil {
		writeError(w, h.logger, err, "Cart not found")
		return
	}

	response.Success(w, h.view(c))
}

// SetQuantity handles PUT /api/v1/carts/{id}/items/{productID}
// @Summary Change a line's quantity
// @Description Zero or a negative quantity removes the line
// @Tags Carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param productID path string true "Product ID (UUID)"
// @Param quantity body SetQuantityRequest true "New quantity"
// @Success 200 {object} response.Envelope{data=CartView} "Cart"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 404 {object} response.ErrorBody "Cart not found"
// @Router /carts/{id}/items/{productID} [put]
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	productID, err := request.GetUUIDParam(r, "productID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req SetQuantityRequest
	if err := request.DecodeJSON(r, &req); err != nil || req.Quantity == nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.SetQuantity(productID, *req.Quantity); err != nil {
		writeError(w, h.logger, err, "Cart not found")
		return
	}

	response.Success(w, h.view(c))
}

// RemoveItem handles DELETE /api/v1/carts/{id}/items/{productID}
// @Summary Remove a product from a cart
// @Tags Carts
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param productID path string true "Product ID (UUID)"
// @Success 200 {object} response.Envelope{data=CartView} "Cart"
// @Failure 404 {object} response.ErrorBody "Cart not found"
// @Router /carts/{id}/items/{productID} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	productID, err := request.GetUUIDParam(r, "productID")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := c.RemoveItem(productID); err != nil {
		writeError(w, h.logger, err, "Cart not found")
		return
	}

	response.Success(w, h.view(c))
}

// Clear handles DELETE /api/v1/carts/{id}/items
// @Summary Empty a cart
// @Tags Carts
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Success 200 {object} response.Envelope{data=CartView} "Cart"
// @Failure 404 {object} response.ErrorBody "Cart not found"
// @Router /carts/{id}/items [delete]
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := c.Clear(); err != nil {
		writeError(w, h.logger, err, "Cart not found")
		return
	}

	response.Success(w, h.view(c))
}

// Checkout handles POST /api/v1/carts/{id}/checkout
// @Summary Complete the sale
// @Description Records the sale, decrements stock and empties the cart. On failure nothing changes.
// @Tags Carts
// @Accept json
// @Produce json
// @Param id path string true "Cart ID (UUID)"
// @Param payment body CheckoutRequest true "Payment method"
// @Success 201 {object} response.Envelope{data=domain.Sale} "Sale"
// @Failure 400 {object} response.ErrorBody "Empty cart, bad payment method or insufficient stock"
// @Failure 404 {object} response.ErrorBody "Cart not found"
// @Failure 409 {object} response.ErrorBody "Checkout already in progress"
// @Failure 503 {object} response.ErrorBody "Storage unavailable"
// @Failure 504 {object} response.ErrorBody "Storage timed out"
// @Router /carts/{id}/checkout [post]
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sale, err := h.checkout.Commit(r.Context(), c, req.PaymentMethod)
	if err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	response.Created(w, sale)
}
