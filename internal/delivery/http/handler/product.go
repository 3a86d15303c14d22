package handler

import (
	"net/http"

	"github.com/Pesokrava/point_of_sale/internal/delivery/http/request"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/response"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	"github.com/Pesokrava/point_of_sale/internal/usecase/catalog"
)

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	store     *catalog.Store
	threshold int
	logger    *logger.Logger
}

// NewProductHandler creates a new product handler; threshold is the default low-stock limit
func NewProductHandler(store *catalog.Store, threshold int, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		store:     store,
		threshold: threshold,
		logger:    log,
	}
}

// SetStockRequest represents the request body for a stock adjustment
type SetStockRequest struct {
	Stock *int `json:"stock"`
}

// Create handles POST /api/v1/products
// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Param product body domain.NewProduct true "Product details"
// @Success 201 {object} response.Envelope{data=domain.Product} "Product created"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 503 {object} response.ErrorBody "Storage unavailable"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewProduct
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.store.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	response.Created(w, product)
}

// List handles GET /api/v1/products
// @Summary List or search products
// @Description Without q lists every product in creation order; q matches name, category or barcode
// @Tags Products
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope{data=[]domain.Product} "Products"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products := h.store.Search(request.GetSearchQuery(r))
	response.List(w, products, len(products))
}

// LowStock handles GET /api/v1/products/low-stock
// @Summary List products below a stock threshold
// @Tags Products
// @Produce json
// @Param threshold query int false "Stock threshold"
// @Success 200 {object} response.Envelope{data=[]domain.Product} "Products"
// @Router /products/low-stock [get]
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products := h.store.LowStock(request.GetIntQuery(r, "threshold", h.threshold))
	response.List(w, products, len(products))
}

// GetByID handles GET /api/v1/products/{id}
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} response.Envelope{data=domain.Product} "Product"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.store.Get(id)
	if err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	response.Success(w, product)
}

// Update handles PATCH /api/v1/products/{id}
// @Summary Update a product
// @Description Only the fields present in the body change
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body domain.ProductPatch true "Fields to change"
// @Success 200 {object} response.Envelope{data=domain.Product} "Product updated"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Router /products/{id} [patch]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var patch domain.ProductPatch
	if err := request.DecodeJSON(r, &patch); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	response.Success(w, product)
}

// SetStock handles PUT /api/v1/products/{id}/stock
// @Summary Overwrite a product's stock
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param stock body SetStockRequest true "New stock level"
// @Success 200 {object} response.Envelope{data=domain.Product} "Product updated"
// @Failure 400 {object} response.ErrorBody "Invalid input"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Router /products/{id}/stock [put]
func (h *ProductHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req SetStockRequest
	if err := request.DecodeJSON(r, &req); err != nil || req.Stock == nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.store.SetStock(r.Context(), id, *req.Stock)
	if err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	response.Success(w, product)
}

// Delete handles DELETE /api/v1/products/{id}
// @Summary Delete a product
// @Description Past sales keep their item snapshots
// @Tags Products
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted"
// @Failure 400 {object} response.ErrorBody "Invalid product ID"
// @Failure 404 {object} response.ErrorBody "Product not found"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err, "Product not found")
		return
	}

	response.NoContent(w)
}
