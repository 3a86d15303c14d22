package handler

import (
	"net/http"

	"github.com/Pesokrava/point_of_sale/internal/delivery/http/request"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/response"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	"github.com/Pesokrava/point_of_sale/internal/usecase/sales"
)

// SaleHandler handles HTTP requests for the sales history
type SaleHandler struct {
	ledger *sales.Ledger
	logger *logger.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(ledger *sales.Ledger, log *logger.Logger) *SaleHandler {
	return &SaleHandler{
		ledger: ledger,
		logger: log,
	}
}

// List handles GET /api/v1/sales
// @Summary List or search sales, most recent first
// @Description q matches payment method, item name or a dd/mm/yyyy date
// @Tags Sales
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} response.Envelope{data=[]domain.Sale} "Sales"
// @Router /sales [get]
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	history := h.ledger.Search(request.GetSearchQuery(r))
	response.List(w, history, len(history))
}

// GetByID handles GET /api/v1/sales/{id}
// @Summary Get a sale
// @Tags Sales
// @Produce json
// @Param id path string true "Sale ID (UUID)"
// @Success 200 {object} response.Envelope{data=domain.Sale} "Sale"
// @Failure 400 {object} response.ErrorBody "Invalid sale ID"
// @Failure 404 {object} response.ErrorBody "Sale not found"
// @Router /sales/{id} [get]
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	sale, err := h.ledger.Get(id)
	if err != nil {
		writeError(w, h.logger, err, "Sale not found")
		return
	}

	response.Success(w, sale)
}
