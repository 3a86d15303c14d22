package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Pesokrava/point_of_sale/internal/delivery/http/response"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	"github.com/Pesokrava/point_of_sale/internal/usecase/catalog"
	"github.com/Pesokrava/point_of_sale/internal/usecase/sales"
)

// AlertLister reads the low-stock alerts recorded by the stock worker
type AlertLister interface {
	List(ctx context.Context) ([]domain.StockAlert, error)
}

// DashboardHandler serves the summary views
type DashboardHandler struct {
	catalog   *catalog.Store
	ledger    *sales.Ledger
	alerts    AlertLister
	threshold int
	now       func() time.Time
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler; alerts may be nil when Redis is not configured
func NewDashboardHandler(store *catalog.Store, ledger *sales.Ledger, alerts AlertLister, threshold int, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		catalog:   store,
		ledger:    ledger,
		alerts:    alerts,
		threshold: threshold,
		now:       time.Now,
		logger:    log,
	}
}

// Dashboard is the payload of GET /api/v1/dashboard
type Dashboard struct {
	sales.Stats
	ProductCount      int               `json:"productCount"`
	LowStockThreshold int               `json:"lowStockThreshold"`
	LowStock          []*domain.Product `json:"lowStock"`
}

// Get handles GET /api/v1/dashboard
// @Summary Sales and stock overview
// @Description Today's sales and revenue, total revenue, recent sales and low-stock products
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope{data=Dashboard} "Dashboard"
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.Success(w, Dashboard{
		Stats:             h.ledger.Stats(h.now()),
		ProductCount:      len(h.catalog.List()),
		LowStockThreshold: h.threshold,
		LowStock:          h.catalog.LowStock(h.threshold),
	})
}

// Alerts handles GET /api/v1/alerts/low-stock
// @Summary Low-stock alerts raised after sales
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope{data=[]domain.StockAlert} "Alerts"
// @Failure 503 {object} response.ErrorBody "Alert store unavailable"
// @Router /alerts/low-stock [get]
func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		response.List(w, []domain.StockAlert{}, 0)
		return
	}

	alerts, err := h.alerts.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list stock alerts", err)
		response.Error(w, http.StatusServiceUnavailable, "Alert store unavailable")
		return
	}

	response.List(w, alerts, len(alerts))
}
