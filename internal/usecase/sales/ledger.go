package sales

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

// dateLayout is the dd/mm/yyyy form sales are searched by
const dateLayout = "02/01/2006"

// recentLimit is how many sales the dashboard shows
const recentLimit = 5

// Ledger is the in-memory, most-recent-first history of committed sales.
// Sales enter it only after they have been persisted.
type Ledger struct {
	mu       sync.RWMutex
	sales    []*domain.Sale
	repo     domain.Repository
	logger   *logger.Logger
	location *time.Location
}

// Stats summarizes the ledger for the dashboard
type Stats struct {
	TodayCount   int             `json:"todayCount"`
	TodayRevenue decimal.Decimal `json:"todayRevenue" swaggertype:"string" example:"8.50"`
	TotalRevenue decimal.Decimal `json:"totalRevenue" swaggertype:"string" example:"8.50"`
	SaleCount    int             `json:"saleCount"`
	Recent       []*domain.Sale  `json:"recent"`
}

// NewLedger creates an empty ledger; loc decides where "today" starts and how dates are searched
func NewLedger(repo domain.Repository, log *logger.Logger, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{
		sales:    []*domain.Sale{},
		repo:     repo,
		logger:   log,
		location: loc,
	}
}

// Load replaces the ledger with the repository contents
func (l *Ledger) Load(ctx context.Context) error {
	sales, err := l.repo.LoadSales(ctx)
	if err != nil {
		l.logger.Error("Failed to load sales", err)
		return err
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date.After(sales[j].Date)
	})

	l.mu.Lock()
	l.sales = sales
	l.mu.Unlock()

	l.logger.WithFields(map[string]interface{}{
		"sales": len(sales),
	}).Info("Sales history loaded")

	return nil
}

// Append records an already persisted sale, keeping the ledger ordered by date,
// most recent first. A sale dated like an existing one goes before it.
func (l *Ledger) Append(sale *domain.Sale) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := sort.Search(len(l.sales), func(i int) bool {
		return !l.sales[i].Date.After(sale.Date)
	})
	l.sales = slices.Insert(l.sales, idx, sale.Clone())
}

// List returns copies of all sales, most recent first
func (l *Ledger) List() []*domain.Sale {
	return l.filter(func(*domain.Sale) bool { return true })
}

// Get returns a copy of a sale
func (l *Ledger) Get(id uuid.UUID) (*domain.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.sales {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Search matches payment method or item name case-insensitively, or the sale date as dd/mm/yyyy
func (l *Ledger) Search(query string) []*domain.Sale {
	query = strings.TrimSpace(query)
	if query == "" {
		return l.List()
	}
	lower := strings.ToLower(query)

	return l.filter(func(s *domain.Sale) bool {
		if strings.Contains(strings.ToLower(s.PaymentMethod), lower) {
			return true
		}
		for _, item := range s.Items {
			if strings.Contains(strings.ToLower(item.Name), lower) {
				return true
			}
		}
		return strings.Contains(s.Date.In(l.location).Format(dateLayout), query)
	})
}

// Stats aggregates revenue for the calendar day of now and for the whole history
func (l *Ledger) Stats(now time.Time) Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	y, m, d := now.In(l.location).Date()
	stats := Stats{
		TodayRevenue: decimal.Zero,
		TotalRevenue: decimal.Zero,
		SaleCount:    len(l.sales),
		Recent:       make([]*domain.Sale, 0, recentLimit),
	}

	for i, s := range l.sales {
		stats.TotalRevenue = stats.TotalRevenue.Add(s.Total)

		sy, sm, sd := s.Date.In(l.location).Date()
		if sy == y && sm == m && sd == d {
			stats.TodayCount++
			stats.TodayRevenue = stats.TodayRevenue.Add(s.Total)
		}

		if i < recentLimit {
			stats.Recent = append(stats.Recent, s.Clone())
		}
	}

	return stats
}

func (l *Ledger) filter(keep func(*domain.Sale) bool) []*domain.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Sale, 0, len(l.sales))
	for _, s := range l.sales {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}
