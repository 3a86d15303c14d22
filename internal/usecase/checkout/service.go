package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	"github.com/Pesokrava/point_of_sale/internal/usecase/cart"
	"github.com/Pesokrava/point_of_sale/internal/usecase/catalog"
	"github.com/Pesokrava/point_of_sale/internal/usecase/sales"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Options holds the business rules applied at checkout
type Options struct {
	// PaymentMethods lists accepted labels; empty accepts any non-blank label
	PaymentMethods []string
	Policy         catalog.StockPolicy
}

// Service turns a cart into a persisted sale and the matching stock decrements
type Service struct {
	repo      domain.Repository
	catalog   *catalog.Store
	ledger    *sales.Ledger
	publisher EventPublisher
	logger    *logger.Logger
	methods   map[string]struct{}
	accepted  []string
	policy    catalog.StockPolicy
	now       func() time.Time
}

// NewService creates a new checkout service
func NewService(
	repo domain.Repository,
	store *catalog.Store,
	ledger *sales.Ledger,
	publisher EventPublisher,
	log *logger.Logger,
	opts Options,
) *Service {
	methods := make(map[string]struct{}, len(opts.PaymentMethods))
	for _, m := range opts.PaymentMethods {
		methods[m] = struct{}{}
	}

	return &Service{
		repo:      repo,
		catalog:   store,
		ledger:    ledger,
		publisher: publisher,
		logger:    log,
		methods:   methods,
		accepted:  append([]string{}, opts.PaymentMethods...),
		policy:    opts.Policy,
		now:       time.Now,
	}
}

// PaymentMethods returns the accepted payment labels
func (s *Service) PaymentMethods() []string {
	return append([]string{}, s.accepted...)
}

// Commit sells the cart's contents. Either the sale and every stock change are
// persisted and the cart is emptied, or nothing changes and the cart stays as it was.
func (s *Service) Commit(ctx context.Context, c *cart.Cart, paymentMethod string) (*domain.Sale, error) {
	lines, err := c.BeginCheckout()
	if err != nil {
		s.logger.Warnf("Checkout already running for cart %s", c.ID)
		return nil, err
	}

	committed := false
	defer func() {
		c.EndCheckout(committed)
	}()

	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := s.checkPaymentMethod(paymentMethod); err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:            uuid.New(),
		Date:          s.now(),
		Items:         make([]domain.SaleItem, 0, len(lines)),
		Total:         cart.TotalOf(lines),
		PaymentMethod: paymentMethod,
	}
	if err := domain.CheckMoney("total", sale.Total); err != nil {
		return nil, err
	}
	for _, l := range lines {
		sale.Items = append(sale.Items, domain.SaleItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
		})
	}

	changes, err := s.catalog.ApplySale(ctx, sale.Items, s.policy, func(ctx context.Context, changes []catalog.StockChange) error {
		return s.persist(ctx, sale, changes)
	})
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"cart_id": c.ID,
			"sale_id": sale.ID,
		}).Error("Checkout failed", err)
		return nil, err
	}

	s.ledger.Append(sale)
	committed = true

	s.publishEvent(sale)

	s.logger.WithFields(map[string]interface{}{
		"sale_id":        sale.ID,
		"cart_id":        c.ID,
		"total":          sale.Total.StringFixed(2),
		"items":          len(sale.Items),
		"stock_changes":  len(changes),
		"payment_method": sale.PaymentMethod,
	}).Info("Sale completed successfully")

	return sale.Clone(), nil
}

func (s *Service) checkPaymentMethod(method string) error {
	if strings.TrimSpace(method) == "" {
		return fmt.Errorf("%w: payment method is required", domain.ErrInvalidInput)
	}
	if len(s.methods) == 0 {
		return nil
	}
	if _, ok := s.methods[method]; !ok {
		return fmt.Errorf("%w: unsupported payment method %q", domain.ErrInvalidInput, method)
	}
	return nil
}

// persist writes the sale and its stock changes, atomically when the binding supports it
func (s *Service) persist(ctx context.Context, sale *domain.Sale, changes []catalog.StockChange) error {
	if committer, ok := s.repo.(domain.SaleCommitter); ok {
		adjusted := make([]*domain.Product, 0, len(changes))
		for _, change := range changes {
			adjusted = append(adjusted, change.After)
		}
		return committer.CommitSale(ctx, sale, adjusted)
	}

	written := make([]*domain.Product, 0, len(changes))
	for _, change := range changes {
		if _, err := s.repo.SaveProduct(ctx, change.After); err != nil {
			s.restore(ctx, written)
			return err
		}
		written = append(written, change.Before)
	}

	if _, err := s.repo.SaveSale(ctx, sale); err != nil {
		s.restore(ctx, written)
		return err
	}

	return nil
}

// restore writes back pre-sale stock after a partial failure
func (s *Service) restore(ctx context.Context, previous []*domain.Product) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range previous {
		if _, err := s.repo.SaveProduct(ctx, p); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"product_id": p.ID,
				"stock":      p.Stock,
			}).Error("Failed to restore stock after aborted checkout", err)
		}
	}
}

// publishEvent publishes a sale event (non-blocking)
func (s *Service) publishEvent(sale *domain.Sale) {
	if s.publisher == nil {
		return
	}

	event := domain.SaleEvent{
		EventType:  domain.EventSaleCompleted,
		Timestamp:  s.now(),
		Sale:       sale.Clone(),
		ProductIDs: sale.ProductIDs(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for sale %s", sale.ID)
		return
	}

	go func() {
		if err := s.publisher.Publish(context.Background(), domain.SubjectSaleEvents, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for sale %s", sale.ID)
		}
	}()
}
