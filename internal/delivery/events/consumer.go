package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/point_of_sale/internal/config"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

// Handler processes one raw event payload
type Handler func(data []byte) error

// Consumer receives events over core NATS subscriptions
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	subs   []*nats.Subscription
}

// NewConsumer connects a consumer to NATS
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := Connect(cfg, "pos-notifier", log)
	if err != nil {
		return nil, err
	}

	log.Infof("Connected to NATS at %s", cfg.NATS.URL)

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe routes every message on subject to handler; handler errors are logged
func (c *Consumer) Subscribe(subject string, handler Handler) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.subs = append(c.subs, sub)
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close unsubscribes and closes the connection
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// ParseSaleEvent decodes a sale event payload
func ParseSaleEvent(data []byte) (*domain.SaleEvent, error) {
	var event domain.SaleEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("invalid sale event: %w", err)
	}
	if event.Sale == nil {
		return nil, fmt.Errorf("invalid sale event: missing sale")
	}
	return &event, nil
}

// LoggingHandler logs a one-line receipt for every sale event
func LoggingHandler(log *logger.Logger) Handler {
	return func(data []byte) error {
		event, err := ParseSaleEvent(data)
		if err != nil {
			return err
		}

		sale := event.Sale
		log.WithFields(map[string]interface{}{
			"event_type":     event.EventType,
			"sale_id":        sale.ID,
			"total":          sale.Total.StringFixed(2),
			"items":          len(sale.Items),
			"payment_method": sale.PaymentMethod,
		}).Info("Sale event received")

		for _, item := range sale.Items {
			log.Debugf("  %dx %s @ %s", item.Quantity, item.Name, item.UnitPrice.StringFixed(2))
		}
		return nil
	}
}
