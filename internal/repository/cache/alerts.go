package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// hashClient is the subset of go-redis used by AlertStore
type hashClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// AlertStore keeps open low-stock alerts in a single Redis hash keyed by product id
type AlertStore struct {
	client hashClient
	key    string
}

// NewAlertStore creates an alert store writing to the given hash key
func NewAlertStore(client hashClient, key string) *AlertStore {
	return &AlertStore{
		client: client,
		key:    key,
	}
}

// Raise stores or refreshes the alert for a product
func (s *AlertStore) Raise(ctx context.Context, alert domain.StockAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.key, alert.ProductID.String(), data).Err()
}

// Clear drops the alert of a product; clearing a missing alert is not an error
func (s *AlertStore) Clear(ctx context.Context, productID uuid.UUID) error {
	return s.client.HDel(ctx, s.key, productID.String()).Err()
}

// List returns open alerts, lowest stock first
func (s *AlertStore) List(ctx context.Context) ([]domain.StockAlert, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return []domain.StockAlert{}, nil
		}
		return nil, err
	}

	alerts := make([]domain.StockAlert, 0, len(fields))
	for field, raw := range fields {
		var alert domain.StockAlert
		if err := json.Unmarshal([]byte(raw), &alert); err != nil {
			return nil, fmt.Errorf("corrupt alert %s: %w", field, err)
		}
		alerts = append(alerts, alert)
	}

	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Stock != alerts[j].Stock {
			return alerts[i].Stock < alerts[j].Stock
		}
		return alerts[i].Name < alerts[j].Name
	})

	return alerts, nil
}
