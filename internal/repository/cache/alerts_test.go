package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

const alertKey = "pdv:low_stock"

type MockHashClient struct {
	mock.Mock
}

func (m *MockHashClient) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	args := m.Called(ctx, key, values)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockHashClient) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	args := m.Called(ctx, key, fields)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockHashClient) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.MapStringStringCmd)
}

func encodeAlert(t *testing.T, alert domain.StockAlert) string {
	t.Helper()
	data, err := json.Marshal(alert)
	require.NoError(t, err)
	return string(data)
}

func TestAlertStore_Raise(t *testing.T) {
	client := new(MockHashClient)
	store := NewAlertStore(client, alertKey)
	alert := domain.StockAlert{ProductID: uuid.New(), Name: "Arroz 5kg", Stock: 3, Threshold: 10}

	client.On("HSet", mock.Anything, alertKey, mock.MatchedBy(func(values []interface{}) bool {
		return len(values) == 2 && values[0] == alert.ProductID.String()
	})).Return(redis.NewIntResult(1, nil))

	err := store.Raise(context.Background(), alert)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestAlertStore_Clear(t *testing.T) {
	client := new(MockHashClient)
	store := NewAlertStore(client, alertKey)
	id := uuid.New()

	client.On("HDel", mock.Anything, alertKey, []string{id.String()}).Return(redis.NewIntResult(0, nil))

	assert.NoError(t, store.Clear(context.Background(), id))
	client.AssertExpectations(t)
}

func TestAlertStore_List(t *testing.T) {
	client := new(MockHashClient)
	store := NewAlertStore(client, alertKey)

	low := domain.StockAlert{ProductID: uuid.New(), Name: "Feijão Preto 1kg", Stock: 1, Threshold: 10, RaisedAt: time.Now().UTC()}
	high := domain.StockAlert{ProductID: uuid.New(), Name: "Arroz 5kg", Stock: 7, Threshold: 10, RaisedAt: time.Now().UTC()}

	client.On("HGetAll", mock.Anything, alertKey).Return(redis.NewMapStringStringResult(map[string]string{
		high.ProductID.String(): encodeAlert(t, high),
		low.ProductID.String():  encodeAlert(t, low),
	}, nil))

	alerts, err := store.List(context.Background())

	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, low.ProductID, alerts[0].ProductID)
	assert.Equal(t, high.ProductID, alerts[1].ProductID)
}

func TestAlertStore_List_Empty(t *testing.T) {
	client := new(MockHashClient)
	store := NewAlertStore(client, alertKey)

	client.On("HGetAll", mock.Anything, alertKey).Return(redis.NewMapStringStringResult(map[string]string{}, nil))

	alerts, err := store.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertStore_List_Errors(t *testing.T) {
	t.Run("redis failure", func(t *testing.T) {
		client := new(MockHashClient)
		store := NewAlertStore(client, alertKey)

		client.On("HGetAll", mock.Anything, alertKey).Return(redis.NewMapStringStringResult(nil, errors.New("connection reset")))

		_, err := store.List(context.Background())
		assert.Error(t, err)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		client := new(MockHashClient)
		store := NewAlertStore(client, alertKey)

		client.On("HGetAll", mock.Anything, alertKey).Return(redis.NewMapStringStringResult(map[string]string{
			uuid.New().String(): "{not json",
		}, nil))

		_, err := store.List(context.Background())
		assert.Error(t, err)
	})
}
