package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

const (
	// StreamName is the JetStream stream holding sale events
	StreamName = "SALES"

	// ConsumerName is the durable consumer of the stock alert worker
	ConsumerName = "stock-alert-worker"

	// MaxDeliveryAttempts bounds redeliveries; stock checks read current state,
	// so the next sale of the product repeats a dropped check
	MaxDeliveryAttempts = 3

	// AckWait is how long the worker has to ack before redelivery
	AckWait = 30 * time.Second

	streamMaxAge = 24 * time.Hour
)

// jetStreamManager is the subset of nats.JetStreamContext used to provision the stream
type jetStreamManager interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	ConsumerInfo(stream, name string, opts ...nats.JSOpt) (*nats.ConsumerInfo, error)
	AddConsumer(stream string, cfg *nats.ConsumerConfig, opts ...nats.JSOpt) (*nats.ConsumerInfo, error)
}

// StreamConfig provisions the sales stream and the worker consumer
type StreamConfig struct {
	js     jetStreamManager
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js jetStreamManager, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// backoffSchedule doubles the wait before each redelivery: 1s, 2s, 4s...
// MaxDeliver n needs n-1 entries since the first delivery is immediate.
func backoffSchedule(attempts int) []time.Duration {
	if attempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, attempts-1)
	for i := range backoff {
		backoff[i] = time.Second << i
	}
	return backoff
}

// EnsureStream creates the file-backed work-queue stream for sale events if missing
func (s *StreamConfig) EnsureStream() error {
	info, err := s.js.StreamInfo(StreamName)
	if err == nil {
		s.logger.WithFields(map[string]any{
			"stream":   info.Config.Name,
			"messages": info.State.Msgs,
		}).Debug("JetStream stream already exists")
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	_, err = s.js.AddStream(&nats.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{domain.SubjectSaleEvents},
		Retention:   nats.WorkQueuePolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      streamMaxAge,
		Discard:     nats.DiscardOld,
		Description: "Completed sales",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"stream":  StreamName,
		"subject": domain.SubjectSaleEvents,
	}).Info("JetStream stream created")
	return nil
}

// EnsureConsumer creates the durable explicit-ack consumer of the stock alert worker
func (s *StreamConfig) EnsureConsumer() error {
	info, err := s.js.ConsumerInfo(StreamName, ConsumerName)
	if err == nil {
		s.logger.WithFields(map[string]any{
			"consumer":    info.Name,
			"pending":     info.NumPending,
			"ack_pending": info.NumAckPending,
		}).Debug("JetStream consumer already exists")
		return nil
	}
	if !errors.Is(err, nats.ErrConsumerNotFound) {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	_, err = s.js.AddConsumer(StreamName, &nats.ConsumerConfig{
		Durable:       ConsumerName,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       AckWait,
		MaxDeliver:    MaxDeliveryAttempts,
		FilterSubject: domain.SubjectSaleEvents,
		BackOff:       backoffSchedule(MaxDeliveryAttempts),
		Description:   "Low-stock checks after each sale",
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	s.logger.Info("JetStream consumer created")
	return nil
}
