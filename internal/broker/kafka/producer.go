// Package kafka publishes tracking-updated events for downstream consumers.
// Publishing is best effort: a broker outage is logged, never surfaced.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/packtrack/packtrack/internal/domain"
)

type TrackingUpdated struct {
	TrackingNumber   string    `json:"tracking_number"`
	OrderID          string    `json:"order_id,omitempty"`
	Status           string    `json:"status"`
	Location         string    `json:"location,omitempty"`
	Delivered        bool      `json:"delivered"`
	ExpectedDelivery string    `json:"expected_delivery,omitempty"`
	IsError          bool      `json:"is_error,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Producer struct {
	w      *kafkago.Writer
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	return &Producer{
		w: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

// PublishTrackingUpdated emits one event keyed by tracking number.
func (p *Producer) PublishTrackingUpdated(ctx context.Context, orderID string, tr domain.TrackingRecord) {
	msg := TrackingUpdated{
		TrackingNumber:   tr.TrackingNumber,
		OrderID:          orderID,
		Status:           tr.Status,
		Location:         tr.Location,
		Delivered:        tr.Delivered,
		ExpectedDelivery: tr.ExpectedDelivery,
		IsError:          tr.IsError,
		UpdatedAt:        tr.LastUpdated,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("marshal tracking event", zap.Error(err))
		return
	}

	if err := p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(tr.TrackingNumber),
		Value: value,
	}); err != nil {
		p.logger.Warn("kafka publish failed",
			zap.String("tracking_number", tr.TrackingNumber),
			zap.Error(err),
		)
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}
