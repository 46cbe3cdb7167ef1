package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MilestoneEvent is published when an article's pageview counter lands
// exactly on a milestone value.
type MilestoneEvent struct {
	ArticleID string    `json:"article_id"`
	Views     int64     `json:"views"`
	At        time.Time `json:"at"`
}

// Producer publishes milestone events to Kafka. It is optional; when the
// broker is not configured the services run without it.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a new milestone event producer
func NewProducer(brokers []string, topic, clientID string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: clientID,
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// PublishMilestone sends one milestone event
func (p *Producer) PublishMilestone(ctx context.Context, articleID string, views int64) error {
	value, err := json.Marshal(MilestoneEvent{
		ArticleID: articleID,
		Views:     views,
		At:        time.Now(),
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(articleID),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish milestone event",
			zap.String("article_id", articleID),
			zap.Int64("views", views),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Milestone event published",
		zap.String("article_id", articleID),
		zap.Int64("views", views))

	return nil
}

// Close closes the underlying Kafka writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
