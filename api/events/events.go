/* events.go
 * Contains the publisher for prediction events. Every committed prediction is written to Kafka so downstream
 * consumers (leaderboards, notifications) can follow the ledger without polling the store
 */

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"e-network/api/shared"
)

// DefaultPredictionTopic is the topic used when none is configured
const DefaultPredictionTopic = "prediction.recorded"

// PredictionRecorded is the payload of a prediction event
type PredictionRecorded struct {
	UserID    string    `json:"userId"`
	MatchID   shared.ID `json:"matchId"`
	TeamID    shared.ID `json:"teamId"`
	CreatedAt time.Time `json:"createdAt"`
	TsUnixMs  int64     `json:"tsUnixMs"`
}

// Publisher publishes prediction events
type Publisher interface {
	PublishPrediction(ctx context.Context, e PredictionRecorded) error
}

// MessageWriter is the part of *kafka.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer MessageWriter
	Topic  string
}

func NewKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// NewWriter creates a Kafka writer for the given brokers and topic
func NewWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultPredictionTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// PublishPrediction writes the event keyed by user id, so one user's events stay ordered within a partition
func (p *KafkaPublisher) PublishPrediction(ctx context.Context, e PredictionRecorded) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("error encoding prediction event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.UserID),
		Value: b,
		Time:  time.Now(),
	}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("error publishing prediction event: %w", err)
	}
	return nil
}

// NoopPublisher drops every event. It is used when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) PublishPrediction(context.Context, PredictionRecorded) error {
	return nil
}
