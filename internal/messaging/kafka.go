package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/pkg/models"
)

const maxRetries = 3

// Event types carried in RatingEvent.Type.
const (
	EventRatingAdded   = "rating_added"
	EventRatingDeleted = "rating_deleted"
	EventTagAdded      = "tag_added"
)

// RatingEvent announces a persisted change to ratings or tags. Consumers
// rebuild the recommendation matrices from the data source; the payload is
// carried for logging and replay. For deletions Rating holds only the user
// and movie ids.
type RatingEvent struct {
	EventID    uuid.UUID     `json:"event_id"`
	Type       string        `json:"type"`
	Rating     models.Rating `json:"rating"`
	Tag        *models.Tag   `json:"tag,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	RetryCount int           `json:"retry_count"`
}

// ConsumerStats is the reader state exported as gauges.
type ConsumerStats struct {
	Lag    int64
	Offset int64
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Stats() kafka.ReaderStats
	Close() error
}

type MessageBus struct {
	writer    messageWriter
	reader    messageReader
	dlqWriter messageWriter
	topic     string
	dlqTopic  string
	baseDelay time.Duration
	logger    *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.Ratings,
		Balancer:     &kafka.Hash{}, // Key by user so a user's ratings stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topics.Ratings,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.DeadLetters,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return newMessageBus(writer, reader, dlqWriter, cfg.Kafka.Topics.Ratings, cfg.Kafka.Topics.DeadLetters, logger), nil
}

func newMessageBus(writer messageWriter, reader messageReader, dlq messageWriter, topic, dlqTopic string, logger *logrus.Logger) *MessageBus {
	return &MessageBus{
		writer:    writer,
		reader:    reader,
		dlqWriter: dlq,
		topic:     topic,
		dlqTopic:  dlqTopic,
		baseDelay: time.Second,
		logger:    logger,
	}
}

func (mb *MessageBus) PublishRating(ctx context.Context, rating models.Rating) error {
	return mb.publish(ctx, RatingEvent{Type: EventRatingAdded, Rating: rating})
}

func (mb *MessageBus) PublishRatingDeleted(ctx context.Context, userID, movieID int) error {
	return mb.publish(ctx, RatingEvent{
		Type:   EventRatingDeleted,
		Rating: models.Rating{UserID: userID, MovieID: movieID},
	})
}

func (mb *MessageBus) PublishTag(ctx context.Context, tag models.Tag) error {
	return mb.publish(ctx, RatingEvent{
		Type:   EventTagAdded,
		Rating: models.Rating{UserID: tag.UserID, MovieID: tag.MovieID},
		Tag:    &tag,
	})
}

func (mb *MessageBus) publish(ctx context.Context, event RatingEvent) error {
	event.EventID = uuid.New()
	event.Timestamp = time.Now()

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rating event: %w", err)
	}

	userKey := []byte(strconv.Itoa(event.Rating.UserID))
	message := kafka.Message{
		Key:   userKey,
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "user_id", Value: userKey},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mb.writer.WriteMessages(ctx, message); err != nil {
		mb.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to publish rating event")
		return fmt.Errorf("failed to write rating event to Kafka: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"event_type": event.Type,
		"user_id":    event.Rating.UserID,
		"movie_id":   event.Rating.MovieID,
		"topic":      mb.topic,
	}).Debug("Rating event published")

	return nil
}

// ConsumeRatings blocks until ctx is cancelled, handing every event to
// handler. Events that still fail after retries go to the dead letter topic.
func (mb *MessageBus) ConsumeRatings(ctx context.Context, handler func(RatingEvent) error) error {
	for {
		message, err := mb.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mb.logger.WithError(err).Error("Failed to read message from Kafka")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(mb.baseDelay):
			}
			continue
		}

		var event RatingEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			mb.logger.WithError(err).Error("Failed to unmarshal rating event")
			continue
		}

		if err := mb.processWithRetry(ctx, event, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mb.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to process rating event after retries")
			if dlqErr := mb.sendToDLQ(ctx, event, err); dlqErr != nil {
				mb.logger.WithError(dlqErr).Error("Failed to send rating event to DLQ")
			}
		}
	}
}

func (mb *MessageBus) processWithRetry(ctx context.Context, event RatingEvent, handler func(RatingEvent) error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			delay := mb.baseDelay * time.Duration(1<<uint(attempt-1))
			mb.logger.WithFields(logrus.Fields{
				"event_id": event.EventID,
				"attempt":  attempt,
				"delay":    delay,
			}).Info("Retrying rating event")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		event.RetryCount = attempt
		if err := handler(event); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": event.EventID,
				"attempt":  attempt,
			}).Warn("Rating event processing failed")

			if attempt == maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("unexpected retry loop exit")
}

func (mb *MessageBus) sendToDLQ(ctx context.Context, event RatingEvent, originalError error) error {
	dlqMessage := map[string]interface{}{
		"original_event": event,
		"error":          originalError.Error(),
		"dlq_timestamp":  time.Now(),
	}

	dlqBytes, err := json.Marshal(dlqMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.EventID.String()),
		Value: dlqBytes,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "original_topic", Value: []byte(mb.topic)},
			{Key: "error", Value: []byte(originalError.Error())},
		},
	}

	if err := mb.dlqWriter.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to DLQ: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"topic":    mb.dlqTopic,
		"error":    originalError.Error(),
	}).Warn("Rating event sent to DLQ")

	return nil
}

func (mb *MessageBus) Close() error {
	var errors []error

	if err := mb.writer.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close producer: %w", err))
	}

	if err := mb.reader.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close consumer: %w", err))
	}

	if err := mb.dlqWriter.Close(); err != nil {
		errors = append(errors, fmt.Errorf("failed to close DLQ writer: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors closing message bus: %v", errors)
	}

	return nil
}

// ConsumerStats reports how far the consumer group is behind the topic.
// Lag is -1 until the reader has fetched once.
func (mb *MessageBus) ConsumerStats() ConsumerStats {
	stats := mb.reader.Stats()
	return ConsumerStats{Lag: stats.Lag, Offset: stats.Offset}
}
