package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Consumer struct {
	reader *kafka.Reader
	log    logrus.FieldLogger
}

func NewConsumer(brokers []string, topic, groupID string, log logrus.FieldLogger) *Consumer {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    10e3,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
	})

	return &Consumer{
		reader: reader,
		log:    log.WithFields(logrus.Fields{"component": "kafka_consumer", "group": groupID}),
	}
}

// ProcessEvents blocks until ctx is done. Handler errors are logged and the
// message is skipped.
func (c *Consumer) ProcessEvents(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Consumer stopping...")
				return ctx.Err()
			}
			c.log.WithError(err).Warn("Error reading message")
			continue
		}

		if err := c.handleMessage(message, handler); err != nil {
			c.log.WithError(err).Warn("Error handling message")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

type EventHandler interface {
	HandleSearchCreated(event SearchCreatedEvent) error
	HandleScrapeRequest(event ScrapeRequestEvent) error
	HandleNewListings(event NewListingsEvent) error
}

// IgnoreEvents is embedded by handlers interested in a subset of events.
type IgnoreEvents struct{}

func (IgnoreEvents) HandleSearchCreated(SearchCreatedEvent) error { return nil }
func (IgnoreEvents) HandleScrapeRequest(ScrapeRequestEvent) error { return nil }
func (IgnoreEvents) HandleNewListings(NewListingsEvent) error     { return nil }

func (c *Consumer) handleMessage(message kafka.Message, handler EventHandler) error {
	c.log.Debugf("Received message: key=%s, partition=%d, offset=%d",
		string(message.Key), message.Partition, message.Offset)

	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	switch envelope.EventType {
	case EventSearchCreated:
		var event SearchCreatedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return err
		}
		return handler.HandleSearchCreated(event)

	case EventScrapeRequest:
		var event ScrapeRequestEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return err
		}
		return handler.HandleScrapeRequest(event)

	case EventNewListings:
		var event NewListingsEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return err
		}
		return handler.HandleNewListings(event)

	case "":
		c.log.Warn("Unknown event format")
		return nil

	default:
		c.log.Warnf("Unknown event type: %s", envelope.EventType)
		return nil
	}
}
