package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	log    logrus.FieldLogger
}

func NewProducer(brokers []string, topic string, log logrus.FieldLogger) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{writer: writer, log: log.WithField("component", "kafka_producer")}
}

func (p *Producer) publish(ctx context.Context, eventType, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write %s message: %w", eventType, err)
	}
	return nil
}

func (p *Producer) PublishSearchCreated(ctx context.Context, event SearchCreatedEvent) error {
	event.EventType = EventSearchCreated
	if err := p.publish(ctx, EventSearchCreated, fmt.Sprintf("search_%d", event.SearchID), event); err != nil {
		return err
	}

	p.log.Infof("Published search_created event: search_id=%d", event.SearchID)
	return nil
}

func (p *Producer) PublishScrapeRequest(ctx context.Context, searchID uint) error {
	event := ScrapeRequestEvent{
		EventType: EventScrapeRequest,
		SearchID:  searchID,
		Timestamp: time.Now(),
	}
	if err := p.publish(ctx, EventScrapeRequest, "scrape_request", event); err != nil {
		return err
	}

	p.log.Info("Published scrape_request event")
	return nil
}

func (p *Producer) PublishNewListings(ctx context.Context, event NewListingsEvent) error {
	event.EventType = EventNewListings
	if event.FoundAt.IsZero() {
		event.FoundAt = time.Now()
	}
	if err := p.publish(ctx, EventNewListings, fmt.Sprintf("listings_search_%d", event.SearchID), event); err != nil {
		return err
	}

	p.log.Infof("Published new_listings event: search_id=%d, count=%d", event.SearchID, len(event.Listings))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
