package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"clicker_game/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const exchangeType = "topic"

// Publisher delivers gameplay events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev domain.GameEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.GameEvent) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

// AMQPPublisher publishes events to a durable topic exchange. The routing key
// is "game.<event type>" so consumers can bind to the kinds they track.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	mu       sync.Mutex // amqp channels are not safe for concurrent publish
	exchange string
	logger   *zap.Logger
}

func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	logger.Info("event exchange declared", zap.String("exchange", exchange), zap.String("type", exchangeType))

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.Named("EventPublisher"),
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev domain.GameEvent) error {
	msg, err := buildPublishing(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev.Type), false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("failed to publish game event", zap.Error(err), zap.String("type", ev.Type), zap.Int64("player_id", ev.PlayerID))
		return fmt.Errorf("failed to publish game event: %w", err)
	}

	p.logger.Debug("game event published", zap.String("type", ev.Type), zap.String("id", ev.ID))
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func RoutingKey(eventType string) string {
	return "game." + eventType
}

func buildPublishing(ev domain.GameEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal game event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}, nil
}
