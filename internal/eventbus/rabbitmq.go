// Package eventbus consumes inventory events from RabbitMQ.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kart-pricing/internal/config"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const consumerTag = "kart-pricing-availability"

// ErrPermanentFailure marks a message that will never succeed. It is
// dead-lettered without further attempts.
var ErrPermanentFailure = errors.New("permanent failure processing message")

// MessageHandler processes one delivery. A nil error acknowledges it.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// RetryPolicy bounds the attempts spent on a delivery that keeps failing.
// The wait before attempt n+1 is n times Delay.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Consumer reads a durable queue bound to a topic exchange.
type Consumer struct {
	cfg     config.RabbitMQConfig
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  zerolog.Logger
}

// NewConsumer connects to RabbitMQ and declares the exchange, queue and binding.
func NewConsumer(cfg config.RabbitMQConfig, logger zerolog.Logger) (*Consumer, error) {
	c := &Consumer{
		cfg:    cfg,
		logger: logger.With().Str("component", "rabbitmq-consumer").Logger(),
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	c.conn = conn

	if err := c.setupTopology(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	c.logger.Info().
		Str("exchange", cfg.Exchange).
		Str("queue", cfg.Queue).
		Str("routing_key", cfg.RoutingKey).
		Str("dead_letter_exchange", cfg.DeadLetterExchange).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("RabbitMQ consumer ready")

	return c, nil
}

func (c *Consumer) setupTopology() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	c.channel = ch

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", c.cfg.Exchange, err)
	}

	if err := ch.ExchangeDeclare(c.cfg.DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter exchange %s: %w", c.cfg.DeadLetterExchange, err)
	}

	dlq := c.cfg.Queue + ".dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter queue %s: %w", dlq, err)
	}
	if err := ch.QueueBind(dlq, c.cfg.RoutingKey, c.cfg.DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead letter queue: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    c.cfg.DeadLetterExchange,
		"x-dead-letter-routing-key": c.cfg.RoutingKey,
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.cfg.Queue, err)
	}

	if err := ch.QueueBind(c.cfg.Queue, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

// Consume delivers messages to handler until ctx is cancelled or the channel
// closes. Messages are handled one at a time.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	msgs, err := c.channel.Consume(c.cfg.Queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info().Str("queue", c.cfg.Queue).Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			if err := c.channel.Cancel(consumerTag, false); err != nil {
				c.logger.Warn().Err(err).Msg("failed to cancel consumer")
			}
			return nil
		case delivery, ok := <-msgs:
			if !ok {
				c.logger.Warn().Msg("delivery channel closed, consumer stopping")
				return errors.New("delivery channel closed")
			}
			Dispatch(ctx, handler, delivery, RetryPolicy{MaxAttempts: c.cfg.MaxAttempts, Delay: c.cfg.RetryDelay}, c.logger)
		}
	}
}

// Dispatch runs handler and settles the delivery. Success acks it. A permanent
// failure, or a transient one that outlasts policy.MaxAttempts, is rejected
// without requeue so the broker dead-letters it. A delivery interrupted by
// shutdown goes back to the queue.
func Dispatch(ctx context.Context, handler MessageHandler, delivery amqp.Delivery, policy RetryPolicy, logger zerolog.Logger) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, delivery); err == nil {
			settle(delivery.Ack(false), logger)
			return
		}
		if errors.Is(err, ErrPermanentFailure) {
			break
		}

		logger.Warn().
			Err(err).
			Str("message_id", delivery.MessageId).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("failed to process message")

		if attempt == attempts {
			break
		}
		if !wait(ctx, time.Duration(attempt)*policy.Delay) {
			logger.Info().Str("message_id", delivery.MessageId).Msg("shutting down, requeueing message")
			settle(delivery.Nack(false, true), logger)
			return
		}
	}

	logger.Error().Err(err).Str("message_id", delivery.MessageId).Msg("dead-lettering message")
	settle(delivery.Nack(false, false), logger)
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func settle(err error, logger zerolog.Logger) {
	if err != nil {
		logger.Error().Err(err).Msg("failed to settle delivery")
	}
}

// Close closes the channel and the connection.
func (c *Consumer) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
