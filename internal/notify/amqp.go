package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpPublisher is the part of *amqp.Channel the notifier needs
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes events to a fanout exchange; every bound queue gets a copy
type AMQPNotifier struct {
	ch       amqpPublisher
	exchange string
	close    func() error
}

// DialAMQP connects to the broker, declares a durable fanout exchange and
// returns a notifier publishing to it
func DialAMQP(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel open: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	n := NewAMQPNotifier(ch, exchange)
	n.close = func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return n, nil
}

// NewAMQPNotifier wraps an already opened channel
func NewAMQPNotifier(ch amqpPublisher, exchange string) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, exchange: exchange}
}

// Notify publishes event as a persistent JSON message
func (n *AMQPNotifier) Notify(ctx context.Context, event Event) error {
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(event.Kind),
		Body:         body,
	}
	if err := n.ch.PublishWithContext(ctx, n.exchange, "", false, false, pub); err != nil {
		return fmt.Errorf("amqp publish to %s: %w", n.exchange, err)
	}
	return nil
}

// Close releases the broker connection opened by DialAMQP
func (n *AMQPNotifier) Close() error {
	if n.close == nil {
		return nil
	}
	return n.close()
}
