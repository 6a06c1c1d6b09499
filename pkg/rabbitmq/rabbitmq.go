package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

const (
	// ExchangeOrders is the topic exchange order events are published to.
	ExchangeOrders = "orders"
	// QueueOrderEvents receives every event published under order.*.
	QueueOrderEvents = "order_events"

	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message body of both order routing keys.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId,omitempty"`
	ProductID  string    `json:"productId"`
	Status     string    `json:"status"`
	Price      string    `json:"price"`
	OccurredAt time.Time `json:"occurredAt"`
}

// DecodeOrderEvent parses a message body.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("failed to decode order event: %w", err)
	}
	if ev.OrderID == "" || ev.Type == "" {
		return ev, fmt.Errorf("order event is missing its type or order id")
	}
	return ev, nil
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // serializes publishes on channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the order exchange and queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, exchange %s and queue %s declared.", ExchangeOrders, QueueOrderEvents)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeOrders, // name
		"topic",        // kind
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ExchangeOrders, err)
	}
	if _, err := ch.QueueDeclare(
		QueueOrderEvents, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", QueueOrderEvents, err)
	}
	if err := ch.QueueBind(QueueOrderEvents, "order.*", ExchangeOrders, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", QueueOrderEvents, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishOrderEvent publishes ev on the order exchange under its type.
func (c *Client) PublishOrderEvent(ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	if err := c.Publish(ExchangeOrders, ev.Type, body); err != nil {
		return err
	}
	log.Printf(" [x] Sent %s for order %s", ev.Type, ev.OrderID)
	return nil
}

// ConsumeOrderEvents delivers decoded order events to handler on a background goroutine.
// Undecodable messages are dropped; handler failures are requeued once.
func (c *Client) ConsumeOrderEvents(handler func(OrderEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		QueueOrderEvents, // queue
		"",               // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for order events on %s", QueueOrderEvents)

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()
	return nil
}

func handleDelivery(msg amqp.Delivery, handler func(OrderEvent) error) {
	ev, err := DecodeOrderEvent(msg.Body)
	if err != nil {
		log.Printf("Dropping message %d: %v", msg.DeliveryTag, err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}
	if err := handler(ev); err != nil {
		log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
	}
}
