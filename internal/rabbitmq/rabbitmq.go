package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"auth_service/internal/models"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func New(urlForConn string, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (r *RabbitMQClient) SendMessage(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.SendMessage"

	body, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// StartReading consumes the queue until ctx is done or the channel closes.
// A delivery is acked after handle returns nil and requeued once otherwise.
func (r *RabbitMQClient) StartReading(ctx context.Context, handle func(models.Message) error) error {
	const op = "rabbitmq.StartReading"

	deliveries, err := r.channel.Consume(
		r.queue.Name, "", false, false, false, false, nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%s: delivery channel closed", op)
			}

			msg, err := Decode(d.Body)
			if err != nil {
				// malformed messages will never succeed
				_ = d.Nack(false, false)
				continue
			}

			if err := handle(msg); err != nil {
				_ = d.Nack(false, !d.Redelivered)
				continue
			}

			_ = d.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}

func Encode(msg models.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(body []byte) (models.Message, error) {
	var msg models.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return models.Message{}, err
	}
	if msg.Email == "" {
		return models.Message{}, fmt.Errorf("message has no recipient")
	}

	return msg, nil
}
