package event

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// QueueName is the durable queue the notifier daemon consumes from.
const QueueName = "pipeline_events"

// AMQPBus publishes pipeline events to RabbitMQ for the notifier daemon.
type AMQPBus struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPBus(url string) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPBus{conn: conn, channel: ch}, nil
}

func (b *AMQPBus) Publish(evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return b.channel.Publish(
		"",
		QueueName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (b *AMQPBus) Close() {
	b.channel.Close()
	b.conn.Close()
}

var _ Bus = (*AMQPBus)(nil)
