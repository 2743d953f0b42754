package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/promopilot/promopilot-backend/internal/event"
	"github.com/promopilot/promopilot-backend/internal/sender"
)

// The notifier consumes pipeline events from RabbitMQ and turns them into
// user and admin chat notices. Failed sends are nacked back up to 3 times.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	adminChat := os.Getenv("ADMIN_CHAT_ID")
	tgSender := sender.NewTelegramSender(os.Getenv("BOT_TOKEN"))

	conn, err := amqp.Dial(os.Getenv("AMQP_URL"))
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		event.QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var evt event.Event
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				log.Println("Invalid event:", err)
				d.Ack(false)
				continue
			}

			err := notify(evt, tgSender, adminChat)
			if err != nil {
				log.Println("Failed to deliver notice:", err)
				var retryCount int32
				if d.Headers["x-retry-count"] != nil {
					retryCount = d.Headers["x-retry-count"].(int32)
				}
				if retryCount < 3 {
					d.Nack(false, true) // requeue
					continue
				}
			}

			d.Ack(false)
		}
	}()

	log.Println("Notifier running, waiting for events...")
	<-forever
}

func notify(evt event.Event, s sender.Sender, adminChat string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch evt.Topic {
	case event.TopicPaymentConfirmed:
		_, err := s.Send(ctx, adminChat,
			fmt.Sprintf("✅ Payment confirmed for order #%d, campaign is being scheduled.", evt.OrderID))
		return err
	case event.TopicPaymentExpired:
		_, err := s.Send(ctx, adminChat,
			fmt.Sprintf("⏰ Order #%d expired without payment. The user can retry with a new order.", evt.OrderID))
		return err
	case event.TopicPostFailed:
		_, err := s.Send(ctx, adminChat,
			fmt.Sprintf("❌ Post #%d (campaign #%d, channel %d) failed: %s", evt.PostID, evt.CampaignID, evt.ChannelID, evt.Error))
		return err
	case event.TopicCampaignCompleted:
		_, err := s.Send(ctx, adminChat,
			fmt.Sprintf("🏁 Campaign #%d finished all its posts.", evt.CampaignID))
		return err
	default:
		log.Println("Unknown topic, skipping:", evt.Topic)
		return nil
	}
}
