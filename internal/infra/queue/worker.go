package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/overseaspath/crm-backend/internal/infra/http/middleware"
)

// NotificationSender is the delivery contract (SMTP today; anything that can
// reach the affected user tomorrow).
type NotificationSender interface {
	SendNotification(to, name, title, message string) error
}

// Worker drains q.notifications and hands each record to the sender.
// A failed send nacks to the DLQ; the triggering Lead/Client mutation is
// long since committed.
type Worker struct {
	Channel *amqp.Channel
	Sender  NotificationSender
}

func NewWorker(ch *amqp.Channel, sender NotificationSender) *Worker {
	return &Worker{
		Channel: ch,
		Sender:  sender,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ Failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload NotificationPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] Invalid JSON: %s", err)
				// Malformed message. Reject without requeue so the queue keeps moving.
				middleware.RecordNotificationError()
				d.Nack(false, false)
				continue
			}

			if payload.UserEmail == "" {
				// Nothing to deliver to; the persisted record is still visible in-app.
				d.Ack(false)
				continue
			}

			if err := w.Sender.SendNotification(payload.UserEmail, payload.UserName, payload.Title, payload.Message); err != nil {
				log.Printf("❌ [WORKER] Delivery failed for %s: %s", payload.UserEmail, err)
				middleware.RecordNotificationError()
				d.Nack(false, false)
			} else {
				log.Printf("✅ [WORKER] Notification %s delivered to %s", payload.Kind, payload.UserEmail)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Notification worker waiting on queue '%s'", queueName)
	<-forever
}
