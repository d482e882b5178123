package usecase

import (
	"context"
	"log"
	"time"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/infra/queue"
)

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id int) (*entity.User, error)
}

// NotificationEmitterInterface is fire-and-forget on purpose: emission
// failure must never roll back the Lead/Client mutation that triggered it.
type NotificationEmitterInterface interface {
	Emit(userID int, kind, title, message string)
}

// NotificationEmitter persists the notification record and publishes it for
// the delivery worker. Runs detached from the request.
type NotificationEmitter struct {
	Repo  NotificationRepositoryInterface
	Users UserRepositoryInterface
	Queue QueueProducerInterface
}

func NewNotificationEmitter(
	repo NotificationRepositoryInterface,
	users UserRepositoryInterface,
	producer QueueProducerInterface,
) *NotificationEmitter {
	return &NotificationEmitter{
		Repo:  repo,
		Users: users,
		Queue: producer,
	}
}

func (e *NotificationEmitter) Emit(userID int, kind, title, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		n := entity.NewNotification(userID, kind, title, message)

		if err := e.Repo.Create(ctx, n); err != nil {
			log.Printf("⚠️ notification record for user %d not persisted: %v", userID, err)
		}

		payload := queue.NotificationPayload{
			NotificationID: n.ID,
			UserID:         userID,
			Kind:           kind,
			Title:          title,
			Message:        message,
		}

		if user, err := e.Users.FindByID(ctx, userID); err == nil {
			payload.UserName = user.Name
			payload.UserEmail = user.Email
		}

		if err := e.Queue.PublishNotification(ctx, payload); err != nil {
			log.Printf("⚠️ notification publish for user %d failed: %v", userID, err)
		}
	}()
}
