package usecase

import (
	"context"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/infra/queue"
)

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id int) (*entity.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*entity.Lead, error)

	// Update applies the whole patch as one statement; concurrent patches
	// serialize at the row, never merge field-by-field.
	Update(ctx context.Context, id int, input UpdateLeadInput) (*entity.Lead, error)

	// MarkConverted claims the lead for conversion. Returns
	// entity.ErrLeadAlreadyConverted when another conversion won the race.
	MarkConverted(ctx context.Context, id int) error
	RevertConverted(ctx context.Context, id int, previous entity.LeadStatus) error

	Delete(ctx context.Context, id int) error
}

type ClientRepositoryInterface interface {
	Create(ctx context.Context, client *entity.Client) error
	FindByID(ctx context.Context, id int) (*entity.Client, error)
	FindByLeadID(ctx context.Context, leadID int) (*entity.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]*entity.Client, error)
	Update(ctx context.Context, id int, input UpdateClientInput) (*entity.Client, error)

	// Handoff sets processing_staff_id and appends the handoff milestone in
	// one transaction. handedOff is false when the client already had a
	// Stage-2 operator (idempotent no-op).
	Handoff(ctx context.Context, id, staffID int, action entity.CompletedAction) (client *entity.Client, handedOff bool, err error)

	// AppendAction appends under a row lock; appended is false when the
	// action key was already present (idempotent no-op). feeStatus, when
	// non-nil, is set in the same transaction as the append.
	AppendAction(ctx context.Context, id int, action entity.CompletedAction, feeStatus *entity.FeeStatus) (client *entity.Client, appended bool, err error)

	Delete(ctx context.Context, id int) error
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *entity.Notification) error
}

type QueueProducerInterface interface {
	PublishNotification(ctx context.Context, payload queue.NotificationPayload) error
}

// OperatorSlots replaces the hard-coded "who is special" name checks from
// the old system: the two processing slots are configuration, resolved once
// at startup.
type OperatorSlots struct {
	Stage1ID int
	Stage2ID int
}
