package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/overseaspath/crm-backend/internal/entity"
)

// HandoffUseCase moves a Client from the Stage-1 operator to the configured
// Stage-2 slot. processing_staff_id is set at most once; a second call is a
// no-op, not an error, so a double-submitting UI stays harmless.
type HandoffUseCase struct {
	Repo    ClientRepositoryInterface
	Slots   OperatorSlots
	Emitter NotificationEmitterInterface
}

func NewHandoffUseCase(repo ClientRepositoryInterface, slots OperatorSlots, emitter NotificationEmitterInterface) *HandoffUseCase {
	return &HandoffUseCase{
		Repo:    repo,
		Slots:   slots,
		Emitter: emitter,
	}
}

func (uc *HandoffUseCase) Execute(ctx context.Context, clientID int, requester entity.User) (*HandoffOutput, error) {

	client, err := uc.Repo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrNotFound(fmt.Sprintf("client %d not found", clientID))
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	// Settable only by the current Stage-1 holder or an admin; Stage 2
	// never pulls a client to itself.
	if !requester.IsAdmin() && !client.IsStage1Operator(requester.ID) {
		return nil, ErrForbidden(fmt.Sprintf("only the Stage-1 operator or an admin can hand off client %d", clientID))
	}

	if client.ProcessingStaffID != nil {
		return &HandoffOutput{Client: client, HandedOff: false}, nil
	}

	action := entity.CompletedAction{
		Action:          entity.ActionAssignedToStage2,
		Label:           entity.MilestoneLabels[entity.ActionAssignedToStage2],
		CompletedAt:     time.Now(),
		CompletedBy:     requester.ID,
		CompletedByName: requester.Name,
	}

	updated, handedOff, err := uc.Repo.Handoff(ctx, clientID, uc.Slots.Stage2ID, action)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to hand off client: " + err.Error()}
	}

	if handedOff && uc.Emitter != nil {
		uc.Emitter.Emit(uc.Slots.Stage2ID, entity.NotificationHandoff,
			"Client handed off to you",
			fmt.Sprintf("Client #%d (%s) is now in Stage 2 processing.", updated.ID, updated.Name))
	}

	return &HandoffOutput{Client: updated, HandedOff: handedOff}, nil
}
