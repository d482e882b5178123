package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/policy"
)

// RecordMilestoneUseCase appends one completion flag to the client's
// history. Milestones are independent of each other on purpose: operators
// complete them in whatever order the case really moves, and re-recording
// an existing one returns the client unchanged without error.
type RecordMilestoneUseCase struct {
	Repo ClientRepositoryInterface
}

func NewRecordMilestoneUseCase(repo ClientRepositoryInterface) *RecordMilestoneUseCase {
	return &RecordMilestoneUseCase{Repo: repo}
}

func (uc *RecordMilestoneUseCase) Execute(ctx context.Context, clientID int, input RecordMilestoneInput, requester entity.User) (*entity.Client, error) {

	if !entity.ValidMilestone(input.Action) {
		return nil, ErrValidation("unknown milestone action: " + input.Action)
	}

	client, err := uc.Repo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrNotFound(fmt.Sprintf("client %d not found", clientID))
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	isOwner := client.IsStage2Operator(requester.ID)
	if !policy.CanWrite(requester.Role, policy.FieldMilestones, isOwner) {
		return nil, ErrForbidden(fmt.Sprintf("role %s cannot record milestones on client %d", requester.Role, clientID))
	}

	action := entity.CompletedAction{
		Action:          input.Action,
		Label:           entity.MilestoneLabels[input.Action],
		CompletedAt:     time.Now(),
		CompletedBy:     requester.ID,
		CompletedByName: requester.Name,
	}

	// Payment confirmation carries a fee-status side effect, transactional
	// with the append.
	var feeStatus *entity.FeeStatus
	if input.Action == entity.ActionPendingPaymentDone {
		done := entity.FeeFirstInstallmentDone
		feeStatus = &done
	}

	updated, _, err := uc.Repo.AppendAction(ctx, clientID, action, feeStatus)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to record milestone: " + err.Error()}
	}

	return updated, nil
}
