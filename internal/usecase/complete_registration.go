package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/policy"
)

// CompleteRegistrationUseCase is the one place where two entities must
// change together: the Lead reaches its terminal status and exactly one
// Client is born carrying its fields. A saga claims the Lead first, creates
// the Client second, and reverts the claim if the insert fails; a failed
// revert is a CONSISTENCY_FAULT and must reach an operator, not a log file.
type CompleteRegistrationUseCase struct {
	LeadRepo   LeadRepositoryInterface
	ClientRepo ClientRepositoryInterface
	Slots      OperatorSlots
	Emitter    NotificationEmitterInterface
}

func NewCompleteRegistrationUseCase(
	leadRepo LeadRepositoryInterface,
	clientRepo ClientRepositoryInterface,
	slots OperatorSlots,
	emitter NotificationEmitterInterface,
) *CompleteRegistrationUseCase {
	return &CompleteRegistrationUseCase{
		LeadRepo:   leadRepo,
		ClientRepo: clientRepo,
		Slots:      slots,
		Emitter:    emitter,
	}
}

func (uc *CompleteRegistrationUseCase) Execute(ctx context.Context, leadID int, input CompleteRegistrationInput, requester entity.User) (*CompleteRegistrationOutput, error) {

	validationErrors := ValidateCompleteRegistrationInput(input)
	if len(validationErrors) > 0 {
		return nil, validationError(validationErrors)
	}

	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrNotFound(fmt.Sprintf("lead %d not found", leadID))
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	// Converting twice is a hard error, never a silent second Client.
	if lead.IsConverted() {
		return nil, ErrAlreadyConverted(fmt.Sprintf("lead %d already converted", leadID))
	}

	isOwner := lead.IsOwnedBy(requester.ID)
	if !policy.CanWrite(requester.Role, policy.FieldWorkflow, isOwner) {
		return nil, ErrForbidden(fmt.Sprintf("role %s cannot complete registration for lead %d", requester.Role, leadID))
	}

	client := entity.NewClientFromLead(lead,
		input.AssessmentAuthority,
		input.OccupationMapped,
		*input.RegistrationFeePaid,
		uc.Slots.Stage1ID,
	)

	previousStatus := lead.Status

	txn := NewTransaction()

	// Claiming first makes the conversion race-safe: the guarded update
	// admits exactly one winner.
	txn.AddOperation("claim_lead", func(ctx context.Context) error {
		return uc.LeadRepo.MarkConverted(ctx, leadID)
	})

	txn.AddCompensation("revert_lead", func(ctx context.Context) error {
		return uc.LeadRepo.RevertConverted(ctx, leadID, previousStatus)
	})

	txn.AddOperation("create_client", func(ctx context.Context) error {
		return uc.ClientRepo.Create(ctx, client)
	})

	if err := txn.Execute(ctx); err != nil {
		var rbErr *RollbackError
		if errors.As(err, &rbErr) {
			log.Printf("🚨 CONSISTENCY FAULT converting lead %d: %v", leadID, rbErr)
			return nil, ErrConsistencyFault(fmt.Sprintf("lead %d conversion tore and could not be rolled back: %v", leadID, rbErr))
		}
		if errors.Is(err, entity.ErrLeadAlreadyConverted) {
			return nil, ErrAlreadyConverted(fmt.Sprintf("lead %d already converted", leadID))
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to convert lead: " + err.Error()}
	}

	if uc.Emitter != nil {
		// The Stage-1 holder is usually the requester, so the configured
		// processing slot hears about the new client as well.
		recipients := []int{client.AssignedStaffID}
		if uc.Slots.Stage1ID != 0 && uc.Slots.Stage1ID != client.AssignedStaffID {
			recipients = append(recipients, uc.Slots.Stage1ID)
		}
		for _, staffID := range recipients {
			uc.Emitter.Emit(staffID, entity.NotificationClientReady,
				"New client ready for processing",
				fmt.Sprintf("Client #%d (%s) completed registration and is ready for Stage 1.", client.ID, client.Name))
		}
	}

	return &CompleteRegistrationOutput{
		ClientID:        client.ID,
		LeadID:          leadID,
		AssignedStaffID: client.AssignedStaffID,
		Status:          entity.LeadStatusRegistrationCompleted,
	}, nil
}
