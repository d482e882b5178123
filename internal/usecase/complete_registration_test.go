package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

func registrationInput() usecase.CompleteRegistrationInput {
	paid := true
	return usecase.CompleteRegistrationInput{
		AssessmentAuthority: "VETASSESS",
		OccupationMapped:    "ICT",
		RegistrationFeePaid: &paid,
	}
}

func assignedLead() *entity.Lead {
	return &entity.Lead{
		ID:              1,
		Name:            "Arjun Nair",
		Phone:           "+61412345678",
		Status:          entity.LeadStatusAssigned,
		AssignedStaffID: intPtr(7),
		FollowUpStatus:  entity.FollowUpPending,
	}
}

func TestCompleteRegistrationSuccess(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)
	mockEmitter := new(MockEmitter)

	lead := assignedLead()

	mockLeadRepo.On("FindByID", ctx, 1).Return(lead, nil)
	mockLeadRepo.On("MarkConverted", ctx, 1).Return(nil)
	mockClientRepo.On("Create", ctx, mock.MatchedBy(func(c *entity.Client) bool {
		return c.LeadID == 1 &&
			c.AssignedStaffID == 7 &&
			c.AssessmentAuthority == "VETASSESS" &&
			c.OccupationMapped == "ICT" &&
			c.RegistrationFeePaid &&
			c.FeeStatus == nil &&
			len(c.CompletedActions) == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Client).ID = 42
	}).Return(nil)
	mockEmitter.On("Emit", 7, entity.NotificationClientReady, mock.Anything, mock.Anything).Return()
	mockEmitter.On("Emit", 3, entity.NotificationClientReady, mock.Anything, mock.Anything).Return()

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage1ID: 3, Stage2ID: 8}, mockEmitter)

	requester := entity.User{ID: 7, Name: "Priya", Role: entity.RoleSalesTeam}
	output, err := uc.Execute(ctx, 1, registrationInput(), requester)

	assert.NoError(t, err)
	assert.Equal(t, 42, output.ClientID)
	assert.Equal(t, 1, output.LeadID)
	assert.Equal(t, 7, output.AssignedStaffID)
	assert.Equal(t, entity.LeadStatusRegistrationCompleted, output.Status)

	// The processing slot hears about the client too, not just the
	// requesting Stage-1 holder.
	mockEmitter.AssertCalled(t, "Emit", 3, entity.NotificationClientReady, mock.Anything, mock.Anything)

	mockLeadRepo.AssertExpectations(t)
	mockClientRepo.AssertExpectations(t)
}

func TestCompleteRegistrationMissingFields(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage2ID: 8}, nil)

	input := registrationInput()
	input.OccupationMapped = ""
	input.RegistrationFeePaid = nil

	requester := entity.User{ID: 7, Role: entity.RoleSalesTeam}
	_, err := uc.Execute(ctx, 1, input, requester)

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, dErr.Code)

	// No state change on validation failure.
	mockLeadRepo.AssertNotCalled(t, "MarkConverted", mock.Anything, mock.Anything)
	mockClientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCompleteRegistrationAlreadyConverted(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)

	lead := assignedLead()
	lead.Status = entity.LeadStatusRegistrationCompleted

	mockLeadRepo.On("FindByID", ctx, 1).Return(lead, nil)

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage2ID: 8}, nil)

	requester := entity.User{ID: 7, Role: entity.RoleSalesTeam}
	_, err := uc.Execute(ctx, 1, registrationInput(), requester)

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeAlreadyConverted, dErr.Code)
	mockClientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCompleteRegistrationClaimRace(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)

	// Another request converted the lead between our read and our claim.
	mockLeadRepo.On("FindByID", ctx, 1).Return(assignedLead(), nil)
	mockLeadRepo.On("MarkConverted", ctx, 1).Return(entity.ErrLeadAlreadyConverted)

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage2ID: 8}, nil)

	requester := entity.User{ID: 7, Role: entity.RoleSalesTeam}
	_, err := uc.Execute(ctx, 1, registrationInput(), requester)

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeAlreadyConverted, dErr.Code)

	// The loser never creates a second client.
	mockClientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCompleteRegistrationRollsBackOnClientInsertFailure(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)

	mockLeadRepo.On("FindByID", ctx, 1).Return(assignedLead(), nil)
	mockLeadRepo.On("MarkConverted", ctx, 1).Return(nil)
	mockClientRepo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
	mockLeadRepo.On("RevertConverted", ctx, 1, entity.LeadStatusAssigned).Return(nil)

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage2ID: 8}, nil)

	requester := entity.User{ID: 7, Role: entity.RoleSalesTeam}
	_, err := uc.Execute(ctx, 1, registrationInput(), requester)

	assert.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))

	// Atomicity: the claim was compensated, so neither side holds.
	mockLeadRepo.AssertCalled(t, "RevertConverted", ctx, 1, entity.LeadStatusAssigned)
}

func TestCompleteRegistrationConsistencyFault(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)

	mockLeadRepo.On("FindByID", ctx, 1).Return(assignedLead(), nil)
	mockLeadRepo.On("MarkConverted", ctx, 1).Return(nil)
	mockClientRepo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
	mockLeadRepo.On("RevertConverted", ctx, 1, entity.LeadStatusAssigned).Return(errors.New("revert failed too"))

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage2ID: 8}, nil)

	requester := entity.User{ID: 7, Role: entity.RoleSalesTeam}
	_, err := uc.Execute(ctx, 1, registrationInput(), requester)

	tErr, ok := err.(*usecase.TechnicalError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeConsistency, tErr.Code)
}

func TestCompleteRegistrationForbiddenForNonOwner(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)

	mockLeadRepo.On("FindByID", ctx, 1).Return(assignedLead(), nil)

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage2ID: 8}, nil)

	// Staff 9 does not own lead 1.
	requester := entity.User{ID: 9, Role: entity.RoleSalesTeam}
	_, err := uc.Execute(ctx, 1, registrationInput(), requester)

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeForbidden, dErr.Code)
	mockLeadRepo.AssertNotCalled(t, "MarkConverted", mock.Anything, mock.Anything)
}

func TestCompleteRegistrationUnassignedLeadFallsBackToStage1Slot(t *testing.T) {
	ctx := context.Background()

	mockLeadRepo := new(MockLeadRepository)
	mockClientRepo := new(MockClientRepository)
	mockEmitter := new(MockEmitter)

	lead := assignedLead()
	lead.AssignedStaffID = nil
	lead.Status = entity.LeadStatusUnassigned

	mockLeadRepo.On("FindByID", ctx, 1).Return(lead, nil)
	mockLeadRepo.On("MarkConverted", ctx, 1).Return(nil)
	mockClientRepo.On("Create", ctx, mock.MatchedBy(func(c *entity.Client) bool {
		return c.AssignedStaffID == 3 // the configured Stage-1 slot
	})).Return(nil)
	mockEmitter.On("Emit", 3, entity.NotificationClientReady, mock.Anything, mock.Anything).Return()

	uc := usecase.NewCompleteRegistrationUseCase(mockLeadRepo, mockClientRepo,
		usecase.OperatorSlots{Stage1ID: 3, Stage2ID: 8}, mockEmitter)

	requester := entity.User{ID: 1, Role: entity.RoleAdmin}
	output, err := uc.Execute(ctx, 1, registrationInput(), requester)

	assert.NoError(t, err)
	assert.Equal(t, 3, output.AssignedStaffID)
}
