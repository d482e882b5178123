package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

func stage2Client() *entity.Client {
	c := stage1Client()
	c.ProcessingStaffID = intPtr(8)
	return c
}

func TestRecordMilestoneAppends(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	after := stage2Client()
	after.ProcessingStatus = entity.ActionHandedOverDownstream
	after.CompletedActions = []entity.CompletedAction{{Action: entity.ActionHandedOverDownstream}}

	mockRepo.On("FindByID", ctx, 9).Return(stage2Client(), nil)
	mockRepo.On("AppendAction", ctx, 9, mock.MatchedBy(func(a entity.CompletedAction) bool {
		return a.Action == entity.ActionHandedOverDownstream &&
			a.Label == entity.MilestoneLabels[entity.ActionHandedOverDownstream] &&
			a.CompletedBy == 8 &&
			a.CompletedByName == "Kripa"
	}), (*entity.FeeStatus)(nil)).Return(after, true, nil)

	uc := usecase.NewRecordMilestoneUseCase(mockRepo)

	requester := entity.User{ID: 8, Name: "Kripa", Role: entity.RoleProcessing}
	client, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: entity.ActionHandedOverDownstream}, requester)

	assert.NoError(t, err)
	assert.Len(t, client.CompletedActions, 1)
	assert.Equal(t, entity.ActionHandedOverDownstream, client.ProcessingStatus)
}

func TestRecordMilestonePendingPaymentSetsFeeStatus(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	firstInstallment := entity.FeeFirstInstallmentDone
	after := stage2Client()
	after.FeeStatus = &firstInstallment
	after.CompletedActions = []entity.CompletedAction{{Action: entity.ActionPendingPaymentDone}}

	mockRepo.On("FindByID", ctx, 9).Return(stage2Client(), nil)
	mockRepo.On("AppendAction", ctx, 9, mock.MatchedBy(func(a entity.CompletedAction) bool {
		return a.Action == entity.ActionPendingPaymentDone
	}), mock.MatchedBy(func(f *entity.FeeStatus) bool {
		return f != nil && *f == entity.FeeFirstInstallmentDone
	})).Return(after, true, nil)

	uc := usecase.NewRecordMilestoneUseCase(mockRepo)

	requester := entity.User{ID: 8, Name: "Kripa", Role: entity.RoleProcessing}
	client, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: entity.ActionPendingPaymentDone}, requester)

	assert.NoError(t, err)
	assert.Equal(t, entity.FeeFirstInstallmentDone, *client.FeeStatus)
	assert.Len(t, client.CompletedActions, 1)
}

func TestRecordMilestoneIdempotent(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	// The repo reports "already present" and returns the current client.
	current := stage2Client()
	current.CompletedActions = []entity.CompletedAction{{Action: entity.ActionVisaLodged, CompletedBy: 8}}
	current.ProcessingStatus = entity.ActionVisaLodged

	mockRepo.On("FindByID", ctx, 9).Return(current, nil)
	mockRepo.On("AppendAction", ctx, 9, mock.Anything, (*entity.FeeStatus)(nil)).Return(current, false, nil)

	uc := usecase.NewRecordMilestoneUseCase(mockRepo)
	requester := entity.User{ID: 8, Name: "Kripa", Role: entity.RoleProcessing}

	first, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: entity.ActionVisaLodged}, requester)
	assert.NoError(t, err)

	second, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: entity.ActionVisaLodged}, requester)
	assert.NoError(t, err)

	// Double submission: silent no-op, identical result, one history entry.
	assert.Equal(t, first, second)
	assert.Len(t, second.CompletedActions, 1)
}

func TestRecordMilestoneUnknownAction(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)
	uc := usecase.NewRecordMilestoneUseCase(mockRepo)

	requester := entity.User{ID: 8, Role: entity.RoleProcessing}
	_, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: "made_coffee"}, requester)

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, dErr.Code)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestRecordMilestoneForbiddenForStage1(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)
	mockRepo.On("FindByID", ctx, 9).Return(stage2Client(), nil)

	uc := usecase.NewRecordMilestoneUseCase(mockRepo)

	// Staff 7 holds Stage 1, not Stage 2.
	requester := entity.User{ID: 7, Role: entity.RoleProcessing}
	_, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: entity.ActionCaseClosed}, requester)

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeForbidden, dErr.Code)
	mockRepo.AssertNotCalled(t, "AppendAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordMilestoneAdminAllowed(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	after := stage2Client()
	after.CompletedActions = []entity.CompletedAction{{Action: entity.ActionCaseClosed}}

	mockRepo.On("FindByID", ctx, 9).Return(stage2Client(), nil)
	mockRepo.On("AppendAction", ctx, 9, mock.Anything, (*entity.FeeStatus)(nil)).Return(after, true, nil)

	uc := usecase.NewRecordMilestoneUseCase(mockRepo)

	requester := entity.User{ID: 1, Name: "Root", Role: entity.RoleAdmin}
	client, err := uc.Execute(ctx, 9, usecase.RecordMilestoneInput{Action: entity.ActionCaseClosed}, requester)

	assert.NoError(t, err)
	assert.Len(t, client.CompletedActions, 1)
}
