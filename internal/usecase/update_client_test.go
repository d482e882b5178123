package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

func feePatch() usecase.UpdateClientInput {
	status := entity.FeeFirstInstallmentDone
	amount := 1500.0
	return usecase.UpdateClientInput{FeeStatus: &status, AmountPaid: &amount}
}

func TestUpdateClientFeesByStage1BeforeHandoff(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	client := stage1Client()
	mockRepo.On("FindByID", ctx, 9).Return(client, nil)
	mockRepo.On("Update", ctx, 9, mock.Anything).Return(client, nil)

	uc := usecase.NewUpdateClientUseCase(mockRepo)

	_, err := uc.Execute(ctx, 9, feePatch(), entity.User{ID: 7, Role: entity.RoleSalesTeam})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateClientFeesRejectedAfterHandoff(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	// Stage 2 already holds the client; the Stage-1 window is closed.
	mockRepo.On("FindByID", ctx, 9).Return(stage2Client(), nil)

	uc := usecase.NewUpdateClientUseCase(mockRepo)

	_, err := uc.Execute(ctx, 9, feePatch(), entity.User{ID: 7, Role: entity.RoleSalesTeam})

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeForbidden, dErr.Code)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateClientFeesByAdminAfterHandoff(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	client := stage2Client()
	mockRepo.On("FindByID", ctx, 9).Return(client, nil)
	mockRepo.On("Update", ctx, 9, mock.Anything).Return(client, nil)

	uc := usecase.NewUpdateClientUseCase(mockRepo)

	_, err := uc.Execute(ctx, 9, feePatch(), entity.User{ID: 1, Role: entity.RoleAdmin})
	assert.NoError(t, err)
}

func TestUpdateClientProfileStillOpenAfterHandoff(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)

	client := stage2Client()
	mockRepo.On("FindByID", ctx, 9).Return(client, nil)
	mockRepo.On("Update", ctx, 9, mock.Anything).Return(client, nil)

	uc := usecase.NewUpdateClientUseCase(mockRepo)

	// Contact corrections stay with the Stage-1 holder; only fees close.
	email := "arjun.nair@example.com"
	input := usecase.UpdateClientInput{Email: &email}

	_, err := uc.Execute(ctx, 9, input, entity.User{ID: 7, Role: entity.RoleSalesTeam})
	assert.NoError(t, err)
}

func TestUpdateClientEmptyPatchRejected(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockClientRepository)
	mockRepo.On("FindByID", ctx, 9).Return(stage1Client(), nil)

	uc := usecase.NewUpdateClientUseCase(mockRepo)

	_, err := uc.Execute(ctx, 9, usecase.UpdateClientInput{}, entity.User{ID: 7, Role: entity.RoleSalesTeam})

	dErr, ok := err.(*usecase.DomainError)
	assert.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, dErr.Code)
}
