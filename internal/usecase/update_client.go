package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/policy"
)

// UpdateClientUseCase covers the Stage-1 surface: fee fields plus profile
// corrections. Milestones and handoff have their own entry points.
type UpdateClientUseCase struct {
	Repo ClientRepositoryInterface
}

func NewUpdateClientUseCase(repo ClientRepositoryInterface) *UpdateClientUseCase {
	return &UpdateClientUseCase{Repo: repo}
}

func (uc *UpdateClientUseCase) Execute(ctx context.Context, id int, input UpdateClientInput, requester entity.User) (*entity.Client, error) {

	client, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrNotFound(fmt.Sprintf("client %d not found", id))
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	groups := touchedClientGroups(input)
	if len(groups) == 0 {
		return nil, ErrValidation("empty patch")
	}

	if input.FeeStatus != nil && !input.FeeStatus.Valid() {
		return nil, ErrValidation("unknown fee status: " + string(*input.FeeStatus))
	}
	if input.AmountPaid != nil && *input.AmountPaid < 0 {
		return nil, ErrValidation("amount_paid cannot be negative")
	}

	isOwner := client.IsStage1Operator(requester.ID)
	for _, group := range groups {
		owns := isOwner
		// The fee window closes at handoff: once a Stage-2 operator holds
		// the client, fee fields move only through milestones or an admin.
		if group == policy.FieldFees && client.ProcessingStaffID != nil {
			owns = false
		}
		if !policy.CanWrite(requester.Role, group, owns) {
			return nil, ErrForbidden(fmt.Sprintf("role %s cannot write %s on client %d", requester.Role, group, id))
		}
	}

	updated, err := uc.Repo.Update(ctx, id, input)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to update client: " + err.Error()}
	}

	return updated, nil
}

func touchedClientGroups(input UpdateClientInput) []policy.FieldGroup {
	var groups []policy.FieldGroup

	if input.Name != nil || input.Phone != nil || input.AltPhone != nil ||
		input.Whatsapp != nil || input.Email != nil || input.Age != nil ||
		input.Occupation != nil || input.Qualification != nil ||
		input.ExperienceYears != nil || input.TargetCountry != nil ||
		input.ResidingCountry != nil || input.Program != nil || input.IELTSScore != nil {
		groups = append(groups, policy.FieldProfile)
	}

	if input.FeeStatus != nil || input.AmountPaid != nil || input.PaymentDueDate != nil {
		groups = append(groups, policy.FieldFees)
	}

	return groups
}
