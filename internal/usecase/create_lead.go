package usecase

import (
	"context"
	"fmt"

	"github.com/overseaspath/crm-backend/internal/entity"
)

type CreateLeadUseCase struct {
	Repo    LeadRepositoryInterface
	Emitter NotificationEmitterInterface
}

func NewCreateLeadUseCase(repo LeadRepositoryInterface, emitter NotificationEmitterInterface) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		Repo:    repo,
		Emitter: emitter,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput, requester entity.User) (*entity.Lead, error) {
	if !requester.CanManageLeads() {
		return nil, ErrForbidden("role " + string(requester.Role) + " cannot create leads")
	}

	validationErrors := ValidateCreateLeadInput(input)
	if len(validationErrors) > 0 {
		return nil, validationError(validationErrors)
	}

	lead, err := entity.NewLead(input.Name, input.Phone, input.Source, requester.ID)
	if err != nil {
		return nil, ErrValidation(err.Error())
	}

	lead.AltPhone = input.AltPhone
	lead.Whatsapp = input.Whatsapp
	lead.Email = input.Email
	lead.Age = input.Age
	lead.Occupation = input.Occupation
	lead.Qualification = input.Qualification
	lead.ExperienceYears = input.ExperienceYears
	lead.TargetCountry = input.TargetCountry
	lead.ResidingCountry = input.ResidingCountry
	lead.Program = input.Program
	lead.IELTSScore = input.IELTSScore

	// No assignment means Unassigned; an assignment at creation time means
	// Assigned. The two fields never disagree.
	if input.AssignedStaffID != nil {
		lead.AssignedStaffID = input.AssignedStaffID
		lead.Status = entity.LeadStatusAssigned
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to persist lead: " + err.Error()}
	}

	if lead.AssignedStaffID != nil && uc.Emitter != nil {
		uc.Emitter.Emit(*lead.AssignedStaffID, entity.NotificationLeadAssigned,
			"New lead assigned",
			fmt.Sprintf("Lead #%d (%s) has been assigned to you.", lead.ID, lead.Name))
	}

	return lead, nil
}
