package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/policy"
)

type UpdateLeadUseCase struct {
	Repo    LeadRepositoryInterface
	Emitter NotificationEmitterInterface
}

func NewUpdateLeadUseCase(repo LeadRepositoryInterface, emitter NotificationEmitterInterface) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{
		Repo:    repo,
		Emitter: emitter,
	}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, id int, input UpdateLeadInput, requester entity.User) (*entity.Lead, error) {

	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrNotFound(fmt.Sprintf("lead %d not found", id))
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	if lead.IsConverted() {
		return nil, ErrAlreadyConverted(fmt.Sprintf("lead %d is archived after registration completion", id))
	}

	groups := touchedGroups(input)
	if len(groups) == 0 {
		return nil, ErrValidation("empty patch")
	}

	if err := validatePatchValues(input); err != nil {
		return nil, err
	}

	if err := validateAssignmentConsistency(lead, input); err != nil {
		return nil, err
	}

	// One disallowed field rejects the whole patch. Never a partial write
	// that the caller believes succeeded in full.
	isOwner := lead.IsOwnedBy(requester.ID)
	for _, group := range groups {
		if !policy.CanWrite(requester.Role, group, isOwner) {
			return nil, ErrForbidden(fmt.Sprintf("role %s cannot write %s on lead %d", requester.Role, group, id))
		}
	}

	if input.AssignedStaffID.Set && input.AssignedStaffID.Value == nil && !requester.IsAdmin() {
		return nil, ErrForbidden("owners may transfer a lead, not unassign it")
	}

	applyDerivedRules(lead, &input)

	updated, err := uc.Repo.Update(ctx, id, input)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to update lead: " + err.Error()}
	}

	if uc.Emitter != nil {
		if staffID := reassignedTo(lead, input); staffID != nil {
			uc.Emitter.Emit(*staffID, entity.NotificationLeadAssigned,
				"Lead assigned to you",
				fmt.Sprintf("Lead #%d (%s) has been assigned to you by %s.", updated.ID, updated.Name, requester.Name))
		}
	}

	return updated, nil
}

func touchedGroups(input UpdateLeadInput) []policy.FieldGroup {
	var groups []policy.FieldGroup

	if input.Name != nil || input.Phone != nil || input.AltPhone != nil ||
		input.Whatsapp != nil || input.Email != nil || input.Age != nil ||
		input.Occupation != nil || input.Qualification != nil ||
		input.ExperienceYears != nil || input.TargetCountry != nil ||
		input.ResidingCountry != nil || input.Program != nil ||
		input.IELTSScore != nil || input.Source != nil {
		groups = append(groups, policy.FieldProfile)
	}

	if input.Status != nil || input.Priority != nil || input.FollowUpDate != nil || input.Comment != nil {
		groups = append(groups, policy.FieldWorkflow)
	}

	if input.FollowUpStatus != nil {
		groups = append(groups, policy.FieldFollowUpStatus)
	}

	if input.AssignedStaffID.Set {
		groups = append(groups, policy.FieldAssignment)
	}

	return groups
}

func validatePatchValues(input UpdateLeadInput) error {
	if input.Status != nil {
		if *input.Status == entity.LeadStatusRegistrationCompleted {
			return ErrValidation("status cannot be set to Registration Completed directly; complete the registration instead")
		}
		if !input.Status.Valid() {
			return ErrValidation("unknown status: " + string(*input.Status))
		}
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return ErrValidation("unknown priority: " + string(*input.Priority))
	}
	if input.FollowUpStatus != nil && !input.FollowUpStatus.Valid() {
		return ErrValidation("unknown follow-up status: " + string(*input.FollowUpStatus))
	}
	return nil
}

// validateAssignmentConsistency holds the line that an unassigned lead only
// ever sits in Unassigned: a status change on a lead with no assignment must
// bring an assignment with it, and an unassign cannot smuggle in a working
// status.
func validateAssignmentConsistency(lead *entity.Lead, input UpdateLeadInput) error {
	if input.Status == nil || *input.Status == entity.LeadStatusUnassigned {
		return nil
	}

	assigned := lead.AssignedStaffID != nil
	if input.AssignedStaffID.Set {
		assigned = input.AssignedStaffID.Value != nil
	}
	if !assigned {
		return ErrValidation("an unassigned lead cannot move to status " + string(*input.Status) + "; assign a staff member first")
	}

	return nil
}

// applyDerivedRules keeps independently-editable fields consistent:
// assignment and status are denormalized against each other, and a newly
// introduced follow-up date resets the follow-up status to Pending.
func applyDerivedRules(lead *entity.Lead, input *UpdateLeadInput) {
	if input.AssignedStaffID.Set && input.Status == nil {
		if input.AssignedStaffID.Value != nil && lead.Status == entity.LeadStatusUnassigned {
			assigned := entity.LeadStatusAssigned
			input.Status = &assigned
		}
		if input.AssignedStaffID.Value == nil {
			unassigned := entity.LeadStatusUnassigned
			input.Status = &unassigned
		}
	}

	if input.FollowUpDate != nil && lead.FollowUpDate == nil && input.FollowUpStatus == nil {
		pending := entity.FollowUpPending
		input.FollowUpStatus = &pending
	}
}

func reassignedTo(lead *entity.Lead, input UpdateLeadInput) *int {
	if !input.AssignedStaffID.Set || input.AssignedStaffID.Value == nil {
		return nil
	}
	if lead.AssignedStaffID != nil && *lead.AssignedStaffID == *input.AssignedStaffID.Value {
		return nil
	}
	return input.AssignedStaffID.Value
}
