// Package policy is the single access-control table behind every mutation.
// The checks the UI used to duplicate inline collapse into CanWrite, consumed
// uniformly by the use cases; nothing else in the tree decides permissions.
package policy

import "github.com/overseaspath/crm-backend/internal/entity"

type FieldGroup string

const (
	// Lead / Client assignment (assigned_staff_id). Owners may transfer,
	// never unassign; the unassign restriction lives in the use case since
	// it depends on the patch value, not the field.
	FieldAssignment FieldGroup = "assignment"

	// Lead status, priority, comment, follow-up date.
	FieldWorkflow FieldGroup = "workflow"

	FieldFollowUpStatus FieldGroup = "follow_up_status"

	// Contact/profile correction fields on Lead or Client.
	FieldProfile FieldGroup = "profile"

	// Fee fields on Client: amount_paid, fee_status, payment_due_date.
	// Written by the Stage-1 operator until handoff.
	FieldFees FieldGroup = "fees"

	// Milestone actions on Client, written by the Stage-2 operator.
	FieldMilestones FieldGroup = "milestones"
)

func isSalesRole(role entity.Role) bool {
	return role == entity.RoleSalesTeamHead || role == entity.RoleSalesTeam || role == entity.RoleStaff
}

// CanWrite decides (role, field group, ownership) → allowed. "Owner" means
// the requester is the record's assigned staff — for milestones, the
// Stage-2 operator. Pure; callers load the record and compute ownership.
func CanWrite(role entity.Role, field FieldGroup, isOwner bool) bool {
	if role == entity.RoleAdmin {
		return true
	}

	switch field {
	case FieldAssignment, FieldWorkflow, FieldProfile:
		return isSalesRole(role) && isOwner

	case FieldFollowUpStatus:
		return (isSalesRole(role) || role == entity.RoleProcessing) && isOwner

	case FieldFees:
		return (isSalesRole(role) || role == entity.RoleProcessing) && isOwner

	case FieldMilestones:
		return role == entity.RoleProcessing && isOwner
	}

	return false
}
