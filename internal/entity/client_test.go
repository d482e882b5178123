package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/overseaspath/crm-backend/internal/entity"
)

func TestNewClientFromLeadCarriesProfileOver(t *testing.T) {
	staffID := 7
	lead := &entity.Lead{
		ID:              1,
		Name:            "Arjun Nair",
		Phone:           "+61412345678",
		Whatsapp:        "+61412345678",
		Email:           "arjun@example.com",
		Age:             31,
		Occupation:      "Software Engineer",
		Qualification:   "BTech",
		ExperienceYears: 8,
		TargetCountry:   "Australia",
		ResidingCountry: "India",
		Program:         "Skilled Migration",
		IELTSScore:      7.5,
		Source:          "Website",
		Status:          entity.LeadStatusAssigned,
		AssignedStaffID: &staffID,
	}

	client := entity.NewClientFromLead(lead, "VETASSESS", "ICT Business Analyst", true, 3)

	assert.Equal(t, 1, client.LeadID)
	assert.Equal(t, "Arjun Nair", client.Name)
	assert.Equal(t, "+61412345678", client.Phone)
	assert.Equal(t, "arjun@example.com", client.Email)
	assert.Equal(t, 31, client.Age)
	assert.Equal(t, "Software Engineer", client.Occupation)
	assert.Equal(t, 8, client.ExperienceYears)
	assert.Equal(t, "Australia", client.TargetCountry)
	assert.Equal(t, 7.5, client.IELTSScore)

	assert.Equal(t, "VETASSESS", client.AssessmentAuthority)
	assert.Equal(t, "ICT Business Analyst", client.OccupationMapped)
	assert.True(t, client.RegistrationFeePaid)

	// The sales owner continues as the Stage-1 operator.
	assert.Equal(t, 7, client.AssignedStaffID)
	assert.Nil(t, client.ProcessingStaffID)
	assert.Empty(t, client.CompletedActions)
}

func TestNewClientFromLeadUnassignedUsesFallback(t *testing.T) {
	lead := &entity.Lead{
		ID:     2,
		Name:   "Meena Pillai",
		Phone:  "+971501234567",
		Status: entity.LeadStatusUnassigned,
	}

	client := entity.NewClientFromLead(lead, "ACS", "Developer Programmer", false, 3)

	assert.Equal(t, 3, client.AssignedStaffID)
	assert.False(t, client.RegistrationFeePaid)
}

func TestHasAction(t *testing.T) {
	client := &entity.Client{
		CompletedActions: []entity.CompletedAction{
			{Action: entity.ActionAssignedToStage2},
			{Action: entity.ActionVisaLodged},
		},
	}

	assert.True(t, client.HasAction(entity.ActionVisaLodged))
	assert.False(t, client.HasAction(entity.ActionCaseClosed))
}

func TestStageOperatorChecks(t *testing.T) {
	stage2 := 8
	client := &entity.Client{AssignedStaffID: 7, ProcessingStaffID: &stage2}

	assert.True(t, client.IsStage1Operator(7))
	assert.False(t, client.IsStage1Operator(8))
	assert.True(t, client.IsStage2Operator(8))
	assert.False(t, client.IsStage2Operator(7))

	unhanded := &entity.Client{AssignedStaffID: 7}
	assert.False(t, unhanded.IsStage2Operator(8))
}
