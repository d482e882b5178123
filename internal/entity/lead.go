package entity

import (
	"errors"
	"time"
)

type LeadStatus string

const (
	LeadStatusUnassigned    LeadStatus = "Unassigned"
	LeadStatusAssigned      LeadStatus = "Assigned"
	LeadStatusFollowUp      LeadStatus = "Follow-up"
	LeadStatusProspect      LeadStatus = "Prospect"
	LeadStatusPendingLead   LeadStatus = "Pending Lead"
	LeadStatusNotEligible   LeadStatus = "Not Eligible"
	LeadStatusNotInterested LeadStatus = "Not Interested"

	// Terminal. A converted Lead is archival: exactly one Client replaces
	// it and the Lead never transitions back.
	LeadStatusRegistrationCompleted LeadStatus = "Registration Completed"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusUnassigned, LeadStatusAssigned, LeadStatusFollowUp,
		LeadStatusProspect, LeadStatusPendingLead, LeadStatusNotEligible,
		LeadStatusNotInterested, LeadStatusRegistrationCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHot           Priority = "hot"
	PriorityWarm          Priority = "warm"
	PriorityCold          Priority = "cold"
	PriorityNotInterested Priority = "not interested"
	PriorityNotEligible   Priority = "not eligible"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHot, PriorityWarm, PriorityCold, PriorityNotInterested, PriorityNotEligible:
		return true
	}
	return false
}

type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "Pending"
	FollowUpCompleted FollowUpStatus = "Completed"
	FollowUpSkipped   FollowUpStatus = "Skipped"
)

func (f FollowUpStatus) Valid() bool {
	return f == FollowUpPending || f == FollowUpCompleted || f == FollowUpSkipped
}

var ErrLeadAlreadyConverted = errors.New("lead already converted")

type Lead struct {
	ID int `json:"id"`

	Name     string `json:"name"`
	Phone    string `json:"phone"`
	AltPhone string `json:"alt_phone,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`

	Age             int     `json:"age,omitempty"`
	Occupation      string  `json:"occupation,omitempty"`
	Qualification   string  `json:"qualification,omitempty"`
	ExperienceYears int     `json:"experience_years,omitempty"`
	TargetCountry   string  `json:"target_country,omitempty"`
	ResidingCountry string  `json:"residing_country,omitempty"`
	Program         string  `json:"program,omitempty"`
	IELTSScore      float64 `json:"ielts_score,omitempty"`
	Source          string  `json:"source,omitempty"`

	Status          LeadStatus     `json:"status"`
	Priority        *Priority      `json:"priority,omitempty"`
	AssignedStaffID *int           `json:"assigned_staff_id,omitempty"`
	FollowUpDate    *time.Time     `json:"follow_up_date,omitempty"`
	FollowUpStatus  FollowUpStatus `json:"follow_up_status"`
	Comment         string         `json:"comment,omitempty"`

	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewLead(name, phone, source string, createdBy int) (*Lead, error) {
	lead := &Lead{
		Name:           name,
		Phone:          phone,
		Source:         source,
		Status:         LeadStatusUnassigned,
		FollowUpStatus: FollowUpPending,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Phone == "" {
		return errors.New("phone is required")
	}
	return nil
}

func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusRegistrationCompleted
}

func (l *Lead) IsOwnedBy(userID int) bool {
	return l.AssignedStaffID != nil && *l.AssignedStaffID == userID
}
