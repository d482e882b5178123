package entity

import (
	"time"
)

type FeeStatus string

const (
	FeePaymentPending       FeeStatus = "Payment Pending"
	FeeFirstInstallmentDone FeeStatus = "1st Installment Completed"
	FeePTEFeePaid           FeeStatus = "PTE Fee Paid"
)

func (f FeeStatus) Valid() bool {
	return f == FeePaymentPending || f == FeeFirstInstallmentDone || f == FeePTEFeePaid
}

// Milestone action keys. Each is an independent idempotent flag on the
// Client, deliberately not a sequential pipeline: operators complete them
// in whatever order the case actually moves.
const (
	ActionAssignedToStage2          = "assigned_to_stage2"
	ActionHandedOverDownstream      = "handed_over_downstream"
	ActionPendingPaymentDone        = "pending_payment_done"
	ActionServiceAgreementSubmitted = "service_agreement_submitted"
	ActionVisaLodged                = "visa_lodged"
	ActionCaseClosed                = "case_closed"
)

var MilestoneLabels = map[string]string{
	ActionAssignedToStage2:          "Assigned to Stage 2 processing",
	ActionHandedOverDownstream:      "Handed over to downstream office",
	ActionPendingPaymentDone:        "Pending payment confirmed",
	ActionServiceAgreementSubmitted: "Service agreement submitted",
	ActionVisaLodged:                "Visa application lodged",
	ActionCaseClosed:                "Case closed",
}

func ValidMilestone(action string) bool {
	_, ok := MilestoneLabels[action]
	return ok
}

// CompletedAction is a value object inside Client.CompletedActions,
// identified by its Action key within one Client.
type CompletedAction struct {
	Action          string    `json:"action"`
	Label           string    `json:"label"`
	CompletedAt     time.Time `json:"completed_at"`
	CompletedBy     int       `json:"completed_by"`
	CompletedByName string    `json:"completed_by_name"`
}

type Client struct {
	ID     int `json:"id"`
	LeadID int `json:"lead_id"`

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

	AssessmentAuthority string `json:"assessment_authority"`
	OccupationMapped    string `json:"occupation_mapped"`
	RegistrationFeePaid bool   `json:"registration_fee_paid"`

	FeeStatus      *FeeStatus `json:"fee_status,omitempty"`
	AmountPaid     float64    `json:"amount_paid"`
	PaymentDueDate *time.Time `json:"payment_due_date,omitempty"`

	AssignedStaffID   int  `json:"assigned_staff_id"`
	ProcessingStaffID *int `json:"processing_staff_id,omitempty"`

	// ProcessingStatus mirrors the most recent milestone for cheap display
	// only. It is NOT authoritative; CompletedActions is. Never answer
	// "is action X done" from this field.
	ProcessingStatus string            `json:"processing_status,omitempty"`
	CompletedActions []CompletedAction `json:"completed_actions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClientFromLead carries every contact and profile field over from the
// originating Lead. The sales owner continues as the Stage-1 operator;
// stage1Fallback covers the rare lead converted while unassigned.
func NewClientFromLead(lead *Lead, assessmentAuthority, occupationMapped string, feePaid bool, stage1Fallback int) *Client {
	stage1 := stage1Fallback
	if lead.AssignedStaffID != nil {
		stage1 = *lead.AssignedStaffID
	}

	return &Client{
		LeadID:          lead.ID,
		Name:            lead.Name,
		Phone:           lead.Phone,
		AltPhone:        lead.AltPhone,
		Whatsapp:        lead.Whatsapp,
		Email:           lead.Email,
		Age:             lead.Age,
		Occupation:      lead.Occupation,
		Qualification:   lead.Qualification,
		ExperienceYears: lead.ExperienceYears,
		TargetCountry:   lead.TargetCountry,
		ResidingCountry: lead.ResidingCountry,
		Program:         lead.Program,
		IELTSScore:      lead.IELTSScore,
		Source:          lead.Source,

		AssessmentAuthority: assessmentAuthority,
		OccupationMapped:    occupationMapped,
		RegistrationFeePaid: feePaid,

		AmountPaid:       0,
		AssignedStaffID:  stage1,
		CompletedActions: []CompletedAction{},
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

func (c *Client) HasAction(action string) bool {
	for _, a := range c.CompletedActions {
		if a.Action == action {
			return true
		}
	}
	return false
}

func (c *Client) IsStage1Operator(userID int) bool {
	return c.AssignedStaffID == userID
}

func (c *Client) IsStage2Operator(userID int) bool {
	return c.ProcessingStaffID != nil && *c.ProcessingStaffID == userID
}
