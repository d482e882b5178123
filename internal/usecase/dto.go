package usecase

import (
	"encoding/json"
	"time"

	"github.com/overseaspath/crm-backend/internal/entity"
)

// OptInt distinguishes an absent JSON field from an explicit null, which
// matters for unassignment: {"assigned_staff_id": null} is a request to
// clear, a missing key is not a request at all.
type OptInt struct {
	Set   bool
	Value *int
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

type CreateLeadInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	AltPhone string `json:"alt_phone"`
	Whatsapp string `json:"whatsapp"`
	Email    string `json:"email"`

	Age             int     `json:"age"`
	Occupation      string  `json:"occupation"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	TargetCountry   string  `json:"target_country"`
	ResidingCountry string  `json:"residing_country"`
	Program         string  `json:"program"`
	IELTSScore      float64 `json:"ielts_score"`
	Source          string  `json:"source"`

	AssignedStaffID *int `json:"assigned_staff_id"`
}

// UpdateLeadInput is the PATCH body. Pointer fields are "not in the patch"
// when nil; the whole patch applies or none of it does.
type UpdateLeadInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	AltPhone *string `json:"alt_phone"`
	Whatsapp *string `json:"whatsapp"`
	Email    *string `json:"email"`

	Age             *int     `json:"age"`
	Occupation      *string  `json:"occupation"`
	Qualification   *string  `json:"qualification"`
	ExperienceYears *int     `json:"experience_years"`
	TargetCountry   *string  `json:"target_country"`
	ResidingCountry *string  `json:"residing_country"`
	Program         *string  `json:"program"`
	IELTSScore      *float64 `json:"ielts_score"`
	Source          *string  `json:"source"`

	Status          *entity.LeadStatus     `json:"status"`
	Priority        *entity.Priority       `json:"priority"`
	AssignedStaffID OptInt                 `json:"assigned_staff_id"`
	FollowUpDate    *time.Time             `json:"follow_up_date"`
	FollowUpStatus  *entity.FollowUpStatus `json:"follow_up_status"`
	Comment         *string                `json:"comment"`
}

type LeadFilter struct {
	Status          *entity.LeadStatus
	AssignedStaffID *int
	Search          string
}

type CompleteRegistrationInput struct {
	AssessmentAuthority string `json:"assessment_authority"`
	OccupationMapped    string `json:"occupation_mapped"`
	RegistrationFeePaid *bool  `json:"registration_fee_paid"`
}

type CompleteRegistrationOutput struct {
	ClientID        int               `json:"client_id"`
	LeadID          int               `json:"lead_id"`
	AssignedStaffID int               `json:"assigned_staff_id"`
	Status          entity.LeadStatus `json:"lead_status"`
}

type UpdateClientInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	AltPhone *string `json:"alt_phone"`
	Whatsapp *string `json:"whatsapp"`
	Email    *string `json:"email"`

	Age             *int     `json:"age"`
	Occupation      *string  `json:"occupation"`
	Qualification   *string  `json:"qualification"`
	ExperienceYears *int     `json:"experience_years"`
	TargetCountry   *string  `json:"target_country"`
	ResidingCountry *string  `json:"residing_country"`
	Program         *string  `json:"program"`
	IELTSScore      *float64 `json:"ielts_score"`

	FeeStatus      *entity.FeeStatus `json:"fee_status"`
	AmountPaid     *float64          `json:"amount_paid"`
	PaymentDueDate *time.Time        `json:"payment_due_date"`
}

type ClientFilter struct {
	AssignedStaffID   *int
	ProcessingStaffID *int
	Search            string
}

type HandoffOutput struct {
	Client    *entity.Client `json:"client"`
	HandedOff bool           `json:"handed_off"`
}

type RecordMilestoneInput struct {
	Action string `json:"action"`
}
