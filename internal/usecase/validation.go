package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationError(errs []FieldError) *DomainError {
	msg := "validation failed: "
	for _, e := range errs {
		msg += e.Field + " (" + e.Message + "), "
	}
	return &DomainError{Code: CodeValidation, Message: strings.TrimSuffix(msg, ", ")}
}

func ValidateCreateLeadInput(input CreateLeadInput) []FieldError {
	var errors []FieldError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, FieldError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, FieldError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errors = append(errors, FieldError{"phone", "is required"})
	} else if !isValidPhoneNumber(input.Phone) {
		errors = append(errors, FieldError{"phone", "must be a valid phone number with country code"})
	}

	if input.AltPhone != "" && !isValidPhoneNumber(input.AltPhone) {
		errors = append(errors, FieldError{"alt_phone", "must be a valid phone number"})
	}

	if input.Whatsapp != "" && !isValidPhoneNumber(input.Whatsapp) {
		errors = append(errors, FieldError{"whatsapp", "must be a valid phone number"})
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, FieldError{"email", "is invalid"})
		}
	}

	if input.Age < 0 || input.Age > 120 {
		errors = append(errors, FieldError{"age", "must be between 0 and 120"})
	}

	if input.IELTSScore < 0 || input.IELTSScore > 9 {
		errors = append(errors, FieldError{"ielts_score", "must be between 0 and 9"})
	}

	return errors
}

// ValidateCompleteRegistrationInput guards the conversion preconditions: all
// three registration fields present, the boolean included (a missing key and
// an explicit false are different things).
func ValidateCompleteRegistrationInput(input CompleteRegistrationInput) []FieldError {
	var errors []FieldError

	if strings.TrimSpace(input.AssessmentAuthority) == "" {
		errors = append(errors, FieldError{"assessment_authority", "is required"})
	}
	if strings.TrimSpace(input.OccupationMapped) == "" {
		errors = append(errors, FieldError{"occupation_mapped", "is required"})
	}
	if input.RegistrationFeePaid == nil {
		errors = append(errors, FieldError{"registration_fee_paid", "is required"})
	}

	return errors
}

func isValidPhoneNumber(phone string) bool {
	cleaned := regexp.MustCompile(`\D`).ReplaceAllString(phone, "")

	return len(cleaned) >= 8 && len(cleaned) <= 15
}
