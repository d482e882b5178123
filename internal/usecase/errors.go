package usecase

// Error taxonomy. Domain errors are recoverable by the caller (fix input,
// re-auth); technical errors are not. CONSISTENCY_FAULT is the loud one: it
// means the two-entity conversion tore and the dataset needs an operator.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyConverted = "ALREADY_CONVERTED"
	CodeConsistency      = "CONSISTENCY_FAULT"
	CodeDatabase         = "DATABASE_ERROR"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

func ErrForbidden(msg string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: msg}
}

func ErrNotFound(msg string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func ErrValidation(msg string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func ErrAlreadyConverted(msg string) *DomainError {
	return &DomainError{Code: CodeAlreadyConverted, Message: msg}
}

func ErrConsistencyFault(msg string) *TechnicalError {
	return &TechnicalError{Code: CodeConsistency, Message: msg}
}
