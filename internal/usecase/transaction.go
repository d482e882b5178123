package usecase

import (
	"context"
	"fmt"
)

// Transaction is a small saga: named operations run in order, and a failure
// triggers the compensations of everything already executed, in reverse.
// The conversion use case is the one consumer; it is how Lead and Client
// change together or not at all.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

// RollbackError means an operation failed AND a compensation failed too:
// the saga could not restore the previous state. Callers must escalate.
type RollbackError struct {
	FailedOp        string
	Cause           error
	FailedComp      string
	CompensationErr error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("operation '%s' failed: %v; compensation '%s' also failed: %v",
		e.FailedOp, e.Cause, e.FailedComp, e.CompensationErr)
}

func (e *RollbackError) Unwrap() error {
	return e.Cause
}

func NewTransaction() *Transaction {
	return &Transaction{
		operations:    []Operation{},
		compensations: []Compensation{},
	}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations = append(t.compensations, Compensation{name, fn})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			if rbErr := t.rollback(ctx, i); rbErr != nil {
				rbErr.FailedOp = op.Name
				rbErr.Cause = err
				return rbErr
			}
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}

	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) *RollbackError {
	for i := failedAtIndex - 1; i >= 0; i-- {
		if i < len(t.compensations) {
			comp := t.compensations[i]
			if err := comp.Fn(ctx); err != nil {
				return &RollbackError{FailedComp: comp.Name, CompensationErr: err}
			}
		}
	}
	return nil
}
