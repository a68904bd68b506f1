package checkout

import (
	"errors"
	"fmt"
)

// FailureClass is the stable classification the caller sees. Internal store
// and gateway detail stays at log level.
type FailureClass string

const (
	FailureInvalidInput       FailureClass = "invalid_input"
	FailurePersistence        FailureClass = "persistence_failure"
	FailureDuplicateOrderID   FailureClass = "duplicate_order_id"
	FailureGatewayRejected    FailureClass = "gateway_rejected"
	FailureGatewayUnreachable FailureClass = "gateway_unreachable"
)

// Stage names the orchestration step that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageCustomer Stage = "customer"
	StageOrder    Stage = "order"
	StageGateway  Stage = "gateway"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMissingName     = errors.New("customer name is required")
	ErrMissingEmail    = errors.New("customer email is required")
	ErrUnknownProduct  = errors.New("unknown product in cart")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
)

// Failure is the uniform error envelope: every stage error is caught at the
// orchestrator boundary and wrapped here, nothing escapes unclassified.
type Failure struct {
	Class FailureClass
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("checkout failed at %s stage: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(class FailureClass, stage Stage, err error) *Failure {
	return &Failure{Class: class, Stage: stage, Err: err}
}

// ClassOf extracts the failure class, defaulting to persistence_failure for
// anything that somehow arrives unwrapped.
func ClassOf(err error) FailureClass {
	var f *Failure
	if errors.As(err, &f) {
		return f.Class
	}
	return FailurePersistence
}
