package services

import "errors"

// Sentinel errors returned by the service layer. Controllers map these to
// HTTP statuses; the services themselves never write responses.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrForbidden           = errors.New("forbidden")

	ErrTaskNotActive = errors.New("task is not active")
	ErrTargetReached = errors.New("task target already reached")
	ErrDuplicateWork = errors.New("work already submitted for this task")
	ErrSelfWork      = errors.New("cannot work on your own task")

	ErrAlreadyVerified  = errors.New("task work already verified")
	ErrAlreadyProcessed = errors.New("task work already processed")
	ErrNotConfirmed     = errors.New("interaction could not be confirmed")

	ErrWrongType          = errors.New("wrong transaction type")
	ErrNotPending         = errors.New("transaction is not pending")
	ErrInvalidState       = errors.New("operation not valid for current status")
	ErrBelowMinWithdrawal = errors.New("amount is below the minimum withdrawal")
)
