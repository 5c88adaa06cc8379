package usecase

import "errors"

const (
	ErrCodeDatabase      = "DATABASE_ERROR"
	ErrCodeCRMTransport  = "CRM_TRANSPORT_ERROR"
	ErrCodeNoCSRFToken   = "CSRF_TOKEN_MISSING"
	ErrCodeRunInProgress = "RUN_IN_PROGRESS"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ErrRunInProgress is returned when a run is requested while another one
// holds the scheduler.
var ErrRunInProgress = &DomainError{Code: ErrCodeRunInProgress, Message: "a lead sync run is already in progress"}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func dbError(msg string, err error) error {
	return &TechnicalError{Code: ErrCodeDatabase, Message: msg, Err: err}
}
