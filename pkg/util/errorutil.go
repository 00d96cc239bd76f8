package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewConflict(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Check-in and checkout failure constructors. Capacity and race outcomes are
// expected business results, so they surface as 409s with human-readable
// messages rather than opaque 5xx codes.

func NewAlreadyParked(plate string) error {
	return NewConflict("ALREADY_PARKED",
		"Vehicle is already parked in the garage",
		map[string]any{"license_plate": plate})
}

func NewNoSuitableTicket() error {
	return NewConflict("NO_SUITABLE_TICKET",
		"No suitable ticket type found for this vehicle", nil)
}

func NewUpgradeUnavailable(message string) error {
	return NewConflict("UPGRADE_UNAVAILABLE", message, nil)
}

func NewNoAvailableLot(ticketType string) error {
	return NewConflict("NO_AVAILABLE_LOT",
		"No available lots for this ticket type",
		map[string]any{"ticket_type": ticketType})
}

func NewRegistrationFailed(err error) error {
	return &DomainError{
		Code:       "REGISTRATION_FAILED",
		Message:    "Failed to create vehicle record",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewLotAlreadyLinked marks a data-integrity fault: a claimed lot already
// references a different vehicle. Never retried.
func NewLotAlreadyLinked(lotNumber int) error {
	return &DomainError{
		Code:       "LOT_ALREADY_LINKED",
		Message:    "parking lot is already linked to another vehicle",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"lot_number": lotNumber},
	}
}

func NewUnknownVehicleType(raw string) error {
	return NewValidationError("unknown vehicle type", map[string]any{"vehicle_type": raw})
}

func NewUnknownTicketType(raw string) error {
	return NewValidationError("unknown ticket type", map[string]any{"ticket_type": raw})
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
