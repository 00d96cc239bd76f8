package events

import (
	"time"

	"github.com/spec-kit/parking-garage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVehicleCheckedIn  EventType = "vehicle_checked_in"
	EventVehicleCheckedOut EventType = "vehicle_checked_out"
	EventLotReleased       EventType = "lot_released"
)

// AllEventTypes lists every mutation event, for subscribers that react to
// any garage change.
func AllEventTypes() []EventType {
	return []EventType{EventVehicleCheckedIn, EventVehicleCheckedOut, EventLotReleased}
}

// Event represents a garage mutation emitted by services.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	LotNumber int               `json:"lot_number"`
	Plate     string            `json:"license_plate,omitempty"`
	Tier      domain.TicketType `json:"ticket_type,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   interface{}       `json:"payload,omitempty"`
}

// CheckedInPayload carries check-in details.
type CheckedInPayload struct {
	VehicleType    domain.VehicleType `json:"vehicle_type"`
	UpgradeApplied bool               `json:"upgrade_applied"`
}

// CheckedOutPayload carries checkout details.
type CheckedOutPayload struct {
	TotalCost float64 `json:"total_cost"`
}
