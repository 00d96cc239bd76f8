package dto

import (
	"time"

	"github.com/spec-kit/parking-garage-service/internal/domain"
)

// CheckInRequest payload.
type CheckInRequest struct {
	Name         string  `json:"name"`
	LicensePlate string  `json:"license_plate"`
	PhoneNumber  string  `json:"phone_number"`
	TicketType   string  `json:"ticket_type"`
	VehicleType  string  `json:"vehicle_type"`
	Height       float64 `json:"height"`
	Width        float64 `json:"width"`
	Length       float64 `json:"length"`
}

// CheckInResponse confirms a completed check-in.
type CheckInResponse struct {
	LotNumber      int               `json:"lot_number"`
	TicketType     domain.TicketType `json:"ticket_type"`
	UpgradeApplied bool              `json:"upgrade_applied"`
	Message        string            `json:"message"`
}

// UpgradeOfferResponse is returned instead of a check-in confirmation when
// the requested tier rejects the vehicle but a pricier tier would accept it.
type UpgradeOfferResponse struct {
	RequiresUpgrade     bool              `json:"requires_upgrade"`
	SuggestedTicketType domain.TicketType `json:"suggested_ticket_type"`
	UpgradeCost         float64           `json:"upgrade_cost"`
	Message             string            `json:"message"`
}

// CheckOutRequest payload.
type CheckOutRequest struct {
	LicensePlate string `json:"license_plate"`
	LotNumber    int    `json:"lot_number"`
}

// CheckOutResponse summarizes a completed checkout.
type CheckOutResponse struct {
	VehicleName  string    `json:"vehicle_name"`
	LotNumber    int       `json:"lot_number"`
	CheckInTime  time.Time `json:"check_in_time"`
	CheckOutTime time.Time `json:"check_out_time"`
	TotalCost    float64   `json:"total_cost"`
}

// AsyncCheckInRequest payload. A nil count uses the server default.
type AsyncCheckInRequest struct {
	VehicleCount *int `json:"vehicle_count"`
}

// VehicleView represents a parked vehicle in responses.
type VehicleView struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	LicensePlate string             `json:"license_plate"`
	PhoneNumber  string             `json:"phone_number"`
	TicketType   domain.TicketType  `json:"ticket_type"`
	VehicleType  domain.VehicleType `json:"vehicle_type"`
	Height       float64            `json:"height"`
	Width        float64            `json:"width"`
	Length       float64            `json:"length"`
	LotNumber    int                `json:"lot_number"`
	CheckInTime  time.Time          `json:"check_in_time"`
}

// LotView represents a single lot in the garage-state response.
type LotView struct {
	LotNumber  int               `json:"lot_number"`
	TicketType domain.TicketType `json:"ticket_type"`
	Status     domain.LotStatus  `json:"status"`
	Vehicle    *VehicleView      `json:"vehicle,omitempty"`
}

// RandomCheckInData is a generated sample check-in payload. A full garage
// is not an error for this endpoint: Available is false and the vehicle
// fields are omitted.
type RandomCheckInData struct {
	Available    bool    `json:"available"`
	Message      string  `json:"message,omitempty"`
	Name         string  `json:"name,omitempty"`
	LicensePlate string  `json:"license_plate,omitempty"`
	PhoneNumber  string  `json:"phone_number,omitempty"`
	TicketType   string  `json:"ticket_type,omitempty"`
	VehicleType  string  `json:"vehicle_type,omitempty"`
	Height       float64 `json:"height,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Length       float64 `json:"length,omitempty"`
}
