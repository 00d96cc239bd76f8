package domain

// LotStatus enumerates lot occupancy states.
type LotStatus string

const (
	LotStatusAvailable LotStatus = "AVAILABLE"
	LotStatusOccupied  LotStatus = "OCCUPIED"
)

// ParseLotStatus validates a caller-supplied status filter.
func ParseLotStatus(raw string) (LotStatus, bool) {
	switch LotStatus(raw) {
	case LotStatusAvailable, LotStatusOccupied:
		return LotStatus(raw), true
	default:
		return "", false
	}
}

// Lot is a single fixed parking slot. The tier is immutable after creation;
// a lot is occupied exactly when it holds a vehicle reference.
type Lot struct {
	ID         int64
	LotNumber  int
	TicketType TicketType
	Status     LotStatus
	VehicleID  *int64
	Vehicle    *ParkedVehicle
}

// IsAvailable reports whether the lot can be claimed.
func (l *Lot) IsAvailable() bool {
	return l.Status == LotStatusAvailable
}
