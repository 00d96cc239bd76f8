package domain

import (
	"fmt"
	"time"
)

// VehicleType enumerates the fixed vehicle catalogue.
type VehicleType string

const (
	VehicleTypeMotorcycle VehicleType = "MOTORCYCLE"
	VehicleTypePrivate    VehicleType = "PRIVATE"
	VehicleTypeCrossover  VehicleType = "CROSSOVER"
	VehicleTypeSUV        VehicleType = "SUV"
	VehicleTypeVan        VehicleType = "VAN"
	VehicleTypeTruck      VehicleType = "TRUCK"
)

// VehicleClass is the size category derived from vehicle type; it gates
// tier eligibility.
type VehicleClass string

const (
	VehicleClassA VehicleClass = "A"
	VehicleClassB VehicleClass = "B"
	VehicleClassC VehicleClass = "C"
)

var vehicleClasses = map[VehicleType]VehicleClass{
	VehicleTypeMotorcycle: VehicleClassA,
	VehicleTypePrivate:    VehicleClassA,
	VehicleTypeCrossover:  VehicleClassA,
	VehicleTypeSUV:        VehicleClassB,
	VehicleTypeVan:        VehicleClassB,
	VehicleTypeTruck:      VehicleClassC,
}

// ClassOf maps a vehicle type to its size class.
func ClassOf(vehicleType VehicleType) (VehicleClass, error) {
	class, ok := vehicleClasses[vehicleType]
	if !ok {
		return "", fmt.Errorf("unknown vehicle type: %q", vehicleType)
	}
	return class, nil
}

// ParseVehicleType validates a caller-supplied vehicle type.
func ParseVehicleType(raw string) (VehicleType, error) {
	if _, ok := vehicleClasses[VehicleType(raw)]; !ok {
		return "", fmt.Errorf("unknown vehicle type: %q", raw)
	}
	return VehicleType(raw), nil
}

// AllVehicleTypes lists the full vehicle catalogue.
func AllVehicleTypes() []VehicleType {
	return []VehicleType{
		VehicleTypeMotorcycle,
		VehicleTypePrivate,
		VehicleTypeCrossover,
		VehicleTypeSUV,
		VehicleTypeVan,
		VehicleTypeTruck,
	}
}

// VehicleTypesOfClasses returns the vehicle types belonging to any of the
// given classes, in catalogue order.
func VehicleTypesOfClasses(classes []VehicleClass) []VehicleType {
	var result []VehicleType
	for _, vt := range AllVehicleTypes() {
		class := vehicleClasses[vt]
		for _, candidate := range classes {
			if class == candidate {
				result = append(result, vt)
				break
			}
		}
	}
	return result
}

// ParkedVehicle is the occupancy record created at check-in. Records are
// retained after checkout; a vehicle is currently parked while CheckOutTime
// is nil.
type ParkedVehicle struct {
	ID           int64
	Name         string
	LicensePlate string
	Phone        string
	TicketType   TicketType
	VehicleType  VehicleType
	Height       float64
	Width        float64
	Length       float64
	LotNumber    int
	CheckInTime  time.Time
	CheckOutTime *time.Time
	TotalCost    float64
}

// IsCurrentlyParked reports whether the record is still open.
func (v *ParkedVehicle) IsCurrentlyParked() bool {
	return v.CheckOutTime == nil
}
