package domain

import "fmt"

// TicketType enumerates the three fixed garage tiers.
type TicketType string

const (
	TicketTypeVIP     TicketType = "VIP"
	TicketTypeValue   TicketType = "VALUE"
	TicketTypeRegular TicketType = "REGULAR"
)

// ParseTicketType validates a caller-supplied ticket type.
func ParseTicketType(raw string) (TicketType, error) {
	switch TicketType(raw) {
	case TicketTypeVIP, TicketTypeValue, TicketTypeRegular:
		return TicketType(raw), nil
	default:
		return "", fmt.Errorf("unknown ticket type: %q", raw)
	}
}

// Dimensions holds vehicle measurements in meters, two-decimal precision.
type Dimensions struct {
	Height float64
	Width  float64
	Length float64
}

// TicketTypeConfig is the static configuration of one tier. MaxDimensions
// of zero means the tier is unconstrained on that axis.
type TicketTypeConfig struct {
	Type           TicketType
	Name           string
	LotRangeMin    int
	LotRangeMax    int
	Cost           float64
	TimeLimitHours int // 0 = unlimited
	AllowedClasses []VehicleClass
	MaxDimensions  Dimensions
}

var ticketTypeConfigs = map[TicketType]TicketTypeConfig{
	TicketTypeVIP: {
		Type:           TicketTypeVIP,
		Name:           "VIP",
		LotRangeMin:    1,
		LotRangeMax:    10,
		Cost:           200,
		TimeLimitHours: 0,
		AllowedClasses: []VehicleClass{VehicleClassA, VehicleClassB, VehicleClassC},
		MaxDimensions:  Dimensions{},
	},
	TicketTypeValue: {
		Type:           TicketTypeValue,
		Name:           "Value",
		LotRangeMin:    11,
		LotRangeMax:    30,
		Cost:           100,
		TimeLimitHours: 72,
		AllowedClasses: []VehicleClass{VehicleClassA, VehicleClassB},
		MaxDimensions:  Dimensions{Height: 2.5, Width: 2.4, Length: 5.0},
	},
	TicketTypeRegular: {
		Type:           TicketTypeRegular,
		Name:           "Regular",
		LotRangeMin:    31,
		LotRangeMax:    60,
		Cost:           50,
		TimeLimitHours: 24,
		AllowedClasses: []VehicleClass{VehicleClassA},
		MaxDimensions:  Dimensions{Height: 2.0, Width: 2.0, Length: 3.0},
	},
}

// ConfigFor returns the configuration for a tier.
func ConfigFor(ticketType TicketType) (TicketTypeConfig, error) {
	cfg, ok := ticketTypeConfigs[ticketType]
	if !ok {
		return TicketTypeConfig{}, fmt.Errorf("unknown ticket type: %q", ticketType)
	}
	return cfg, nil
}

// AllTicketTypes lists every tier configuration, cheapest first.
func AllTicketTypes() []TicketTypeConfig {
	return []TicketTypeConfig{
		ticketTypeConfigs[TicketTypeRegular],
		ticketTypeConfigs[TicketTypeValue],
		ticketTypeConfigs[TicketTypeVIP],
	}
}

// IsCompatible reports whether a vehicle of the given type and dimensions is
// allowed on this tier. A zero max dimension imposes no constraint.
func (c TicketTypeConfig) IsCompatible(vehicleType VehicleType, dims Dimensions) (bool, error) {
	class, err := ClassOf(vehicleType)
	if err != nil {
		return false, err
	}
	allowed := false
	for _, candidate := range c.AllowedClasses {
		if candidate == class {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	if c.MaxDimensions.Height > 0 && dims.Height > c.MaxDimensions.Height {
		return false, nil
	}
	if c.MaxDimensions.Width > 0 && dims.Width > c.MaxDimensions.Width {
		return false, nil
	}
	if c.MaxDimensions.Length > 0 && dims.Length > c.MaxDimensions.Length {
		return false, nil
	}
	return true, nil
}

// FindCheapestCompatibleTicket returns the lowest-cost tier that can hold the
// vehicle, or ok=false when no tier fits it at all.
func FindCheapestCompatibleTicket(vehicleType VehicleType, dims Dimensions) (TicketTypeConfig, bool, error) {
	for _, cfg := range AllTicketTypes() {
		compatible, err := cfg.IsCompatible(vehicleType, dims)
		if err != nil {
			return TicketTypeConfig{}, false, err
		}
		if compatible {
			return cfg, true, nil
		}
	}
	return TicketTypeConfig{}, false, nil
}

// UpgradeCost is the price delta when moving from the current tier to this
// one. Callers only invoke it when upgrading to a strictly pricier tier.
func (c TicketTypeConfig) UpgradeCost(current TicketType) (float64, error) {
	currentCfg, err := ConfigFor(current)
	if err != nil {
		return 0, err
	}
	return c.Cost - currentCfg.Cost, nil
}
