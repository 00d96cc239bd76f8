package service

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
)

var customerNames = []string{"John Doe", "Jane Smith", "Bob Johnson", "Alice Brown", "Charlie Wilson"}

var customerPhones = []string{"555-0101", "555-0102", "555-0103", "555-0104", "555-0105"}

// RandomDataGenerator synthesizes check-in requests that comply with tier
// business rules. The random source is injectable so tests are deterministic.
type RandomDataGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomDataGenerator seeds the generator from the clock.
func NewRandomDataGenerator() *RandomDataGenerator {
	return &RandomDataGenerator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewRandomDataGeneratorWithRand injects a fixed source for tests.
func NewRandomDataGeneratorWithRand(rnd *rand.Rand) *RandomDataGenerator {
	return &RandomDataGenerator{rnd: rnd}
}

// LicensePlate produces a synthetic plate within the valid plate charset.
func (g *RandomDataGenerator) LicensePlate() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "RND" + fragment
}

// Name picks a random customer name.
func (g *RandomDataGenerator) Name() string {
	return customerNames[g.intn(len(customerNames))]
}

// Phone picks a random phone number.
func (g *RandomDataGenerator) Phone() string {
	return customerPhones[g.intn(len(customerPhones))]
}

// TicketTypeByAvailability draws a tier weighted by its available lot count,
// so tiers with more open lots are proportionally more likely.
func (g *RandomDataGenerator) TicketTypeByAvailability(availability []repository.TypeAvailability) (domain.TicketType, bool) {
	total := 0
	for _, entry := range availability {
		total += entry.Available
	}
	if total <= 0 {
		return "", false
	}

	draw := g.intn(total)
	cumulative := 0
	for _, entry := range availability {
		cumulative += entry.Available
		if draw < cumulative {
			return entry.TicketType, true
		}
	}
	return availability[0].TicketType, true
}

// CompatibleVehicleType draws a vehicle type allowed on the given tier.
func (g *RandomDataGenerator) CompatibleVehicleType(ticketType domain.TicketType) domain.VehicleType {
	cfg, err := domain.ConfigFor(ticketType)
	if err != nil {
		return domain.VehicleTypePrivate
	}
	candidates := domain.VehicleTypesOfClasses(cfg.AllowedClasses)
	return candidates[g.intn(len(candidates))]
}

// ConstrainedDimensions generates realistic dimensions for the vehicle type,
// clamped inside the tier's caps with a small margin.
func (g *RandomDataGenerator) ConstrainedDimensions(vehicleType domain.VehicleType, ticketType domain.TicketType) domain.Dimensions {
	dims := g.realisticDimensions(vehicleType)

	if cfg, err := domain.ConfigFor(ticketType); err == nil {
		if cfg.MaxDimensions.Height > 0 && dims.Height > cfg.MaxDimensions.Height {
			dims.Height = cfg.MaxDimensions.Height - 0.1
		}
		if cfg.MaxDimensions.Width > 0 && dims.Width > cfg.MaxDimensions.Width {
			dims.Width = cfg.MaxDimensions.Width - 0.1
		}
		if cfg.MaxDimensions.Length > 0 && dims.Length > cfg.MaxDimensions.Length {
			dims.Length = cfg.MaxDimensions.Length - 0.1
		}
	}

	dims.Height = math.Max(dims.Height, 1.0)
	dims.Width = math.Max(dims.Width, 0.5)
	dims.Length = math.Max(dims.Length, 1.5)

	dims.Height = roundTwoDecimals(dims.Height)
	dims.Width = roundTwoDecimals(dims.Width)
	dims.Length = roundTwoDecimals(dims.Length)
	return dims
}

func (g *RandomDataGenerator) realisticDimensions(vehicleType domain.VehicleType) domain.Dimensions {
	switch vehicleType {
	case domain.VehicleTypeMotorcycle:
		return domain.Dimensions{
			Height: g.betweenFloats(1.0, 1.5),
			Width:  g.betweenFloats(0.7, 1.0),
			Length: g.betweenFloats(1.8, 2.3),
		}
	case domain.VehicleTypePrivate:
		return domain.Dimensions{
			Height: g.betweenFloats(1.4, 1.7),
			Width:  g.betweenFloats(1.6, 1.8),
			Length: g.betweenFloats(4.0, 4.5),
		}
	case domain.VehicleTypeCrossover:
		return domain.Dimensions{
			Height: g.betweenFloats(1.6, 1.8),
			Width:  g.betweenFloats(1.7, 1.9),
			Length: g.betweenFloats(4.2, 4.5),
		}
	case domain.VehicleTypeSUV:
		return domain.Dimensions{
			Height: g.betweenFloats(1.7, 2.0),
			Width:  g.betweenFloats(1.8, 2.0),
			Length: g.betweenFloats(4.5, 5.0),
		}
	case domain.VehicleTypeVan:
		return domain.Dimensions{
			Height: g.betweenFloats(1.8, 2.2),
			Width:  g.betweenFloats(1.9, 2.1),
			Length: g.betweenFloats(4.8, 5.6),
		}
	case domain.VehicleTypeTruck:
		return domain.Dimensions{
			Height: g.betweenFloats(2.0, 2.5),
			Width:  g.betweenFloats(2.0, 2.3),
			Length: g.betweenFloats(6.0, 7.0),
		}
	default:
		return domain.Dimensions{
			Height: g.betweenFloats(1.4, 1.7),
			Width:  g.betweenFloats(1.6, 1.8),
			Length: g.betweenFloats(4.0, 4.5),
		}
	}
}

func (g *RandomDataGenerator) betweenFloats(min, max float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rnd.Float64()*(max-min)
}

func (g *RandomDataGenerator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
