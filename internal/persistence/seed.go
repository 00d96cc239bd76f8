package persistence

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/config"
	"github.com/spec-kit/parking-garage-service/internal/domain"
)

var seedNames = []string{
	"John Doe", "Jane Smith", "Bob Johnson", "Alice Brown", "Charlie Wilson",
	"Diana Prince", "Bruce Wayne", "Clark Kent", "Tony Stark", "Steve Rogers",
	"Peter Parker", "Natasha Romanoff", "Thor Odinson", "Wanda Maximoff", "Vision",
	"Sam Wilson", "Bucky Barnes", "Scott Lang", "Hope van Dyne", "Carol Danvers",
	"T'Challa", "Shuri", "Okoye", "M'Baku", "Nakia",
}

var seedCountryCodes = []string{"+1", "+44", "+33", "+49", "+39", "+34", "+81", "+86", "+91", "+55"}

// SeedGarage creates the fixed 60-lot pool on first boot and pre-parks a
// random subset of vehicles so the garage starts in a realistic state.
// Skipped entirely when lots already exist.
func SeedGarage(ctx context.Context, pool *pgxpool.Pool, cfg config.GarageConfig, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping garage seed")
		return nil
	}

	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM parking_lots`).Scan(&existing); err != nil {
		return fmt.Errorf("count lots: %w", err)
	}
	if existing > 0 {
		logger.Info("garage already seeded", zap.Int("lots", existing))
		return nil
	}

	for _, tier := range domain.AllTicketTypes() {
		for n := tier.LotRangeMin; n <= tier.LotRangeMax; n++ {
			if _, err := pool.Exec(ctx,
				`INSERT INTO parking_lots (lot_number, ticket_type, status) VALUES ($1, $2, $3)`,
				n, tier.Type, domain.LotStatusAvailable,
			); err != nil {
				return fmt.Errorf("insert lot %d: %w", n, err)
			}
		}
	}
	logger.Info("seeded parking lots", zap.Int("count", 60))

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	occupy := cfg.SeedMinOccupied
	if cfg.SeedMaxOccupied > cfg.SeedMinOccupied {
		occupy += rnd.Intn(cfg.SeedMaxOccupied - cfg.SeedMinOccupied + 1)
	}
	if occupy > len(seedNames) {
		occupy = len(seedNames)
	}

	openLots := make([]int, 0, 60)
	for n := 1; n <= 60; n++ {
		openLots = append(openLots, n)
	}

	seeded := 0
	usedPlates := make(map[string]struct{})
	for i := 0; i < occupy; i++ {
		idx := rnd.Intn(len(openLots))
		lotNumber := openLots[idx]
		openLots = append(openLots[:idx], openLots[idx+1:]...)

		tier := tierOfLot(lotNumber)
		cfgTier, _ := domain.ConfigFor(tier)
		vehicleType := randomVehicleTypeFor(cfgTier, rnd)
		dims := seedDimensions(vehicleType, cfgTier, rnd)

		plate := ""
		for {
			plate = fmt.Sprintf("RND%04d", 1000+rnd.Intn(9000))
			if _, taken := usedPlates[plate]; !taken {
				break
			}
		}
		usedPlates[plate] = struct{}{}

		phone := fmt.Sprintf("%s %d-%d-%d",
			seedCountryCodes[rnd.Intn(len(seedCountryCodes))],
			100+rnd.Intn(900), 100+rnd.Intn(900), 1000+rnd.Intn(9000))
		checkIn := seedCheckInTime(tier, rnd, i)

		var vehicleID int64
		if err := pool.QueryRow(ctx,
			`INSERT INTO parked_vehicles
                 (name, license_plate, phone, ticket_type, vehicle_type, height, width, length, lot_number, check_in_time, total_cost)
             VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0)
             RETURNING id`,
			seedNames[i], plate, phone, tier, vehicleType,
			dims.Height, dims.Width, dims.Length, lotNumber, checkIn,
		).Scan(&vehicleID); err != nil {
			return fmt.Errorf("insert seed vehicle: %w", err)
		}

		if _, err := pool.Exec(ctx,
			`UPDATE parking_lots SET status=$1, vehicle_id=$2 WHERE lot_number=$3`,
			domain.LotStatusOccupied, vehicleID, lotNumber,
		); err != nil {
			return fmt.Errorf("occupy seed lot %d: %w", lotNumber, err)
		}
		seeded++
	}

	logger.Info("seeded parked vehicles", zap.Int("count", seeded))
	return nil
}

func tierOfLot(lotNumber int) domain.TicketType {
	switch {
	case lotNumber <= 10:
		return domain.TicketTypeVIP
	case lotNumber <= 30:
		return domain.TicketTypeValue
	default:
		return domain.TicketTypeRegular
	}
}

func randomVehicleTypeFor(tier domain.TicketTypeConfig, rnd *rand.Rand) domain.VehicleType {
	candidates := domain.VehicleTypesOfClasses(tier.AllowedClasses)
	return candidates[rnd.Intn(len(candidates))]
}

// seedCheckInTime spreads check-in times over each tier's window; the first
// few records deliberately exceed their limit so the UI countdown has
// overdue rows to show.
func seedCheckInTime(tier domain.TicketType, rnd *rand.Rand, index int) time.Time {
	now := time.Now().UTC()
	hoursAgo := 0
	if index < 3 {
		if tier == domain.TicketTypeRegular {
			hoursAgo = 30 + rnd.Intn(20)
		} else {
			hoursAgo = 80 + rnd.Intn(20)
		}
	} else {
		switch tier {
		case domain.TicketTypeVIP:
			hoursAgo = rnd.Intn(72)
		case domain.TicketTypeValue:
			hoursAgo = 12 + rnd.Intn(49)
		default:
			hoursAgo = 2 + rnd.Intn(19)
		}
	}
	return now.Add(-time.Duration(hoursAgo)*time.Hour - time.Duration(rnd.Intn(60))*time.Minute)
}

func seedDimensions(vehicleType domain.VehicleType, tier domain.TicketTypeConfig, rnd *rand.Rand) domain.Dimensions {
	var dims domain.Dimensions
	switch vehicleType {
	case domain.VehicleTypeMotorcycle:
		dims = domain.Dimensions{Height: 1.0 + rnd.Float64()*0.5, Width: 0.7 + rnd.Float64()*0.3, Length: 1.8 + rnd.Float64()*0.5}
	case domain.VehicleTypePrivate:
		dims = domain.Dimensions{Height: 1.4 + rnd.Float64()*0.3, Width: 1.6 + rnd.Float64()*0.2, Length: 4.0 + rnd.Float64()*0.5}
	case domain.VehicleTypeCrossover:
		dims = domain.Dimensions{Height: 1.6 + rnd.Float64()*0.3, Width: 1.7 + rnd.Float64()*0.2, Length: 4.2 + rnd.Float64()*0.5}
	case domain.VehicleTypeSUV:
		dims = domain.Dimensions{Height: 1.7 + rnd.Float64()*0.4, Width: 1.8 + rnd.Float64()*0.3, Length: 4.5 + rnd.Float64()*0.8}
	case domain.VehicleTypeVan:
		dims = domain.Dimensions{Height: 2.0 + rnd.Float64()*0.5, Width: 1.9 + rnd.Float64()*0.3, Length: 5.0 + rnd.Float64()*1.0}
	default: // truck
		dims = domain.Dimensions{Height: 2.5 + rnd.Float64()*0.8, Width: 2.2 + rnd.Float64()*0.4, Length: 6.0 + rnd.Float64()*2.0}
	}
	if tier.MaxDimensions.Height > 0 {
		dims.Height = math.Min(dims.Height, tier.MaxDimensions.Height)
	}
	if tier.MaxDimensions.Width > 0 {
		dims.Width = math.Min(dims.Width, tier.MaxDimensions.Width)
	}
	if tier.MaxDimensions.Length > 0 {
		dims.Length = math.Min(dims.Length, tier.MaxDimensions.Length)
	}
	dims.Height = round2(dims.Height)
	dims.Width = round2(dims.Width)
	dims.Length = round2(dims.Length)
	return dims
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
