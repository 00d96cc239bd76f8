package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
)

// defaultBatchSize is the fallback async batch size and the cap on the
// random-vehicle count advertised in statistics.
const defaultBatchSize = 5

// BatchItemResult is the outcome of one vehicle in a batch.
type BatchItemResult struct {
	Index        int                `json:"index"`
	LicensePlate string             `json:"license_plate,omitempty"`
	VehicleType  domain.VehicleType `json:"vehicle_type,omitempty"`
	Success      bool               `json:"success"`
	LotNumber    int                `json:"lot_number,omitempty"`
	TicketType   domain.TicketType  `json:"ticket_type,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// BatchResult aggregates a batch check-in run.
type BatchResult struct {
	TotalProcessed int               `json:"total_processed"`
	Successful     int               `json:"successful"`
	Failed         int               `json:"failed"`
	Results        []BatchItemResult `json:"results"`
}

// BatchService generates random check-in requests and pushes them through
// the regular check-in path concurrently.
type BatchService struct {
	parking   *ParkingService
	lots      repository.LotRepository
	generator *RandomDataGenerator
	logger    *zap.Logger
}

// NewBatchService constructs the batch service.
func NewBatchService(parking *ParkingService, lots repository.LotRepository, generator *RandomDataGenerator, logger *zap.Logger) *BatchService {
	return &BatchService{parking: parking, lots: lots, generator: generator, logger: logger}
}

// AsyncCheckIn checks in up to count random vehicles concurrently. The count
// defaults to five and is clamped to current availability, so a request for
// ten vehicles against two free lots processes exactly two. A full garage
// produces a single failed result rather than an error.
func (s *BatchService) AsyncCheckIn(ctx context.Context, count *int) (*BatchResult, error) {
	requested := defaultBatchSize
	if count != nil && *count > 0 {
		requested = *count
	}

	availability, err := s.lots.AvailabilityByType(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, entry := range availability {
		total += entry.Available
	}
	if total == 0 {
		return &BatchResult{
			TotalProcessed: 0,
			Successful:     0,
			Failed:         1,
			Results: []BatchItemResult{{
				Index:   0,
				Success: false,
				Error:   "The garage is full, no vehicles can be checked in",
			}},
		}, nil
	}
	if requested > total {
		requested = total
	}

	inputs := s.generateInputs(availability, requested)

	results := make([]BatchItemResult, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(index int, input CheckInInput) {
			defer wg.Done()
			results[index] = s.runOne(ctx, index, input)
		}(i, input)
	}
	wg.Wait()

	batch := &BatchResult{TotalProcessed: len(results), Results: results}
	for _, result := range results {
		if result.Success {
			batch.Successful++
		} else {
			batch.Failed++
		}
	}

	s.logger.Info("batch check-in completed",
		zap.Int("total_processed", batch.TotalProcessed),
		zap.Int("successful", batch.Successful),
		zap.Int("failed", batch.Failed))
	return batch, nil
}

// GenerateRandomRequest builds one check-in request weighted toward the
// tiers with the most free lots, with a vehicle guaranteed to fit its tier.
func (s *BatchService) GenerateRandomRequest(ctx context.Context) (*CheckInInput, error) {
	availability, err := s.lots.AvailabilityByType(ctx)
	if err != nil {
		return nil, err
	}
	input, ok := s.buildInput(availability)
	if !ok {
		return nil, nil
	}
	return &input, nil
}

// generateInputs draws requests against a shrinking copy of the availability
// ledger so a batch never over-commits a tier that a concurrent draw within
// the same batch already consumed.
func (s *BatchService) generateInputs(availability []repository.TypeAvailability, count int) []CheckInInput {
	ledger := make([]repository.TypeAvailability, len(availability))
	copy(ledger, availability)

	inputs := make([]CheckInInput, 0, count)
	plates := make(map[string]struct{}, count)
	for len(inputs) < count {
		input, ok := s.buildInput(ledger)
		if !ok {
			break
		}
		if _, dup := plates[input.LicensePlate]; dup {
			continue
		}
		plates[input.LicensePlate] = struct{}{}

		for i := range ledger {
			if ledger[i].TicketType == input.TicketType {
				ledger[i].Available--
				break
			}
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func (s *BatchService) buildInput(availability []repository.TypeAvailability) (CheckInInput, bool) {
	ticketType, ok := s.generator.TicketTypeByAvailability(availability)
	if !ok {
		return CheckInInput{}, false
	}
	vehicleType := s.generator.CompatibleVehicleType(ticketType)
	return CheckInInput{
		Name:         s.generator.Name(),
		LicensePlate: s.generator.LicensePlate(),
		Phone:        s.generator.Phone(),
		TicketType:   ticketType,
		VehicleType:  vehicleType,
		Dimensions:   s.generator.ConstrainedDimensions(vehicleType, ticketType),
	}, true
}

func (s *BatchService) runOne(ctx context.Context, index int, input CheckInInput) BatchItemResult {
	item := BatchItemResult{
		Index:        index,
		LicensePlate: input.LicensePlate,
		VehicleType:  input.VehicleType,
		TicketType:   input.TicketType,
	}

	result, offer, err := s.parking.CheckIn(ctx, input)
	switch {
	case err != nil:
		item.Error = err.Error()
	case offer != nil:
		// Generated vehicles always fit their drawn tier, so an offer here
		// means the generator and tier rules disagree.
		item.Error = offer.Message
		s.logger.Error("generated vehicle rejected by its own tier",
			zap.String("license_plate", input.LicensePlate),
			zap.String("ticket_type", string(input.TicketType)))
	default:
		item.Success = true
		item.LotNumber = result.LotNumber
		item.TicketType = result.TicketType
	}
	return item
}
