package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/events"
	"github.com/spec-kit/parking-garage-service/internal/observability"
	"github.com/spec-kit/parking-garage-service/internal/repository"
	"github.com/spec-kit/parking-garage-service/pkg/util"
)

// CheckInInput describes a check-in request.
type CheckInInput struct {
	Name         string
	LicensePlate string
	Phone        string
	TicketType   domain.TicketType
	VehicleType  domain.VehicleType
	Dimensions   domain.Dimensions
}

// CheckInResult is the successful check-in outcome.
type CheckInResult struct {
	LotNumber      int
	TicketType     domain.TicketType
	UpgradeApplied bool
	Message        string
}

// UpgradeOffer is a decision point, not an error: the vehicle fails its
// requested tier but a pricier compatible tier has capacity. No reservation
// happens until the caller explicitly accepts.
type UpgradeOffer struct {
	SuggestedTicketType domain.TicketType
	UpgradeCost         float64
	Message             string
}

// CheckOutResult is the checkout outcome.
type CheckOutResult struct {
	VehicleName  string
	LotNumber    int
	CheckInTime  time.Time
	CheckOutTime time.Time
	TotalCost    float64
}

// GarageState is the full garage view plus derived statistics.
type GarageState struct {
	Lots       []domain.Lot
	Statistics GarageStatistics
}

// ParkingService orchestrates check-in and checkout end-to-end.
type ParkingService struct {
	lots       repository.LotRepository
	vehicles   repository.VehicleRepository
	allocator  *LotAllocator
	registrar  *VehicleRegistrar
	stats      *StatsService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// ParkingDependencies bundles collaborators for the parking service.
type ParkingDependencies struct {
	LotRepo     repository.LotRepository
	VehicleRepo repository.VehicleRepository
	Allocator   *LotAllocator
	Registrar   *VehicleRegistrar
	Stats       *StatsService
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewParkingService constructs the orchestrator.
func NewParkingService(deps ParkingDependencies) *ParkingService {
	return &ParkingService{
		lots:       deps.LotRepo,
		vehicles:   deps.VehicleRepo,
		allocator:  deps.Allocator,
		registrar:  deps.Registrar,
		stats:      deps.Stats,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// CheckIn processes a single check-in. When the requested tier is
// unsuitable it stops before any reservation and returns an upgrade offer;
// the caller must re-submit via CheckInWithUpgrade to accept it.
func (s *ParkingService) CheckIn(ctx context.Context, input CheckInInput) (*CheckInResult, *UpgradeOffer, error) {
	normalized, err := s.validate(ctx, &input)
	if err != nil {
		return nil, nil, err
	}
	input = normalized

	requestedCfg, err := domain.ConfigFor(input.TicketType)
	if err != nil {
		return nil, nil, util.NewUnknownTicketType(string(input.TicketType))
	}

	compatible, err := requestedCfg.IsCompatible(input.VehicleType, input.Dimensions)
	if err != nil {
		return nil, nil, util.NewUnknownVehicleType(string(input.VehicleType))
	}

	if compatible {
		result, err := s.reserveAndRegister(ctx, input, input.TicketType, false)
		return result, nil, err
	}

	suggested, found, err := domain.FindCheapestCompatibleTicket(input.VehicleType, input.Dimensions)
	if err != nil {
		return nil, nil, util.NewUnknownVehicleType(string(input.VehicleType))
	}
	if !found {
		s.recordOutcome("NO_SUITABLE_TICKET")
		return nil, nil, util.NewNoSuitableTicket()
	}

	available, err := s.lots.CountAvailableByType(ctx, suggested.Type)
	if err != nil {
		return nil, nil, err
	}
	if available == 0 {
		s.recordOutcome("UPGRADE_UNAVAILABLE")
		message := fmt.Sprintf(
			"Your vehicle doesn't meet the criteria for %s ticket. And unfortunately the relevant lots are completely full.",
			requestedCfg.Name)
		return nil, nil, util.NewUpgradeUnavailable(message)
	}

	upgradeCost, err := suggested.UpgradeCost(input.TicketType)
	if err != nil {
		return nil, nil, err
	}
	if upgradeCost <= 0 {
		// The tier ladder makes the cheapest compatible tier strictly
		// pricier whenever the requested one rejects the vehicle; a
		// non-positive delta means that invariant broke.
		s.logger.Error("non-positive upgrade cost",
			zap.String("requested", string(input.TicketType)),
			zap.String("suggested", string(suggested.Type)),
			zap.Float64("delta", upgradeCost))
		result, err := s.reserveAndRegister(ctx, input, suggested.Type, false)
		return result, nil, err
	}

	s.recordOutcome("UPGRADE_OFFERED")
	offer := &UpgradeOffer{
		SuggestedTicketType: suggested.Type,
		UpgradeCost:         upgradeCost,
		Message: fmt.Sprintf(
			"Your vehicle doesn't meet the criteria for %s ticket. You can upgrade to %s ticket for an additional $%.2f.",
			requestedCfg.Name, suggested.Name, upgradeCost),
	}
	return nil, offer, nil
}

// CheckInWithUpgrade resolves the cheapest compatible tier unconditionally
// and proceeds straight to reservation, used once the caller has accepted
// the offered upgrade cost.
func (s *ParkingService) CheckInWithUpgrade(ctx context.Context, input CheckInInput) (*CheckInResult, error) {
	normalized, err := s.validate(ctx, &input)
	if err != nil {
		return nil, err
	}
	input = normalized

	if _, err := domain.ConfigFor(input.TicketType); err != nil {
		return nil, util.NewUnknownTicketType(string(input.TicketType))
	}

	suggested, found, err := domain.FindCheapestCompatibleTicket(input.VehicleType, input.Dimensions)
	if err != nil {
		return nil, util.NewUnknownVehicleType(string(input.VehicleType))
	}
	if !found {
		s.recordOutcome("NO_SUITABLE_TICKET")
		return nil, util.NewNoSuitableTicket()
	}

	return s.reserveAndRegister(ctx, input, suggested.Type, suggested.Type != input.TicketType)
}

// CheckOut verifies the plate against the lot's occupant, computes the cost
// for the elapsed parked time, stamps the occupancy record and releases the
// lot.
func (s *ParkingService) CheckOut(ctx context.Context, rawPlate string, lotNumber int) (*CheckOutResult, error) {
	plate, err := domain.NormalizeLicensePlate(rawPlate)
	if err != nil {
		return nil, util.NewValidationError(err.Error(), nil)
	}

	lot, err := s.lots.GetByNumber(ctx, lotNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("parking lot", map[string]any{"lot_number": lotNumber})
		}
		return nil, err
	}
	if lot.Status != domain.LotStatusOccupied || lot.Vehicle == nil {
		return nil, util.NewConflict("LOT_NOT_OCCUPIED",
			"No vehicle is currently parked in this lot",
			map[string]any{"lot_number": lotNumber})
	}
	if lot.Vehicle.LicensePlate != plate {
		return nil, util.NewConflict("PLATE_MISMATCH",
			"License plate does not match the vehicle in this lot",
			map[string]any{"lot_number": lotNumber})
	}

	vehicle := lot.Vehicle
	cfg, err := domain.ConfigFor(vehicle.TicketType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	totalCost := CalculateCost(now.Sub(vehicle.CheckInTime), cfg)

	if err := s.vehicles.Checkout(ctx, vehicle.ID, now, totalCost); err != nil {
		return nil, err
	}
	if err := s.lots.Release(ctx, lotNumber); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventVehicleCheckedOut,
		LotNumber: lotNumber,
		Plate:     plate,
		Tier:      vehicle.TicketType,
		Payload:   events.CheckedOutPayload{TotalCost: totalCost},
	})
	s.logger.Info("vehicle checked out",
		zap.String("license_plate", plate),
		zap.Int("lot_number", lotNumber),
		zap.Float64("total_cost", totalCost))

	return &CheckOutResult{
		VehicleName:  vehicle.Name,
		LotNumber:    lotNumber,
		CheckInTime:  vehicle.CheckInTime,
		CheckOutTime: now,
		TotalCost:    totalCost,
	}, nil
}

// GarageState returns lots matching the filter plus statistics derived
// from the full, unfiltered lot set.
func (s *ParkingService) GarageState(ctx context.Context, filter repository.LotFilter) (*GarageState, error) {
	lots, err := s.lots.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.Compute(ctx)
	if err != nil {
		return nil, err
	}
	return &GarageState{Lots: lots, Statistics: stats}, nil
}

// VehiclesByTicketType lists currently-parked vehicles on a tier.
func (s *ParkingService) VehiclesByTicketType(ctx context.Context, ticketType domain.TicketType) ([]domain.ParkedVehicle, error) {
	return s.vehicles.ListByTicketType(ctx, ticketType)
}

func (s *ParkingService) validate(ctx context.Context, input *CheckInInput) (CheckInInput, error) {
	plate, err := domain.NormalizeLicensePlate(input.LicensePlate)
	if err != nil {
		return *input, util.NewValidationError(err.Error(), map[string]any{"license_plate": input.LicensePlate})
	}
	input.LicensePlate = plate

	existing, err := s.vehicles.GetCurrentlyParkedByPlate(ctx, plate)
	if err != nil {
		return *input, err
	}
	if existing != nil {
		s.recordOutcome("ALREADY_PARKED")
		return *input, util.NewAlreadyParked(plate)
	}
	return *input, nil
}

func (s *ParkingService) reserveAndRegister(ctx context.Context, input CheckInInput, ticketType domain.TicketType, upgradeApplied bool) (*CheckInResult, error) {
	lotNumber, claimed, err := s.allocator.Reserve(ctx, ticketType)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.recordOutcome("NO_AVAILABLE_LOT")
		return nil, util.NewNoAvailableLot(string(ticketType))
	}

	vehicle, err := s.registrar.Register(ctx, input, ticketType, lotNumber)
	if err != nil {
		s.compensate(ctx, lotNumber, err)
		s.recordOutcome("REGISTRATION_FAILED")
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventVehicleCheckedIn,
		LotNumber: lotNumber,
		Plate:     vehicle.LicensePlate,
		Tier:      ticketType,
		Payload: events.CheckedInPayload{
			VehicleType:    vehicle.VehicleType,
			UpgradeApplied: upgradeApplied,
		},
	})
	s.recordOutcome("SUCCESS")

	message := "Vehicle checked in successfully"
	if upgradeApplied {
		message = fmt.Sprintf("Vehicle checked in with upgrade to %s ticket", ticketType)
	}
	return &CheckInResult{
		LotNumber:      lotNumber,
		TicketType:     ticketType,
		UpgradeApplied: upgradeApplied,
		Message:        message,
	}, nil
}

// compensate releases a claimed lot after a failed registration so it is
// not stranded OCCUPIED with no vehicle. A lot linked to a different
// vehicle is left untouched.
func (s *ParkingService) compensate(ctx context.Context, lotNumber int, cause error) {
	var domainErr *util.DomainError
	if errors.As(cause, &domainErr) && domainErr.Code == "LOT_ALREADY_LINKED" {
		return
	}
	if err := s.lots.Release(ctx, lotNumber); err != nil {
		s.logger.Error("failed to release lot after registration failure",
			zap.Int("lot_number", lotNumber),
			zap.Error(err))
		return
	}
	s.publish(ctx, events.Event{Type: events.EventLotReleased, LotNumber: lotNumber})
}

func (s *ParkingService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *ParkingService) recordOutcome(code string) {
	if s.metrics != nil {
		s.metrics.RecordCheckInOutcome(code)
	}
}

// CalculateCost applies the tier's configured cost figure as the hourly
// rate for the elapsed parked time.
func CalculateCost(parked time.Duration, cfg domain.TicketTypeConfig) float64 {
	return roundTwoDecimals(parked.Hours() * cfg.Cost)
}
