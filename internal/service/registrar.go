package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
	"github.com/spec-kit/parking-garage-service/pkg/util"
)

// VehicleRegistrar persists a new occupancy record and links it to a
// claimed lot.
type VehicleRegistrar struct {
	vehicles repository.VehicleRepository
	lots     repository.LotRepository
	logger   *zap.Logger
}

// NewVehicleRegistrar constructs the registrar.
func NewVehicleRegistrar(vehicles repository.VehicleRepository, lots repository.LotRepository, logger *zap.Logger) *VehicleRegistrar {
	return &VehicleRegistrar{vehicles: vehicles, lots: lots, logger: logger}
}

// Register creates the occupancy record and attaches it to the lot. A
// persistence rejection (e.g. a concurrent duplicate plate) surfaces as
// REGISTRATION_FAILED; the caller is responsible for releasing the claimed
// lot in that case.
func (r *VehicleRegistrar) Register(ctx context.Context, input CheckInInput, ticketType domain.TicketType, lotNumber int) (*domain.ParkedVehicle, error) {
	vehicle := &domain.ParkedVehicle{
		Name:         input.Name,
		LicensePlate: input.LicensePlate,
		Phone:        input.Phone,
		TicketType:   ticketType,
		VehicleType:  input.VehicleType,
		Height:       input.Dimensions.Height,
		Width:        input.Dimensions.Width,
		Length:       input.Dimensions.Length,
		LotNumber:    lotNumber,
		CheckInTime:  time.Now().UTC(),
		TotalCost:    0,
	}

	if err := r.vehicles.Create(ctx, vehicle); err != nil {
		r.logger.Warn("vehicle registration rejected",
			zap.String("license_plate", input.LicensePlate),
			zap.Error(err))
		return nil, util.NewRegistrationFailed(err)
	}

	if err := r.link(ctx, lotNumber, vehicle.ID); err != nil {
		return nil, err
	}

	r.logger.Info("vehicle registered",
		zap.String("license_plate", vehicle.LicensePlate),
		zap.Int("lot_number", lotNumber),
		zap.Int64("vehicle_id", vehicle.ID))
	return vehicle, nil
}

// link attaches the vehicle to the lot. The usual case is a lot the
// allocator already claimed with no vehicle reference yet; a still-AVAILABLE
// lot is occupied-and-linked in one conditional write. A lot already linked
// to a different vehicle is a data-integrity fault, never overwritten.
func (r *VehicleRegistrar) link(ctx context.Context, lotNumber int, vehicleID int64) error {
	linked, err := r.lots.SetVehicle(ctx, lotNumber, vehicleID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}

	lot, err := r.lots.GetByNumber(ctx, lotNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("parking lot", map[string]any{"lot_number": lotNumber})
		}
		return err
	}

	if lot.IsAvailable() {
		claimed, err := r.lots.OccupyAndLink(ctx, lotNumber, vehicleID)
		if err != nil {
			return err
		}
		if claimed {
			return nil
		}
		// Lost the window between the read and the write; re-check below.
		lot, err = r.lots.GetByNumber(ctx, lotNumber)
		if err != nil {
			return err
		}
	}

	if lot.VehicleID != nil && *lot.VehicleID == vehicleID {
		return nil
	}
	r.logger.Error("lot already linked to another vehicle",
		zap.Int("lot_number", lotNumber),
		zap.Int64("vehicle_id", vehicleID))
	return util.NewLotAlreadyLinked(lotNumber)
}
