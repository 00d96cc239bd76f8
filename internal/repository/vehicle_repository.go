package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-garage-service/internal/domain"
)

// ErrDuplicatePlate is returned when a plate already has an open occupancy
// record, typically lost races between concurrent check-ins of the same plate.
var ErrDuplicatePlate = errors.New("license plate already has an open occupancy record")

const uniqueViolationCode = "23505"

// VehicleRepository encapsulates occupancy record persistence.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.ParkedVehicle) error
	GetCurrentlyParkedByPlate(ctx context.Context, plate string) (*domain.ParkedVehicle, error)
	ListByTicketType(ctx context.Context, ticketType domain.TicketType) ([]domain.ParkedVehicle, error)
	Checkout(ctx context.Context, vehicleID int64, at time.Time, totalCost float64) error
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a Postgres-backed implementation.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.ParkedVehicle) error {
	const query = `
        INSERT INTO parked_vehicles
            (name, license_plate, phone, ticket_type, vehicle_type, height, width, length, lot_number, check_in_time, total_cost)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.Phone,
		vehicle.TicketType,
		vehicle.VehicleType,
		vehicle.Height,
		vehicle.Width,
		vehicle.Length,
		vehicle.LotNumber,
		vehicle.CheckInTime,
		vehicle.TotalCost,
	).Scan(&vehicle.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicatePlate
		}
		return err
	}
	return nil
}

// GetCurrentlyParkedByPlate returns the open occupancy record for a plate,
// or nil when the vehicle is not parked.
func (r *vehicleRepository) GetCurrentlyParkedByPlate(ctx context.Context, plate string) (*domain.ParkedVehicle, error) {
	const query = `
        SELECT id, name, license_plate, phone, ticket_type, vehicle_type,
               height, width, length, lot_number, check_in_time, check_out_time, total_cost
        FROM parked_vehicles
        WHERE license_plate=$1 AND check_out_time IS NULL`
	vehicle, err := r.fetchSingle(ctx, query, plate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return vehicle, err
}

func (r *vehicleRepository) ListByTicketType(ctx context.Context, ticketType domain.TicketType) ([]domain.ParkedVehicle, error) {
	const query = `
        SELECT id, name, license_plate, phone, ticket_type, vehicle_type,
               height, width, length, lot_number, check_in_time, check_out_time, total_cost
        FROM parked_vehicles
        WHERE ticket_type=$1 AND check_out_time IS NULL
        ORDER BY check_in_time DESC`
	rows, err := r.pool.Query(ctx, query, ticketType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ParkedVehicle
	for rows.Next() {
		var vehicle domain.ParkedVehicle
		if err := scanVehicle(rows.Scan, &vehicle); err != nil {
			return nil, err
		}
		result = append(result, vehicle)
	}
	return result, rows.Err()
}

func (r *vehicleRepository) Checkout(ctx context.Context, vehicleID int64, at time.Time, totalCost float64) error {
	const query = `
        UPDATE parked_vehicles SET check_out_time=$1, total_cost=$2
        WHERE id=$3 AND check_out_time IS NULL`
	cmd, err := r.pool.Exec(ctx, query, at, totalCost, vehicleID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ParkedVehicle, error) {
	var vehicle domain.ParkedVehicle
	row := r.pool.QueryRow(ctx, query, arg)
	if err := scanVehicle(row.Scan, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func scanVehicle(scan func(...any) error, vehicle *domain.ParkedVehicle) error {
	return scan(
		&vehicle.ID,
		&vehicle.Name,
		&vehicle.LicensePlate,
		&vehicle.Phone,
		&vehicle.TicketType,
		&vehicle.VehicleType,
		&vehicle.Height,
		&vehicle.Width,
		&vehicle.Length,
		&vehicle.LotNumber,
		&vehicle.CheckInTime,
		&vehicle.CheckOutTime,
		&vehicle.TotalCost,
	)
}
