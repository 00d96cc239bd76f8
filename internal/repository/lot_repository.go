package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-garage-service/internal/domain"
)

// LotFilter captures garage-state listing filters.
type LotFilter struct {
	TicketType *domain.TicketType
	Status     *domain.LotStatus
}

// TypeAvailability pairs a tier with its currently-available lot count.
type TypeAvailability struct {
	TicketType domain.TicketType
	Available  int
}

// LotRepository encapsulates parking lot persistence. Reserve and
// OccupyAndLink are conditional writes: they succeed only when the row is
// still in the expected prior state, which is the sole synchronization
// primitive between concurrent check-ins.
type LotRepository interface {
	ListAll(ctx context.Context, filter LotFilter) ([]domain.Lot, error)
	ListAvailableByType(ctx context.Context, ticketType domain.TicketType) ([]domain.Lot, error)
	CountAvailableByType(ctx context.Context, ticketType domain.TicketType) (int, error)
	AvailabilityByType(ctx context.Context) ([]TypeAvailability, error)
	GetByNumber(ctx context.Context, lotNumber int) (*domain.Lot, error)
	Reserve(ctx context.Context, lotID int64) (bool, error)
	SetVehicle(ctx context.Context, lotNumber int, vehicleID int64) (bool, error)
	OccupyAndLink(ctx context.Context, lotNumber int, vehicleID int64) (bool, error)
	Release(ctx context.Context, lotNumber int) error
}

type lotRepository struct {
	pool *pgxpool.Pool
}

// NewLotRepository returns a Postgres-backed implementation.
func NewLotRepository(pool *pgxpool.Pool) LotRepository {
	return &lotRepository{pool: pool}
}

const lotColumns = `
        l.id, l.lot_number, l.ticket_type, l.status, l.vehicle_id,
        v.id, v.name, v.license_plate, v.phone, v.ticket_type, v.vehicle_type,
        v.height, v.width, v.length, v.lot_number, v.check_in_time, v.check_out_time, v.total_cost`

func (r *lotRepository) ListAll(ctx context.Context, filter LotFilter) ([]domain.Lot, error) {
	base := `SELECT ` + lotColumns + `
             FROM parking_lots l
             LEFT JOIN parked_vehicles v ON v.id = l.vehicle_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TicketType != nil {
		args = append(args, *filter.TicketType)
		clauses = append(clauses, fmt.Sprintf("l.ticket_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("l.status=$%d", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY l.lot_number", base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLots(rows)
}

func (r *lotRepository) ListAvailableByType(ctx context.Context, ticketType domain.TicketType) ([]domain.Lot, error) {
	const query = `
        SELECT id, lot_number, ticket_type, status, vehicle_id
        FROM parking_lots
        WHERE ticket_type=$1 AND status=$2
        ORDER BY lot_number`
	rows, err := r.pool.Query(ctx, query, ticketType, domain.LotStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Lot
	for rows.Next() {
		var lot domain.Lot
		if err := rows.Scan(&lot.ID, &lot.LotNumber, &lot.TicketType, &lot.Status, &lot.VehicleID); err != nil {
			return nil, err
		}
		result = append(result, lot)
	}
	return result, rows.Err()
}

func (r *lotRepository) CountAvailableByType(ctx context.Context, ticketType domain.TicketType) (int, error) {
	const query = `SELECT COUNT(*) FROM parking_lots WHERE ticket_type=$1 AND status=$2`
	var count int
	err := r.pool.QueryRow(ctx, query, ticketType, domain.LotStatusAvailable).Scan(&count)
	return count, err
}

func (r *lotRepository) AvailabilityByType(ctx context.Context) ([]TypeAvailability, error) {
	result := make([]TypeAvailability, 0, 3)
	for _, cfg := range domain.AllTicketTypes() {
		count, err := r.CountAvailableByType(ctx, cfg.Type)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			result = append(result, TypeAvailability{TicketType: cfg.Type, Available: count})
		}
	}
	return result, nil
}

func (r *lotRepository) GetByNumber(ctx context.Context, lotNumber int) (*domain.Lot, error) {
	query := `SELECT ` + lotColumns + `
              FROM parking_lots l
              LEFT JOIN parked_vehicles v ON v.id = l.vehicle_id
              WHERE l.lot_number=$1`
	rows, err := r.pool.Query(ctx, query, lotNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots, err := scanLots(rows)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &lots[0], nil
}

// Reserve flips the lot to OCCUPIED only if it is still AVAILABLE at the
// instant of the write. Zero rows affected means another caller won the race.
func (r *lotRepository) Reserve(ctx context.Context, lotID int64) (bool, error) {
	const query = `UPDATE parking_lots SET status=$1 WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.LotStatusOccupied, lotID, domain.LotStatusAvailable)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// SetVehicle links a vehicle to a lot that was claimed but not yet linked.
func (r *lotRepository) SetVehicle(ctx context.Context, lotNumber int, vehicleID int64) (bool, error) {
	const query = `
        UPDATE parking_lots SET vehicle_id=$1
        WHERE lot_number=$2 AND status=$3 AND vehicle_id IS NULL`
	cmd, err := r.pool.Exec(ctx, query, vehicleID, lotNumber, domain.LotStatusOccupied)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// OccupyAndLink claims and links in one conditional write, for the case
// where the lot is still AVAILABLE at link time.
func (r *lotRepository) OccupyAndLink(ctx context.Context, lotNumber int, vehicleID int64) (bool, error) {
	const query = `
        UPDATE parking_lots SET status=$1, vehicle_id=$2
        WHERE lot_number=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.LotStatusOccupied, vehicleID, lotNumber, domain.LotStatusAvailable)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *lotRepository) Release(ctx context.Context, lotNumber int) error {
	const query = `UPDATE parking_lots SET status=$1, vehicle_id=NULL WHERE lot_number=$2`
	cmd, err := r.pool.Exec(ctx, query, domain.LotStatusAvailable, lotNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanLots(rows pgx.Rows) ([]domain.Lot, error) {
	var result []domain.Lot
	for rows.Next() {
		var lot domain.Lot
		var (
			vehicleID    *int64
			name         *string
			plate        *string
			phone        *string
			ticketType   *domain.TicketType
			vehicleType  *domain.VehicleType
			height       *float64
			width        *float64
			length       *float64
			lotNumber    *int
			checkInTime  *time.Time
			checkOutTime *time.Time
			totalCost    *float64
		)
		if err := rows.Scan(
			&lot.ID, &lot.LotNumber, &lot.TicketType, &lot.Status, &lot.VehicleID,
			&vehicleID, &name, &plate, &phone, &ticketType, &vehicleType,
			&height, &width, &length, &lotNumber, &checkInTime, &checkOutTime, &totalCost,
		); err != nil {
			return nil, err
		}
		if vehicleID != nil {
			lot.Vehicle = &domain.ParkedVehicle{
				ID:           *vehicleID,
				Name:         *name,
				LicensePlate: *plate,
				Phone:        *phone,
				TicketType:   *ticketType,
				VehicleType:  *vehicleType,
				Height:       *height,
				Width:        *width,
				Length:       *length,
				LotNumber:    *lotNumber,
				CheckInTime:  *checkInTime,
				CheckOutTime: checkOutTime,
				TotalCost:    *totalCost,
			}
		}
		result = append(result, lot)
	}
	return result, rows.Err()
}
