package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
)

// memLotRepo is an in-memory LotRepository. Conditional writes take the
// repo mutex, so concurrent callers observe the same winner-takes-the-row
// semantics as the conditional UPDATEs they stand in for.
type memLotRepo struct {
	mu            sync.Mutex
	lots          []*domain.Lot
	vehicles      *memVehicleRepo
	releaseCalls  []int
	forcedRaces   int
	foreignLinkID *int64
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{}
}

// attachVehicles lets reads resolve linked occupancy records, mirroring the
// join the SQL implementation performs.
func (m *memLotRepo) attachVehicles(vehicles *memVehicleRepo) {
	m.vehicles = vehicles
}

func (m *memLotRepo) resolveLocked(lot *domain.Lot) domain.Lot {
	copied := *lot
	if copied.Vehicle == nil && copied.VehicleID != nil && m.vehicles != nil {
		copied.Vehicle = m.vehicles.byID(*copied.VehicleID)
	}
	return copied
}

func (m *memLotRepo) add(ticketType domain.TicketType, lotNumbers ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range lotNumbers {
		m.lots = append(m.lots, &domain.Lot{
			ID:         int64(n),
			LotNumber:  n,
			TicketType: ticketType,
			Status:     domain.LotStatusAvailable,
		})
	}
}

func (m *memLotRepo) occupy(lotNumber int, vehicle *domain.ParkedVehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lot := range m.lots {
		if lot.LotNumber == lotNumber {
			lot.Status = domain.LotStatusOccupied
			if vehicle != nil {
				lot.VehicleID = &vehicle.ID
				lot.Vehicle = vehicle
			}
			return
		}
	}
}

// forceRaces makes the next n Reserve calls fail as if another caller won
// the row.
func (m *memLotRepo) forceRaces(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedRaces = n
}

// linkForeignOnReserve attaches another writer's vehicle reference to
// whichever lot the next Reserve call claims, before the claimant can
// link its own.
func (m *memLotRepo) linkForeignOnReserve(vehicleID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foreignLinkID = &vehicleID
}

func (m *memLotRepo) released() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.releaseCalls...)
}

func (m *memLotRepo) ListAll(_ context.Context, filter repository.LotFilter) ([]domain.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Lot
	for _, lot := range m.lots {
		if filter.TicketType != nil && lot.TicketType != *filter.TicketType {
			continue
		}
		if filter.Status != nil && lot.Status != *filter.Status {
			continue
		}
		result = append(result, m.resolveLocked(lot))
	}
	return result, nil
}

func (m *memLotRepo) ListAvailableByType(_ context.Context, ticketType domain.TicketType) ([]domain.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Lot
	for _, lot := range m.lots {
		if lot.TicketType == ticketType && lot.Status == domain.LotStatusAvailable {
			result = append(result, *lot)
		}
	}
	return result, nil
}

func (m *memLotRepo) CountAvailableByType(ctx context.Context, ticketType domain.TicketType) (int, error) {
	available, err := m.ListAvailableByType(ctx, ticketType)
	return len(available), err
}

func (m *memLotRepo) AvailabilityByType(ctx context.Context) ([]repository.TypeAvailability, error) {
	var result []repository.TypeAvailability
	for _, cfg := range domain.AllTicketTypes() {
		count, err := m.CountAvailableByType(ctx, cfg.Type)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			result = append(result, repository.TypeAvailability{TicketType: cfg.Type, Available: count})
		}
	}
	return result, nil
}

func (m *memLotRepo) GetByNumber(_ context.Context, lotNumber int) (*domain.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lot := range m.lots {
		if lot.LotNumber == lotNumber {
			copied := m.resolveLocked(lot)
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memLotRepo) Reserve(_ context.Context, lotID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedRaces > 0 {
		m.forcedRaces--
		return false, nil
	}
	for _, lot := range m.lots {
		if lot.ID == lotID && lot.Status == domain.LotStatusAvailable {
			lot.Status = domain.LotStatusOccupied
			if m.foreignLinkID != nil {
				id := *m.foreignLinkID
				lot.VehicleID = &id
				m.foreignLinkID = nil
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *memLotRepo) SetVehicle(_ context.Context, lotNumber int, vehicleID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lot := range m.lots {
		if lot.LotNumber == lotNumber && lot.Status == domain.LotStatusOccupied && lot.VehicleID == nil {
			lot.VehicleID = &vehicleID
			return true, nil
		}
	}
	return false, nil
}

func (m *memLotRepo) OccupyAndLink(_ context.Context, lotNumber int, vehicleID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lot := range m.lots {
		if lot.LotNumber == lotNumber && lot.Status == domain.LotStatusAvailable {
			lot.Status = domain.LotStatusOccupied
			lot.VehicleID = &vehicleID
			return true, nil
		}
	}
	return false, nil
}

func (m *memLotRepo) Release(_ context.Context, lotNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseCalls = append(m.releaseCalls, lotNumber)
	for _, lot := range m.lots {
		if lot.LotNumber == lotNumber {
			lot.Status = domain.LotStatusAvailable
			lot.VehicleID = nil
			lot.Vehicle = nil
			return nil
		}
	}
	return nil
}

// memVehicleRepo is an in-memory VehicleRepository with failure injection.
type memVehicleRepo struct {
	mu             sync.Mutex
	nextID         int64
	records        map[int64]*domain.ParkedVehicle
	failNextCreate error
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{records: make(map[int64]*domain.ParkedVehicle)}
}

func (m *memVehicleRepo) failCreate(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextCreate = err
}

func (m *memVehicleRepo) Create(_ context.Context, vehicle *domain.ParkedVehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNextCreate != nil {
		err := m.failNextCreate
		m.failNextCreate = nil
		return err
	}
	for _, existing := range m.records {
		if existing.LicensePlate == vehicle.LicensePlate && existing.CheckOutTime == nil {
			return repository.ErrDuplicatePlate
		}
	}
	m.nextID++
	vehicle.ID = m.nextID
	copied := *vehicle
	m.records[vehicle.ID] = &copied
	return nil
}

func (m *memVehicleRepo) GetCurrentlyParkedByPlate(_ context.Context, plate string) (*domain.ParkedVehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.LicensePlate == plate && record.CheckOutTime == nil {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memVehicleRepo) ListByTicketType(_ context.Context, ticketType domain.TicketType) ([]domain.ParkedVehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.ParkedVehicle
	for _, record := range m.records {
		if record.TicketType == ticketType && record.CheckOutTime == nil {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (m *memVehicleRepo) byID(vehicleID int64) *domain.ParkedVehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[vehicleID]
	if !ok {
		return nil
	}
	copied := *record
	return &copied
}

// backdate rewinds a record's check-in time so tests can exercise elapsed
// cost computation.
func (m *memVehicleRepo) backdate(vehicleID int64, by time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record, ok := m.records[vehicleID]; ok {
		record.CheckInTime = record.CheckInTime.Add(-by)
	}
}

func (m *memVehicleRepo) Checkout(_ context.Context, vehicleID int64, at time.Time, totalCost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[vehicleID]
	if !ok || record.CheckOutTime != nil {
		return pgx.ErrNoRows
	}
	record.CheckOutTime = &at
	record.TotalCost = totalCost
	return nil
}
