package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/domain"
)

func newTestRegistrar(lots *memLotRepo, vehicles *memVehicleRepo) *VehicleRegistrar {
	lots.attachVehicles(vehicles)
	return NewVehicleRegistrar(vehicles, lots, zap.NewNop())
}

func TestRegisterOccupiesStillAvailableLot(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeRegular, 31)
	vehicles := newMemVehicleRepo()
	registrar := newTestRegistrar(lots, vehicles)

	vehicle, err := registrar.Register(context.Background(), smallCarInput("REG-01"), domain.TicketTypeRegular, 31)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	lot, err := lots.GetByNumber(context.Background(), 31)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if lot.Status != domain.LotStatusOccupied {
		t.Errorf("lot status = %s, want OCCUPIED", lot.Status)
	}
	if lot.VehicleID == nil || *lot.VehicleID != vehicle.ID {
		t.Errorf("lot vehicle id = %v, want %d", lot.VehicleID, vehicle.ID)
	}
}

func TestRegisterRefusesLotLinkedToAnotherVehicle(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeRegular, 31)
	vehicles := newMemVehicleRepo()
	registrar := newTestRegistrar(lots, vehicles)
	lots.occupy(31, &domain.ParkedVehicle{ID: 99, LicensePlate: "ZZZ-99"})

	_, err := registrar.Register(context.Background(), smallCarInput("REG-02"), domain.TicketTypeRegular, 31)
	if code := domainCode(t, err); code != "LOT_ALREADY_LINKED" {
		t.Errorf("code = %s, want LOT_ALREADY_LINKED", code)
	}

	lot, err := lots.GetByNumber(context.Background(), 31)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if lot.Status != domain.LotStatusOccupied || lot.VehicleID == nil || *lot.VehicleID != 99 {
		t.Errorf("existing link was disturbed: %+v", lot)
	}
}

func TestCheckInLeavesForeignLinkedLotUntouched(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeRegular, 31)
	vehicles := newMemVehicleRepo()
	parking := newTestParking(lots, vehicles)
	lots.linkForeignOnReserve(99)

	_, _, err := parking.CheckIn(context.Background(), smallCarInput("AAA-11"))
	if code := domainCode(t, err); code != "LOT_ALREADY_LINKED" {
		t.Errorf("code = %s, want LOT_ALREADY_LINKED", code)
	}

	if calls := lots.released(); len(calls) != 0 {
		t.Errorf("lot was released despite belonging to another vehicle: %v", calls)
	}
	lot, err := lots.GetByNumber(context.Background(), 31)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if lot.Status != domain.LotStatusOccupied || lot.VehicleID == nil || *lot.VehicleID != 99 {
		t.Errorf("foreign link was disturbed: %+v", lot)
	}
}
