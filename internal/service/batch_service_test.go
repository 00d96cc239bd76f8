package service

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/domain"
)

func newTestBatch(lots *memLotRepo, vehicles *memVehicleRepo) *BatchService {
	parking := newTestParking(lots, vehicles)
	generator := NewRandomDataGeneratorWithRand(rand.New(rand.NewSource(7)))
	return NewBatchService(parking, lots, generator, zap.NewNop())
}

func TestAsyncCheckInClampsToAvailability(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeRegular, 31, 32)
	batch := newTestBatch(lots, newMemVehicleRepo())

	requested := 10
	result, err := batch.AsyncCheckIn(context.Background(), &requested)
	if err != nil {
		t.Fatalf("AsyncCheckIn: %v", err)
	}
	if result.TotalProcessed != 2 {
		t.Errorf("total processed = %d, want 2", result.TotalProcessed)
	}
	if result.Successful != 2 || result.Failed != 0 {
		t.Errorf("successful=%d failed=%d, want 2/0: %+v", result.Successful, result.Failed, result.Results)
	}

	available, _ := lots.CountAvailableByType(context.Background(), domain.TicketTypeRegular)
	if available != 0 {
		t.Errorf("expected a full garage after the clamped batch, %d available", available)
	}
}

func TestAsyncCheckInFullGarage(t *testing.T) {
	batch := newTestBatch(newMemLotRepo(), newMemVehicleRepo())

	result, err := batch.AsyncCheckIn(context.Background(), nil)
	if err != nil {
		t.Fatalf("AsyncCheckIn: %v", err)
	}
	if result.TotalProcessed != 0 || result.Successful != 0 || result.Failed != 1 {
		t.Errorf("unexpected full-garage result %+v", result)
	}
	if len(result.Results) != 1 || !strings.Contains(result.Results[0].Error, "full") {
		t.Errorf("expected a single explanatory failure, got %+v", result.Results)
	}
}

func TestAsyncCheckInDefaultsToFive(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeVIP, 1, 2, 3)
	lots.add(domain.TicketTypeValue, 11, 12, 13)
	lots.add(domain.TicketTypeRegular, 31, 32, 33)
	batch := newTestBatch(lots, newMemVehicleRepo())

	result, err := batch.AsyncCheckIn(context.Background(), nil)
	if err != nil {
		t.Fatalf("AsyncCheckIn: %v", err)
	}
	if result.TotalProcessed != 5 {
		t.Errorf("total processed = %d, want default 5", result.TotalProcessed)
	}
	if result.Successful != 5 {
		t.Errorf("successful = %d, want 5: %+v", result.Successful, result.Results)
	}

	plates := make(map[string]bool)
	for _, item := range result.Results {
		if plates[item.LicensePlate] {
			t.Errorf("duplicate generated plate %s", item.LicensePlate)
		}
		plates[item.LicensePlate] = true
	}
}

func TestAsyncCheckInRespectsPerTierAvailability(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeVIP, 1)
	lots.add(domain.TicketTypeRegular, 31)
	batch := newTestBatch(lots, newMemVehicleRepo())

	requested := 2
	result, err := batch.AsyncCheckIn(context.Background(), &requested)
	if err != nil {
		t.Fatalf("AsyncCheckIn: %v", err)
	}
	if result.Successful != 2 {
		t.Fatalf("successful = %d, want 2: %+v", result.Successful, result.Results)
	}

	tiers := make(map[domain.TicketType]int)
	for _, item := range result.Results {
		tiers[item.TicketType]++
	}
	if tiers[domain.TicketTypeVIP] != 1 || tiers[domain.TicketTypeRegular] != 1 {
		t.Errorf("batch over-committed a tier: %v", tiers)
	}
}

func TestGenerateRandomRequestFitsItsTier(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeVIP, 1, 2)
	lots.add(domain.TicketTypeValue, 11)
	batch := newTestBatch(lots, newMemVehicleRepo())

	for i := 0; i < 25; i++ {
		input, err := batch.GenerateRandomRequest(context.Background())
		if err != nil {
			t.Fatalf("GenerateRandomRequest: %v", err)
		}
		if input == nil {
			t.Fatal("expected a request while lots remain")
		}
		cfg, err := domain.ConfigFor(input.TicketType)
		if err != nil {
			t.Fatalf("generated unknown tier %s", input.TicketType)
		}
		compatible, err := cfg.IsCompatible(input.VehicleType, input.Dimensions)
		if err != nil {
			t.Fatalf("IsCompatible: %v", err)
		}
		if !compatible {
			t.Errorf("generated %s (%+v) does not fit tier %s",
				input.VehicleType, input.Dimensions, input.TicketType)
		}
		if _, err := domain.NormalizeLicensePlate(input.LicensePlate); err != nil {
			t.Errorf("generated invalid plate %q: %v", input.LicensePlate, err)
		}
	}
}

func TestGenerateRandomRequestNilWhenFull(t *testing.T) {
	batch := newTestBatch(newMemLotRepo(), newMemVehicleRepo())

	input, err := batch.GenerateRandomRequest(context.Background())
	if err != nil {
		t.Fatalf("GenerateRandomRequest: %v", err)
	}
	if input != nil {
		t.Errorf("expected nil for a full garage, got %+v", input)
	}
}
