package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/config"
	"github.com/spec-kit/parking-garage-service/internal/domain"
)

func testAllocator(lots *memLotRepo) *LotAllocator {
	return NewLotAllocator(lots, config.AllocatorConfig{RetryAttempts: 3, RetryDelayMs: 50}, zap.NewNop()).
		WithRand(rand.New(rand.NewSource(1))).
		WithSleep(func(time.Duration) {})
}

func TestReserveClaimsAvailableLot(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeVIP, 1, 2, 3)

	lotNumber, claimed, err := testAllocator(lots).Reserve(context.Background(), domain.TicketTypeVIP)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !claimed {
		t.Fatal("expected a claim")
	}
	if lotNumber < 1 || lotNumber > 3 {
		t.Errorf("claimed lot %d outside the tier range", lotNumber)
	}

	remaining, _ := lots.ListAvailableByType(context.Background(), domain.TicketTypeVIP)
	if len(remaining) != 2 {
		t.Errorf("expected 2 lots left, got %d", len(remaining))
	}
}

func TestReserveEmptyTier(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeValue, 11, 12)

	lotNumber, claimed, err := testAllocator(lots).Reserve(context.Background(), domain.TicketTypeVIP)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if claimed || lotNumber != 0 {
		t.Errorf("expected no claim for an empty tier, got lot %d claimed=%v", lotNumber, claimed)
	}
}

func TestReserveRetriesAfterLostRace(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeRegular, 31, 32)
	lots.forceRaces(2)

	sleeps := 0
	allocator := testAllocator(lots).WithSleep(func(time.Duration) { sleeps++ })

	_, claimed, err := allocator.Reserve(context.Background(), domain.TicketTypeRegular)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !claimed {
		t.Fatal("expected the third attempt to succeed")
	}
	if sleeps != 2 {
		t.Errorf("expected 2 inter-attempt pauses, got %d", sleeps)
	}
}

func TestReserveGivesUpAfterExhaustedAttempts(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeRegular, 31)
	lots.forceRaces(3)

	sleeps := 0
	allocator := testAllocator(lots).WithSleep(func(time.Duration) { sleeps++ })

	_, claimed, err := allocator.Reserve(context.Background(), domain.TicketTypeRegular)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if claimed {
		t.Error("expected no claim after every attempt lost its race")
	}
	if sleeps != 2 {
		t.Errorf("expected no pause after the final attempt, got %d sleeps", sleeps)
	}
}

func TestReserveConcurrentCallersNeverDoubleBook(t *testing.T) {
	lots := newMemLotRepo()
	lots.add(domain.TicketTypeValue, 11, 12, 13, 14, 15)

	allocator := NewLotAllocator(lots, config.AllocatorConfig{RetryAttempts: 3}, zap.NewNop()).
		WithSleep(func(time.Duration) {})

	const callers = 20
	claimedLots := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lotNumber, claimed, err := allocator.Reserve(context.Background(), domain.TicketTypeValue)
			if err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			if claimed {
				claimedLots <- lotNumber
			}
		}()
	}
	wg.Wait()
	close(claimedLots)

	seen := make(map[int]bool)
	for lotNumber := range claimedLots {
		if seen[lotNumber] {
			t.Errorf("lot %d claimed twice", lotNumber)
		}
		seen[lotNumber] = true
	}
	if len(seen) == 0 {
		t.Fatal("expected at least one claim")
	}
	remaining, _ := lots.ListAvailableByType(context.Background(), domain.TicketTypeValue)
	if len(seen)+len(remaining) != 5 {
		t.Errorf("claims (%d) plus remaining (%d) should account for all 5 lots", len(seen), len(remaining))
	}
}
