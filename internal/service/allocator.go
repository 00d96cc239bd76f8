package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/config"
	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
)

// LotAllocator finds and atomically claims one available lot of a tier.
// The claim is a conditional update on the lot row; when it affects zero
// rows another caller won the race for that specific lot and the allocator
// retries from a fresh listing, up to a fixed bound.
type LotAllocator struct {
	lots     repository.LotRepository
	logger   *zap.Logger
	attempts int
	delay    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand

	sleep func(time.Duration)
}

// NewLotAllocator constructs the allocator with configured retry bounds.
func NewLotAllocator(lots repository.LotRepository, cfg config.AllocatorConfig, logger *zap.Logger) *LotAllocator {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &LotAllocator{
		lots:     lots,
		logger:   logger,
		attempts: attempts,
		delay:    cfg.RetryDelay(),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
	}
}

// WithRand swaps the random source, used by tests for determinism.
func (a *LotAllocator) WithRand(rnd *rand.Rand) *LotAllocator {
	a.rnd = rnd
	return a
}

// WithSleep swaps the inter-attempt pause, used by tests.
func (a *LotAllocator) WithSleep(sleep func(time.Duration)) *LotAllocator {
	a.sleep = sleep
	return a
}

// Reserve claims one available lot of the given tier. claimed=false with a
// nil error means capacity was exhausted, either genuinely or because every
// attempt lost its race.
func (a *LotAllocator) Reserve(ctx context.Context, ticketType domain.TicketType) (lotNumber int, claimed bool, err error) {
	for attempt := 1; attempt <= a.attempts; attempt++ {
		available, err := a.lots.ListAvailableByType(ctx, ticketType)
		if err != nil {
			return 0, false, err
		}
		if len(available) == 0 {
			a.logger.Warn("no available lots",
				zap.String("ticket_type", string(ticketType)),
				zap.Int("attempt", attempt))
			return 0, false, nil
		}

		// Pick uniformly at random so concurrent callers spread across the
		// available set instead of funneling onto the lowest lot number.
		selected := available[a.pick(len(available))]

		ok, err := a.lots.Reserve(ctx, selected.ID)
		if err != nil {
			return 0, false, err
		}
		if ok {
			a.logger.Info("reserved lot",
				zap.Int("lot_number", selected.LotNumber),
				zap.String("ticket_type", string(ticketType)),
				zap.Int("attempt", attempt))
			return selected.LotNumber, true, nil
		}

		a.logger.Warn("lot reservation lost race",
			zap.Int("lot_number", selected.LotNumber),
			zap.Int("attempt", attempt))
		if attempt < a.attempts {
			a.sleep(a.delay)
		}
	}

	a.logger.Warn("lot reservation attempts exhausted",
		zap.String("ticket_type", string(ticketType)),
		zap.Int("attempts", a.attempts))
	return 0, false, nil
}

func (a *LotAllocator) pick(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rnd.Intn(n)
}
