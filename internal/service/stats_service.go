package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-garage-service/internal/domain"
	"github.com/spec-kit/parking-garage-service/internal/repository"
)

const statsSnapshotKey = "parking:stats:snapshot"

// TierStatistics is the per-tier occupancy breakdown. Cost and the time
// limit are static tier metadata surfaced for client countdowns.
type TierStatistics struct {
	TicketType     domain.TicketType `json:"ticket_type"`
	Name           string            `json:"name"`
	Cost           float64           `json:"cost"`
	TimeLimitHours int               `json:"time_limit_hours"`
	Total          int               `json:"total"`
	Available      int               `json:"available"`
	Occupied       int               `json:"occupied"`
}

// GarageStatistics is derived from the lot table on demand; it is never
// stored as authoritative state.
type GarageStatistics struct {
	TotalLots         int                        `json:"total_lots"`
	AvailableLots     int                        `json:"available_lots"`
	OccupiedLots      int                        `json:"occupied_lots"`
	ByTicketType      []TierStatistics           `json:"by_ticket_type"`
	VehiclesByType    map[domain.VehicleType]int `json:"vehicles_by_type"`
	MaxRandomVehicles int                        `json:"max_random_vehicles"`
	HasAvailableLots  bool                       `json:"has_available_lots"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// StatsService recomputes garage statistics from the lot table and keeps a
// short-lived Redis snapshot in front of the recomputation. The snapshot is
// invalidated on every occupancy mutation, so readers between mutations hit
// the cache and readers after one recompute fresh.
type StatsService struct {
	lots   repository.LotRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the stats service. A nil cache client disables
// snapshotting and every call recomputes.
func NewStatsService(lots repository.LotRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{lots: lots, cache: cache, ttl: ttl, logger: logger}
}

// Compute returns current garage statistics, serving the cached snapshot
// when one exists.
func (s *StatsService) Compute(ctx context.Context) (GarageStatistics, error) {
	if cached, ok := s.loadSnapshot(ctx); ok {
		return cached, nil
	}

	lots, err := s.lots.ListAll(ctx, repository.LotFilter{})
	if err != nil {
		return GarageStatistics{}, err
	}

	stats := s.derive(lots)
	s.storeSnapshot(ctx, stats)
	return stats, nil
}

// InvalidateSnapshot drops the cached snapshot so the next read recomputes.
func (s *StatsService) InvalidateSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsSnapshotKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate stats snapshot", zap.Error(err))
	}
}

func (s *StatsService) derive(lots []domain.Lot) GarageStatistics {
	stats := GarageStatistics{
		VehiclesByType: make(map[domain.VehicleType]int),
		GeneratedAt:    time.Now().UTC(),
	}

	tierOrder := domain.AllTicketTypes()
	perTier := make(map[domain.TicketType]*TierStatistics, len(tierOrder))
	for _, cfg := range tierOrder {
		perTier[cfg.Type] = &TierStatistics{
			TicketType:     cfg.Type,
			Name:           cfg.Name,
			Cost:           cfg.Cost,
			TimeLimitHours: cfg.TimeLimitHours,
		}
	}

	for _, lot := range lots {
		stats.TotalLots++
		tier := perTier[lot.TicketType]
		if tier == nil {
			continue
		}
		tier.Total++
		if lot.IsAvailable() {
			stats.AvailableLots++
			tier.Available++
			continue
		}
		stats.OccupiedLots++
		tier.Occupied++
		if lot.Vehicle != nil {
			stats.VehiclesByType[lot.Vehicle.VehicleType]++
		}
	}

	for _, cfg := range tierOrder {
		if tier := perTier[cfg.Type]; tier != nil {
			stats.ByTicketType = append(stats.ByTicketType, *tier)
		}
	}

	stats.HasAvailableLots = stats.AvailableLots > 0
	stats.MaxRandomVehicles = stats.AvailableLots
	if stats.MaxRandomVehicles > defaultBatchSize {
		stats.MaxRandomVehicles = defaultBatchSize
	}
	return stats
}

func (s *StatsService) loadSnapshot(ctx context.Context) (GarageStatistics, bool) {
	if s.cache == nil {
		return GarageStatistics{}, false
	}
	raw, err := s.cache.Get(ctx, statsSnapshotKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read stats snapshot", zap.Error(err))
		}
		return GarageStatistics{}, false
	}
	var stats GarageStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("discarding malformed stats snapshot", zap.Error(err))
		return GarageStatistics{}, false
	}
	return stats, true
}

func (s *StatsService) storeSnapshot(ctx context.Context, stats GarageStatistics) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsSnapshotKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to store stats snapshot", zap.Error(err))
	}
}
