package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/clock"
	"github.com/spec-kit/community-bot/internal/domain"
	"github.com/spec-kit/community-bot/internal/events"
	"github.com/spec-kit/community-bot/internal/observability"
	"github.com/spec-kit/community-bot/internal/repository"
	apperrors "github.com/spec-kit/community-bot/pkg/util/errorutil"
)

// Registry quotas.
const (
	BoosterVehicleSlots     = 5
	DefaultVehicleSlots     = 2
	DefaultUnregisterUses   = 2
	UnlimitedUnregisterUses = -1
)

// VehicleService applies quota rules on top of the vehicle registry.
type VehicleService struct {
	publisher
	vehicles repository.VehicleRepository
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// VehicleDependencies bundles collaborators for the vehicle service.
type VehicleDependencies struct {
	VehicleRepo repository.VehicleRepository
	Dispatcher  events.Dispatcher
	Clock       clock.Clock
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// UnregisterResult reports what an unregister removed.
type UnregisterResult struct {
	Removed []domain.Vehicle
	// Remaining is the allowance left; UnlimitedUnregisterUses for boosters.
	Remaining int
}

// NewVehicleService constructs the service.
func NewVehicleService(deps VehicleDependencies) *VehicleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &VehicleService{
		publisher: publisher{dispatcher: deps.Dispatcher, clock: clk},
		vehicles:  deps.VehicleRepo,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// SlotsFor is the number of vehicles a member may hold.
func SlotsFor(isBooster bool) int {
	if isBooster {
		return BoosterVehicleSlots
	}
	return DefaultVehicleSlots
}

// Register adds a vehicle for the actor.
func (s *VehicleService) Register(ctx context.Context, actor domain.Actor, v domain.Vehicle) (*domain.Vehicle, error) {
	v = trimVehicle(v)
	if v.Plate == "" {
		return nil, apperrors.NewValidationError("A plate is required.", nil)
	}
	if strings.ContainsAny(v.Plate, " \t\n") {
		return nil, apperrors.NewValidationError("Plates cannot contain spaces.", map[string]any{"plate": v.Plate})
	}
	v.StampRegistered(s.now())

	limit := SlotsFor(actor.Capabilities.IsBooster)
	err := s.vehicles.Update(ctx, actor.UserID, func(rec *repository.VehicleRecord) error {
		if len(rec.Vehicles) >= limit {
			return apperrors.NewQuotaExceeded(
				fmt.Sprintf("You have reached your vehicle limit (%d).", limit),
				map[string]any{"limit": limit},
			)
		}
		rec.Vehicles = append(rec.Vehicles, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordVehicleAction("register")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventVehicleRegistered,
		Actor:   events.ActorOf(actor),
		Payload: events.VehiclePayload{Vehicle: v},
	})
	s.logger.Info("vehicle registered", zap.String("user_id", actor.UserID), zap.String("plate", v.Plate))
	return &v, nil
}

// Unregister removes every vehicle whose plate matches. Boosters have no
// allowance limit; everyone else spends one use per successful call.
func (s *VehicleService) Unregister(ctx context.Context, actor domain.Actor, plate string) (*UnregisterResult, error) {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, apperrors.NewValidationError("A plate is required.", nil)
	}
	booster := actor.Capabilities.IsBooster

	result := &UnregisterResult{Remaining: UnlimitedUnregisterUses}
	err := s.vehicles.Update(ctx, actor.UserID, func(rec *repository.VehicleRecord) error {
		uses := DefaultUnregisterUses
		if rec.UsesTracked {
			uses = rec.UnregisterUses
		}
		if !booster && uses <= 0 {
			return apperrors.NewQuotaExceeded("You have no unregister uses remaining.", nil)
		}

		kept := rec.Vehicles[:0]
		var removed []domain.Vehicle
		for _, v := range rec.Vehicles {
			if v.PlateMatches(plate) {
				removed = append(removed, v)
			} else {
				kept = append(kept, v)
			}
		}
		if len(removed) == 0 {
			return apperrors.NewNotFound("vehicle", map[string]any{"plate": plate})
		}
		rec.Vehicles = kept
		if !booster {
			rec.UnregisterUses = uses - 1
			rec.UsesTracked = true
			result.Remaining = rec.UnregisterUses
		}
		result.Removed = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordVehicleAction("unregister")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventVehicleUnregistered,
		Actor:   events.ActorOf(actor),
		Payload: events.VehiclePayload{Vehicle: result.Removed[0], Removed: len(result.Removed)},
	})
	return result, nil
}

// List returns a member's registered vehicles.
func (s *VehicleService) List(userID string) []domain.Vehicle {
	return s.vehicles.Get(userID).Vehicles
}

// RemainingUnregisters reports the member's allowance.
func (s *VehicleService) RemainingUnregisters(userID string, isBooster bool) int {
	if isBooster {
		return UnlimitedUnregisterUses
	}
	rec := s.vehicles.Get(userID)
	if !rec.UsesTracked {
		return DefaultUnregisterUses
	}
	return rec.UnregisterUses
}

func trimVehicle(v domain.Vehicle) domain.Vehicle {
	v.Year = strings.TrimSpace(v.Year)
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	v.Color = strings.TrimSpace(v.Color)
	v.Plate = strings.TrimSpace(v.Plate)
	v.State = strings.TrimSpace(v.State)
	v.Usage = strings.TrimSpace(v.Usage)
	return v
}
