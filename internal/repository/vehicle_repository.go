package repository

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/domain"
)

// VehicleRecord is one member's slice of the registry.
type VehicleRecord struct {
	Vehicles []domain.Vehicle
	// UnregisterUses is meaningful only when UsesTracked is set; members
	// start untracked until their first unregister.
	UnregisterUses int
	UsesTracked    bool
}

// VehicleRepository is the in-memory registry backed by a snapshot store.
type VehicleRepository interface {
	// Load replaces the registry with the stored snapshot. A missing or
	// unreadable snapshot leaves the registry empty and is not an error.
	Load(ctx context.Context)
	Get(userID string) VehicleRecord
	// Update applies fn to a copy of the member's record under the registry
	// lock. When fn returns nil the copy is committed and the snapshot saved.
	Update(ctx context.Context, userID string, fn func(*VehicleRecord) error) error
}

type vehicleRepository struct {
	mu       sync.Mutex
	vehicles map[string][]domain.Vehicle
	uses     map[string]int
	store    SnapshotStore
	logger   *zap.Logger
}

// NewVehicleRepository builds an empty registry; call Load to restore it.
func NewVehicleRepository(store SnapshotStore, logger *zap.Logger) VehicleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &vehicleRepository{
		vehicles: make(map[string][]domain.Vehicle),
		uses:     make(map[string]int),
		store:    store,
		logger:   logger,
	}
}

func (r *vehicleRepository) Load(ctx context.Context) {
	if r.store == nil {
		return
	}
	snap, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("vehicle snapshot unreadable, starting empty", zap.Error(err))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles = snap.VehicleStore
	r.uses = snap.UnregisterUses
	r.logger.Info("vehicle registry restored", zap.Int("members", len(r.vehicles)))
}

func (r *vehicleRepository) Get(userID string) VehicleRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordLocked(userID)
}

func (r *vehicleRepository) Update(ctx context.Context, userID string, fn func(*VehicleRecord) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.recordLocked(userID)
	if err := fn(&rec); err != nil {
		return err
	}
	if len(rec.Vehicles) == 0 {
		delete(r.vehicles, userID)
	} else {
		r.vehicles[userID] = rec.Vehicles
	}
	if rec.UsesTracked {
		r.uses[userID] = rec.UnregisterUses
	} else {
		delete(r.uses, userID)
	}
	r.saveLocked(ctx)
	return nil
}

func (r *vehicleRepository) recordLocked(userID string) VehicleRecord {
	uses, tracked := r.uses[userID]
	return VehicleRecord{
		Vehicles:       append([]domain.Vehicle(nil), r.vehicles[userID]...),
		UnregisterUses: uses,
		UsesTracked:    tracked,
	}
}

// saveLocked persists the registry. Failures are logged; the in-memory
// registry stays authoritative and the next mutation retries the save.
func (r *vehicleRepository) saveLocked(ctx context.Context) {
	if r.store == nil {
		return
	}
	snap := emptySnapshot()
	for id, list := range r.vehicles {
		snap.VehicleStore[id] = append([]domain.Vehicle(nil), list...)
	}
	for id, n := range r.uses {
		snap.UnregisterUses[id] = n
	}
	if err := r.store.Save(ctx, snap); err != nil {
		r.logger.Error("vehicle snapshot save failed", zap.Error(err))
	}
}
