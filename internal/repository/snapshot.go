package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/community-bot/internal/domain"
)

// Snapshot is the persisted form of the vehicle registry. Both maps are
// keyed by user id.
type Snapshot struct {
	VehicleStore   map[string][]domain.Vehicle `json:"vehicle_store"`
	UnregisterUses map[string]int              `json:"unregister_uses"`
}

// SnapshotStore persists the registry between restarts.
type SnapshotStore interface {
	// Load returns an empty snapshot when nothing was saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	// Ping reports whether the backend is usable, for readiness checks.
	Ping(ctx context.Context) error
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		VehicleStore:   map[string][]domain.Vehicle{},
		UnregisterUses: map[string]int{},
	}
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	snap := emptySnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.VehicleStore == nil {
		snap.VehicleStore = map[string][]domain.Vehicle{}
	}
	if snap.UnregisterUses == nil {
		snap.UnregisterUses = map[string]int{}
	}
	return snap, nil
}

// FileSnapshotStore keeps the snapshot in a JSON file.
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore stores the snapshot at path.
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

func (s *FileSnapshotStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Save writes to a temporary file and renames it over the old snapshot so a
// crash mid-write never leaves a truncated file behind.
func (s *FileSnapshotStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Ping checks that the snapshot directory exists.
func (s *FileSnapshotStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// RedisClient is the part of *redis.Client the snapshot store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisSnapshotStore keeps the same JSON document under a single key.
type RedisSnapshotStore struct {
	client RedisClient
	key    string
}

// NewRedisSnapshotStore stores the snapshot under key.
func NewRedisSnapshotStore(client RedisClient, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: key}
}

func (s *RedisSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
