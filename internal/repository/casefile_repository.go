package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/community-bot/internal/domain"
)

// CasefileRepository stores the append-mostly member records.
type CasefileRepository interface {
	AddHistory(ctx context.Context, userID string, entry domain.HistoryEntry) error
	AddNote(ctx context.Context, userID string, note domain.Note) error
	IncrementStrikes(ctx context.Context, userID string) (int, error)
	IncrementInfractions(ctx context.Context, userID string) (int, error)
	// Get returns the stored part of a casefile; vehicles are filled in by
	// the vehicle registry.
	Get(ctx context.Context, userID string) (domain.Casefile, error)
}

type casefileRepository struct {
	mu          sync.Mutex
	strikes     map[string]int
	infractions map[string]int
	notes       map[string][]domain.Note
	history     map[string][]domain.HistoryEntry
}

// NewCasefileRepository builds an in-memory repository.
func NewCasefileRepository() CasefileRepository {
	return &casefileRepository{
		strikes:     make(map[string]int),
		infractions: make(map[string]int),
		notes:       make(map[string][]domain.Note),
		history:     make(map[string][]domain.HistoryEntry),
	}
}

func (r *casefileRepository) AddHistory(_ context.Context, userID string, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[userID] = append(r.history[userID], entry)
	return nil
}

func (r *casefileRepository) AddNote(_ context.Context, userID string, note domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[userID] = append(r.notes[userID], note)
	return nil
}

func (r *casefileRepository) IncrementStrikes(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strikes[userID]++
	return r.strikes[userID], nil
}

func (r *casefileRepository) IncrementInfractions(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infractions[userID]++
	return r.infractions[userID], nil
}

func (r *casefileRepository) Get(_ context.Context, userID string) (domain.Casefile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.Casefile{
		UserID:              userID,
		Strikes:             r.strikes[userID],
		CivilianInfractions: r.infractions[userID],
		Notes:               append([]domain.Note(nil), r.notes[userID]...),
		History:             append([]domain.HistoryEntry(nil), r.history[userID]...),
	}, nil
}
