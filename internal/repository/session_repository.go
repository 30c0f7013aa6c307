package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/community-bot/internal/domain"
)

// SessionRepository stores the active session and session log per channel.
type SessionRepository interface {
	Put(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, channelID string) (*domain.Session, error)
	Delete(ctx context.Context, channelID string) error
	PutLog(ctx context.Context, log domain.SessionLog) error
	GetLog(ctx context.Context, channelID string) (*domain.SessionLog, error)
	DeleteLog(ctx context.Context, channelID string) error
}

type sessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	logs     map[string]domain.SessionLog
}

// NewSessionRepository builds an in-memory repository.
func NewSessionRepository() SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]domain.Session),
		logs:     make(map[string]domain.SessionLog),
	}
}

// Put replaces any session already recorded for the channel.
func (r *sessionRepository) Put(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.Setup != nil {
		setup := *session.Setup
		session.Setup = &setup
	}
	r.sessions[session.ChannelID] = session
	return nil
}

// Get returns nil when the channel has no session.
func (r *sessionRepository) Get(_ context.Context, channelID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[channelID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r *sessionRepository) Delete(_ context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, channelID)
	return nil
}

func (r *sessionRepository) PutLog(_ context.Context, log domain.SessionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.ChannelID] = log
	return nil
}

// GetLog returns nil when the channel has no session log.
func (r *sessionRepository) GetLog(_ context.Context, channelID string) (*domain.SessionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[channelID]
	if !ok {
		return nil, nil
	}
	return &log, nil
}

func (r *sessionRepository) DeleteLog(_ context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.logs, channelID)
	return nil
}
