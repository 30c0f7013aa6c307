package repository

import "sync/atomic"

// TicketSequence hands out ticket numbers. Numbers are strictly increasing
// for the life of the process and never handed out twice, even when the
// ticket they named was deleted or its channel creation failed.
type TicketSequence struct {
	last atomic.Int64
}

// NewTicketSequence starts after start; the first Next returns start+1.
func NewTicketSequence(start int64) *TicketSequence {
	s := &TicketSequence{}
	s.last.Store(start)
	return s
}

// Next atomically increments and returns the sequence.
func (s *TicketSequence) Next() int64 {
	return s.last.Add(1)
}

// Current returns the last number handed out.
func (s *TicketSequence) Current() int64 {
	return s.last.Load()
}
