package conversation

import (
	"context"
	"sync"

	"docassist/internal/domain/ragmodel"
)

type MemoryLog struct {
	mu    sync.RWMutex
	turns []ragmodel.Turn
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(ctx context.Context, turn ragmodel.Turn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	turn.Ordinal = len(l.turns)
	l.turns = append(l.turns, turn)
	return nil
}

func (l *MemoryLog) Turns(ctx context.Context) ([]ragmodel.Turn, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ragmodel.Turn, len(l.turns))
	copy(out, l.turns)
	return out, nil
}

func (l *MemoryLog) Len(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns), nil
}

func (l *MemoryLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
	return nil
}
