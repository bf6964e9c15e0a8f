package repository

import (
	"context"
	"fmt"
	"sync"

	"ctchen222/Connect-Four/internal/game"
	"ctchen222/Connect-Four/internal/session"
)

type memoryTableRepository struct {
	mu     sync.RWMutex
	tables map[string]*session.Snapshot
}

// NewMemoryTableRepository creates a TableRepository that lives in process
// memory. It is used when no Redis server is configured.
func NewMemoryTableRepository() TableRepository {
	return &memoryTableRepository{tables: make(map[string]*session.Snapshot)}
}

func (r *memoryTableRepository) Create(ctx context.Context, id string, snap *session.Snapshot) error {
	_, span := tracer.Start(ctx, "MemoryTableRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[id]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, id)
	}
	r.tables[id] = cloneSnapshot(snap)
	return nil
}

func (r *memoryTableRepository) FindByID(ctx context.Context, id string) (*session.Snapshot, error) {
	_, span := tracer.Start(ctx, "MemoryTableRepository.FindByID")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return cloneSnapshot(snap), nil
}

func (r *memoryTableRepository) Save(ctx context.Context, id string, snap *session.Snapshot) error {
	_, span := tracer.Start(ctx, "MemoryTableRepository.Save")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	r.tables[id] = cloneSnapshot(snap)
	return nil
}

func cloneSnapshot(snap *session.Snapshot) *session.Snapshot {
	out := *snap
	out.Columns = make([][]game.Token, len(snap.Columns))
	for i, col := range snap.Columns {
		out.Columns[i] = append([]game.Token{}, col...)
	}
	return &out
}
