package snapshot

import (
	"context"
	"sync"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Store holds the most recent completed cycle for the read API. This is not
// a scan history: every Put overwrites the previous cycle.
type Store interface {
	Put(ctx context.Context, res *domain.CycleResult) error
	Latest(ctx context.Context) (*domain.CycleResult, error)
	Health(ctx context.Context) error
}

// Memory is the single-instance store. Good enough for dev and for tests.
type Memory struct {
	mu     sync.RWMutex
	latest *domain.CycleResult
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Put(_ context.Context, res *domain.CycleResult) error {
	m.mu.Lock()
	m.latest = res
	m.mu.Unlock()
	return nil
}

// Latest returns the last completed cycle, or an empty result before the
// first cycle has finished.
func (m *Memory) Latest(_ context.Context) (*domain.CycleResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.latest == nil {
		return &domain.CycleResult{Candidates: []domain.Candidate{}}, nil
	}
	return m.latest, nil
}

func (m *Memory) Health(_ context.Context) error {
	return nil
}
