package mocks

import (
	"context"
	"sync"

	"github.com/godilite/evalreport/internal/repository/models"
)

// MockRunRepository is a mock implementation of the RunRepository interface
// for testing the service layer. Without SaveRunFunc it keeps runs in memory.
type MockRunRepository struct {
	SaveRunFunc  func(ctx context.Context, run models.RunSummary) error
	ListRunsFunc func(ctx context.Context, limit int) ([]models.RunSummary, error)

	mu    sync.Mutex
	Saved []models.RunSummary
}

// SaveRun implements the RunRepository interface
func (m *MockRunRepository) SaveRun(ctx context.Context, run models.RunSummary) error {
	if m.SaveRunFunc != nil {
		return m.SaveRunFunc(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, run)
	return nil
}

// ListRuns implements the RunRepository interface
func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RunSummary, 0, len(m.Saved))
	for i := len(m.Saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Saved[i])
	}
	return out, nil
}
