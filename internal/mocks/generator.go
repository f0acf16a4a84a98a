package mocks

import (
	"context"
	"sync"

	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	GenerateCandidatesFn func(ctx context.Context, text string) ([]domain.Candidate, error)

	// Default response values
	Candidates []domain.Candidate
	Err        error
	ModelName  string

	mu    sync.Mutex
	Texts []string
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateCandidates implements generation.Generator.
func (m *MockGenerator) GenerateCandidates(ctx context.Context, text string) ([]domain.Candidate, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.mu.Unlock()

	if m.GenerateCandidatesFn != nil {
		return m.GenerateCandidatesFn(ctx, text)
	}
	return m.Candidates, m.Err
}

// Model implements generation.Generator.
func (m *MockGenerator) Model() string {
	if m.ModelName == "" {
		return "mock/model"
	}
	return m.ModelName
}

// Calls returns how many times GenerateCandidates was called.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}
