// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"sync"

	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
)

// FindEvaluation finds an evaluation by scenario name in the results slice.
// Returns a pointer to the evaluation if found, nil otherwise.
func FindEvaluation(results []scenario.Evaluation, name string) *scenario.Evaluation {
	for i := range results {
		if results[i].Scenario.Name == name {
			return &results[i]
		}
	}
	return nil
}

// SampleScenario is a $200,000 loan at 5% over 30 years.
func SampleScenario(name string, extra float64) scenario.Scenario {
	return scenario.Scenario{
		Name: name,
		Loan: loans.LoanParameters{
			Principal:    250000,
			DownPayment:  50000,
			AnnualRate:   5,
			TermYears:    30,
			ExtraPayment: extra,
		},
	}
}

// MockCache is an in-memory cache that counts calls and can be made to fail.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	Gets int
	Sets int
	Err  error
}

// NewMockCache creates an empty MockCache.
func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

// Get returns the stored value, or Err when set.
func (m *MockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.Err != nil {
		return nil, false, m.Err
	}
	val, ok := m.Data[key]
	return val, ok, nil
}

// Set stores value, or returns Err when set.
func (m *MockCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	if m.Err != nil {
		return m.Err
	}
	m.Data[key] = value
	return nil
}
