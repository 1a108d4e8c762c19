package mocks

import (
	"context"
	"database/sql"
	"sync"
)

// MockDatabase stands in for *database.DB where only health and pool stats are needed
type MockDatabase struct {
	mu sync.Mutex

	// PingError is returned by HealthCheck when set
	PingError error
	Pool      sql.DBStats
	Pings     int
}

func (m *MockDatabase) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pings++
	return m.PingError
}

func (m *MockDatabase) Stats() sql.DBStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Pool
}
