package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps tables in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string
	order  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][][]string)}
}

func (m *MemoryStore) OpenTable(_ context.Context, name string) (Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.tables[name]; !ok {
		return Handle{}, ErrTableNotFound
	}
	return Handle{Name: name, ID: int64(slices.Index(m.order, name))}, nil
}

func (m *MemoryStore) CreateTable(_ context.Context, name string, header []string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[name]; ok {
		return Handle{}, ErrTableExists
	}
	m.order = append(m.order, name)
	m.tables[name] = [][]string{slices.Clone(header)}
	return Handle{Name: name, ID: int64(len(m.order) - 1)}, nil
}

func (m *MemoryStore) HeaderRow(_ context.Context, h Handle) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[h.Name]
	if !ok {
		return nil, ErrTableNotFound
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return slices.Clone(rows[0]), nil
}

func (m *MemoryStore) AppendRow(_ context.Context, h Handle, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[h.Name]
	if !ok {
		return ErrTableNotFound
	}
	m.tables[h.Name] = append(rows, slices.Clone(row))
	return nil
}

func (m *MemoryStore) ReadTable(_ context.Context, name string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[name]
	if !ok {
		return nil, ErrTableNotFound
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

// PutRaw replaces a table's rows verbatim, header included. It lets callers
// seed tables that were edited outside the service.
func (m *MemoryStore) PutRaw(name string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[name]; !ok {
		m.order = append(m.order, name)
	}
	m.tables[name] = rows
}
