package memory

import (
	"context"
	"sync"
)

// PermissionMap is an in-memory implementation of app.PermissionMap.
type PermissionMap struct {
	mu    sync.Mutex
	flags map[string]map[string]bool
}

func NewPermissionMap() *PermissionMap {
	return &PermissionMap{flags: make(map[string]map[string]bool)}
}

func (m *PermissionMap) Allowed(_ context.Context, student, subject string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[student][subject], nil
}

func (m *PermissionMap) SetAllowed(_ context.Context, student, subject string, allowed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(student, subject, allowed)
	return nil
}

func (m *PermissionMap) Toggle(_ context.Context, student, subject string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := !m.flags[student][subject]
	m.setLocked(student, subject, next)
	return next, nil
}

func (m *PermissionMap) setLocked(student, subject string, allowed bool) {
	if m.flags[student] == nil {
		m.flags[student] = make(map[string]bool)
	}
	m.flags[student][subject] = allowed
}
