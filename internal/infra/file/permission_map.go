package file

import (
	"context"
	"path/filepath"
	"sync"
)

// PermissionMap stores the retest flags in permissions.json, keyed by
// student then subject. A missing entry reads as false.
type PermissionMap struct {
	path string

	mu    sync.Mutex
	flags map[string]map[string]bool
}

func OpenPermissionMap(dir string) (*PermissionMap, error) {
	m := &PermissionMap{
		path:  filepath.Join(dir, "permissions.json"),
		flags: make(map[string]map[string]bool),
	}
	if err := loadDocument(m.path, &m.flags, "{}"); err != nil {
		return nil, err
	}
	return m, nil
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
	return saveDocument(m.path, m.flags)
}

func (m *PermissionMap) Toggle(_ context.Context, student, subject string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := !m.flags[student][subject]
	m.setLocked(student, subject, next)
	return next, saveDocument(m.path, m.flags)
}

func (m *PermissionMap) setLocked(student, subject string, allowed bool) {
	if m.flags[student] == nil {
		m.flags[student] = make(map[string]bool)
	}
	m.flags[student][subject] = allowed
}
