// Package store provides in-memory implementations of the engine's
// persistence interfaces, used in tests and local development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory document store (for testing/dev)
// =============================================================================

// Memory implements engine.RecordStore, engine.PolicyStore and
// engine.EmployeeStore over maps. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	records   map[engine.RecordID]*engine.AttendanceRecord
	employees map[engine.EmployeeID]engine.Employee
	policy    *engine.PolicySettings
}

func NewMemory() *Memory {
	return &Memory{
		records:   make(map[engine.RecordID]*engine.AttendanceRecord),
		employees: make(map[engine.EmployeeID]engine.Employee),
	}
}

// -----------------------------------------------------------------------------
// RecordStore
// -----------------------------------------------------------------------------

func (m *Memory) Get(_ context.Context, id engine.RecordID) (*engine.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, engine.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) Current(_ context.Context, employee engine.EmployeeID, date engine.Date) (*engine.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rec := m.currentLocked(employee, date); rec != nil {
		cp := *rec
		return &cp, nil
	}
	return nil, engine.ErrRecordNotFound
}

func (m *Memory) currentLocked(employee engine.EmployeeID, date engine.Date) *engine.AttendanceRecord {
	for _, rec := range m.records {
		if rec.EmployeeID == employee && rec.Date.Equal(date) && rec.DocStatus == engine.DocSubmitted {
			return rec
		}
	}
	return nil
}

func (m *Memory) QueryRange(_ context.Context, employee engine.EmployeeID, from, to engine.Date) ([]*engine.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*engine.AttendanceRecord
	for _, rec := range m.records {
		if rec.EmployeeID != employee || rec.DocStatus != engine.DocSubmitted {
			continue
		}
		if rec.Date.AfterOrEqual(from) && rec.Date.BeforeOrEqual(to) {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) CountLate(_ context.Context, employee engine.EmployeeID, from, to engine.Date, exclude engine.RecordID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if rec.EmployeeID != employee || rec.DocStatus == engine.DocCancelled || !rec.LateEntry {
			continue
		}
		if rec.ID == exclude {
			continue
		}
		if rec.Date.AfterOrEqual(from) && rec.Date.BeforeOrEqual(to) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) Cancel(_ context.Context, id engine.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return engine.ErrRecordNotFound
	}
	if rec.DocStatus != engine.DocSubmitted {
		return engine.ErrRecordCancelled
	}
	rec.DocStatus = engine.DocCancelled
	return nil
}

func (m *Memory) CopyAsNew(_ context.Context, id engine.RecordID) (*engine.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.records[id]
	if !ok {
		return nil, engine.ErrRecordNotFound
	}
	cp := *src
	cp.ID = engine.RecordID(uuid.NewString())
	cp.AmendedFrom = src.ID
	cp.DocStatus = engine.DocDraft
	cp.CreatedAt = time.Now()
	return &cp, nil
}

func (m *Memory) Insert(_ context.Context, rec *engine.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = engine.RecordID(uuid.NewString())
	}
	if _, exists := m.records[rec.ID]; exists {
		return fmt.Errorf("record %s already exists", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *Memory) Submit(_ context.Context, id engine.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return engine.ErrRecordNotFound
	}
	if rec.DocStatus == engine.DocCancelled {
		return engine.ErrRecordCancelled
	}

	// Single active version per (employee, date).
	if existing := m.currentLocked(rec.EmployeeID, rec.Date); existing != nil && existing.ID != id {
		return fmt.Errorf("submit %s for %s on %s: %w",
			id, rec.EmployeeID, rec.Date, engine.ErrDuplicateActive)
	}
	rec.DocStatus = engine.DocSubmitted
	return nil
}

func (m *Memory) SetFields(_ context.Context, id engine.RecordID, fields engine.FieldValues) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return engine.ErrRecordNotFound
	}
	if fields.LateStrikeCount != nil {
		rec.LateStrikeCount = *fields.LateStrikeCount
	}
	if fields.LateIncidentRemark != nil {
		rec.LateIncidentRemark = *fields.LateIncidentRemark
	}
	if fields.StrikeProcessed != nil {
		rec.StrikeProcessed = *fields.StrikeProcessed
	}
	if fields.CumulativeResetCount != nil {
		rec.CumulativeResetCount = *fields.CumulativeResetCount
	}
	return nil
}

// -----------------------------------------------------------------------------
// EmployeeStore
// -----------------------------------------------------------------------------

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, engine.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) ListActiveEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.Employee
	for _, emp := range m.employees {
		if emp.Active {
			result = append(result, emp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SaveEmployee adds or replaces an employee.
func (m *Memory) SaveEmployee(_ context.Context, emp engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

// -----------------------------------------------------------------------------
// PolicyStore
// -----------------------------------------------------------------------------

func (m *Memory) GetPolicy(_ context.Context) (engine.PolicySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.policy == nil {
		return engine.PolicySettings{}, engine.ErrPolicyNotConfigured
	}
	return *m.policy, nil
}

func (m *Memory) SavePolicy(_ context.Context, settings engine.PolicySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := settings
	m.policy = &cp
	return nil
}
