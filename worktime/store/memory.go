// Package store provides an in-memory worktime.Store implementation
// for tests and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/timeclerk/worktime-engine/worktime"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	contracts map[worktime.ContractID]worktime.Contract
	shifts    map[worktime.ShiftID]worktime.Shift
	reports   map[reportKey]worktime.Report

	// creation order of contracts, for stable listings
	contractOrder []worktime.ContractID
}

type reportKey struct {
	ContractID worktime.ContractID
	Month      worktime.Month
}

func NewMemory() *Memory {
	return &Memory{
		contracts: make(map[worktime.ContractID]worktime.Contract),
		shifts:    make(map[worktime.ShiftID]worktime.Shift),
		reports:   make(map[reportKey]worktime.Report),
	}
}

// =============================================================================
// CONTRACT STORE
// =============================================================================

func (m *Memory) CreateContract(_ context.Context, c worktime.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[c.ID]; !ok {
		m.contractOrder = append(m.contractOrder, c.ID)
	}
	m.contracts[c.ID] = c
	return nil
}

func (m *Memory) UpdateContract(_ context.Context, c worktime.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[c.ID]; !ok {
		return worktime.ErrContractNotFound
	}
	m.contracts[c.ID] = c
	return nil
}

func (m *Memory) DeleteContract(_ context.Context, id worktime.ContractID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[id]; !ok {
		return worktime.ErrContractNotFound
	}
	delete(m.contracts, id)
	for i, cid := range m.contractOrder {
		if cid == id {
			m.contractOrder = append(m.contractOrder[:i], m.contractOrder[i+1:]...)
			break
		}
	}

	// Cascade shifts and reports.
	for sid, s := range m.shifts {
		if s.ContractID == id {
			delete(m.shifts, sid)
		}
	}
	for key := range m.reports {
		if key.ContractID == id {
			delete(m.reports, key)
		}
	}
	return nil
}

func (m *Memory) GetContract(_ context.Context, id worktime.ContractID) (worktime.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contracts[id]
	if !ok {
		return worktime.Contract{}, worktime.ErrContractNotFound
	}
	return c, nil
}

func (m *Memory) ActiveContracts(_ context.Context, today time.Time) ([]worktime.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active []worktime.Contract
	for _, id := range m.contractOrder {
		if c := m.contracts[id]; c.ActiveAt(today) {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *Memory) ListContracts(_ context.Context) ([]worktime.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]worktime.Contract, 0, len(m.contractOrder))
	for _, id := range m.contractOrder {
		list = append(list, m.contracts[id])
	}
	return list, nil
}

func (m *Memory) TouchContract(_ context.Context, id worktime.ContractID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return worktime.ErrContractNotFound
	}
	c.LastUsed = at
	m.contracts[id] = c
	return nil
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (m *Memory) CreateShift(_ context.Context, s worktime.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) UpdateShift(_ context.Context, s worktime.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[s.ID]; !ok {
		return worktime.ErrShiftNotFound
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id worktime.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[id]; !ok {
		return worktime.ErrShiftNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *Memory) GetShift(_ context.Context, id worktime.ShiftID) (worktime.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return worktime.Shift{}, worktime.ErrShiftNotFound
	}
	return s, nil
}

func (m *Memory) ReviewedShiftsForMonth(_ context.Context, contractID worktime.ContractID, month worktime.Month) ([]worktime.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []worktime.Shift
	for _, s := range m.shifts {
		if s.ContractID == contractID && s.Reviewed && month.Contains(s.Started) {
			result = append(result, s)
		}
	}
	sortShifts(result)
	return result, nil
}

func (m *Memory) ShiftsForContract(_ context.Context, contractID worktime.ContractID) ([]worktime.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []worktime.Shift
	for _, s := range m.shifts {
		if s.ContractID == contractID {
			result = append(result, s)
		}
	}
	sortShifts(result)
	return result, nil
}

func (m *Memory) MonthExported(_ context.Context, contractID worktime.ContractID, month worktime.Month) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shifts {
		if s.ContractID == contractID && s.Exported && month.Contains(s.Started) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) MarkMonthExported(_ context.Context, contractID worktime.ContractID, month worktime.Month) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.shifts {
		if s.ContractID == contractID && month.Contains(s.Started) {
			s.Exported = true
			m.shifts[id] = s
		}
	}
	return nil
}

func sortShifts(shifts []worktime.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].Started.Before(shifts[j].Started)
	})
}

// =============================================================================
// REPORT STORE
// =============================================================================

func (m *Memory) GetReport(_ context.Context, contractID worktime.ContractID, month worktime.Month) (worktime.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[reportKey{ContractID: contractID, Month: month}]
	if !ok {
		return worktime.Report{}, worktime.ErrReportNotFound
	}
	return r, nil
}

func (m *Memory) UpsertReport(_ context.Context, r worktime.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reportKey{ContractID: r.ContractID, Month: r.Month}
	if existing, ok := m.reports[key]; ok {
		// Keep the original identity of the row; an upsert replaces the
		// balance, not the report's key.
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
	}
	m.reports[key] = r
	return nil
}

func (m *Memory) ReportsFrom(_ context.Context, contractID worktime.ContractID, from worktime.Month) ([]worktime.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []worktime.Report
	for key, r := range m.reports {
		if key.ContractID == contractID && !key.Month.Before(from) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month.Compare(result[j].Month) < 0
	})
	return result, nil
}
