package services

import (
	"errors"
	"fmt"
	"truck-dispatch-agent/internal/domain"
)

var (
	// ErrPoolExhausted is returned when more requests arrive than the pool can ever hold.
	ErrPoolExhausted = errors.New("pending pool exhausted")
	// ErrDuplicatePackage is returned when a package id is announced twice.
	ErrDuplicatePackage = errors.New("duplicate package id")
)

// PendingPool is an append-only arena of package requests.
//
// Entries are never removed. Delivered packages are marked inactive through a
// parallel flag slice; an inactive entry never becomes active again.
type PendingPool struct {
	entries  []domain.PackageRequest
	active   []bool
	byID     map[domain.PackageID]int
	capacity int
	live     int
}

func NewPendingPool(capacity int) *PendingPool {
	return &PendingPool{
		entries:  make([]domain.PackageRequest, 0, min(capacity, 256)),
		active:   make([]bool, 0, min(capacity, 256)),
		byID:     make(map[domain.PackageID]int),
		capacity: capacity,
	}
}

// Add appends a request as an active entry.
func (p *PendingPool) Add(req domain.PackageRequest) error {
	if len(p.entries) >= p.capacity {
		return fmt.Errorf("add package %d: %w (capacity=%d)", req.ID, ErrPoolExhausted, p.capacity)
	}
	if _, dup := p.byID[req.ID]; dup {
		return fmt.Errorf("add package %d: %w", req.ID, ErrDuplicatePackage)
	}

	p.byID[req.ID] = len(p.entries)
	p.entries = append(p.entries, req)
	p.active = append(p.active, true)
	p.live++
	return nil
}

// Deactivate marks a package delivered. It reports whether an active entry was changed.
func (p *PendingPool) Deactivate(id domain.PackageID) bool {
	idx, ok := p.byID[id]
	if !ok || !p.active[idx] {
		return false
	}
	p.active[idx] = false
	p.live--
	return true
}

// IsActive reports whether id is in the pool and not yet delivered.
func (p *PendingPool) IsActive(id domain.PackageID) bool {
	idx, ok := p.byID[id]
	return ok && p.active[idx]
}

// Len counts every entry ever added, active or not.
func (p *PendingPool) Len() int { return len(p.entries) }

// ActiveCount counts entries that are still pending.
func (p *PendingPool) ActiveCount() int { return p.live }

// Each calls fn for every active entry in insertion order until fn returns false.
func (p *PendingPool) Each(fn func(req domain.PackageRequest) bool) {
	for i, req := range p.entries {
		if !p.active[i] {
			continue
		}
		if !fn(req) {
			return
		}
	}
}
