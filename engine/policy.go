/*
policy.go - Attendance policy settings and their store

PURPOSE:
  PolicySettings is the single active configuration for the late-penalty
  engine: whether it is enabled, which counting mode applies, how many
  strikes are tolerated, and what the penalty converts a record to.

  Settings are read by every evaluation pass and mutated only through a
  validated update. Per the engine's design, settings are always passed
  explicitly into Evaluate/Apply calls - no component reads a global.

INVARIANT:
  When Enabled, StrikeThreshold, CountingMode and PenaltyAction must all
  be set, and StrikeThreshold >= 1. Updates violating this are rejected
  with a ValidationError before anything is persisted.

CACHING:
  CachedPolicyStore keeps a snapshot of the singleton so the nightly
  batch and the inline hook don't re-read the store per record. Saving
  through it invalidates the snapshot.
*/
package engine

import (
	"context"
	"sync"
)

// =============================================================================
// POLICY SETTINGS - Singleton configuration
// =============================================================================

type PolicySettings struct {
	Enabled         bool
	CountingMode    CountingMode
	StrikeThreshold int
	PenaltyAction   PenaltyAction

	// ApplyFromDate, when set, moves the start of the processing window
	// back from the current month; reprocessing updates it.
	ApplyFromDate *Date
}

// DefaultPolicySettings are seeded on first install: penalty disabled,
// three tolerated strikes, cumulative counting, half-day action.
func DefaultPolicySettings() PolicySettings {
	return PolicySettings{
		Enabled:         false,
		CountingMode:    ModeCumulative,
		StrikeThreshold: 3,
		PenaltyAction:   ActionHalfDay,
	}
}

// Validate checks the settings invariants. Only an enabled policy is
// constrained; a disabled one may be partially filled.
func (p PolicySettings) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.StrikeThreshold == 0 {
		return &ValidationError{Field: "strike_threshold", Reason: "is required when late penalty is enabled"}
	}
	if p.StrikeThreshold < 1 {
		return &ValidationError{Field: "strike_threshold", Reason: "must be at least 1"}
	}
	if p.CountingMode == "" {
		return &ValidationError{Field: "counting_mode", Reason: "is required when late penalty is enabled"}
	}
	if !p.CountingMode.Valid() {
		return &ValidationError{Field: "counting_mode", Reason: "is not a recognized mode"}
	}
	if p.PenaltyAction == "" {
		return &ValidationError{Field: "penalty_action", Reason: "is required when late penalty is enabled"}
	}
	if !p.PenaltyAction.Valid() {
		return &ValidationError{Field: "penalty_action", Reason: "is not a recognized action"}
	}
	return nil
}

// =============================================================================
// POLICY STORE - Persistence contract for the singleton
// =============================================================================

// PolicyStore persists the settings singleton.
type PolicyStore interface {
	// GetPolicy returns the active settings. Returns ErrPolicyNotConfigured
	// when the singleton has never been saved.
	GetPolicy(ctx context.Context) (PolicySettings, error)

	// SavePolicy replaces the singleton. Implementations persist as-is;
	// validation happens above the store.
	SavePolicy(ctx context.Context, settings PolicySettings) error
}

// =============================================================================
// CACHED POLICY STORE - Snapshot with explicit invalidation
// =============================================================================

// CachedPolicyStore wraps a PolicyStore with a mutex-guarded snapshot.
// Reads hit the backing store once; SavePolicy validates, writes through,
// and invalidates the snapshot.
type CachedPolicyStore struct {
	backing PolicyStore

	mu     sync.RWMutex
	cached *PolicySettings
}

func NewCachedPolicyStore(backing PolicyStore) *CachedPolicyStore {
	return &CachedPolicyStore{backing: backing}
}

func (c *CachedPolicyStore) GetPolicy(ctx context.Context) (PolicySettings, error) {
	c.mu.RLock()
	if c.cached != nil {
		snapshot := *c.cached
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	settings, err := c.backing.GetPolicy(ctx)
	if err != nil {
		return PolicySettings{}, err
	}

	c.mu.Lock()
	c.cached = &settings
	c.mu.Unlock()
	return settings, nil
}

func (c *CachedPolicyStore) SavePolicy(ctx context.Context, settings PolicySettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := c.backing.SavePolicy(ctx, settings); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate drops the snapshot; the next read hits the backing store.
func (c *CachedPolicyStore) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}
