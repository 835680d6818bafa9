package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/engine/store"
)

// =============================================================================
// VALIDATION
// =============================================================================

func TestPolicySettings_Validate_DisabledAllowsPartial(t *testing.T) {
	p := engine.PolicySettings{Enabled: false}
	assert.NoError(t, p.Validate())
}

func TestPolicySettings_Validate_EnabledRequiresCompleteness(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*engine.PolicySettings)
		field  string
	}{
		{"missing threshold", func(p *engine.PolicySettings) { p.StrikeThreshold = 0 }, "strike_threshold"},
		{"negative threshold", func(p *engine.PolicySettings) { p.StrikeThreshold = -1 }, "strike_threshold"},
		{"missing mode", func(p *engine.PolicySettings) { p.CountingMode = "" }, "counting_mode"},
		{"unknown mode", func(p *engine.PolicySettings) { p.CountingMode = "Weekly" }, "counting_mode"},
		{"missing action", func(p *engine.PolicySettings) { p.PenaltyAction = "" }, "penalty_action"},
		{"unknown action", func(p *engine.PolicySettings) { p.PenaltyAction = "Fine" }, "penalty_action"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := cumulativePolicy(3)
			tc.mutate(&p)

			err := p.Validate()
			require.Error(t, err)
			assert.True(t, engine.IsValidation(err))

			var vErr *engine.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestPolicySettings_Validate_AllModesAccepted(t *testing.T) {
	for _, mode := range []engine.CountingMode{
		engine.ModeCumulative, engine.ModeStrictlyConsecutive, engine.ModeCumulativeWithReset,
	} {
		p := cumulativePolicy(3)
		p.CountingMode = mode
		assert.NoError(t, p.Validate(), string(mode))
	}
}

func TestDefaultPolicySettings(t *testing.T) {
	p := engine.DefaultPolicySettings()
	assert.False(t, p.Enabled)
	assert.Equal(t, engine.ModeCumulative, p.CountingMode)
	assert.Equal(t, 3, p.StrikeThreshold)
	assert.Equal(t, engine.ActionHalfDay, p.PenaltyAction)
}

// =============================================================================
// CACHED STORE
// =============================================================================

// countingPolicyStore counts backing reads to observe the cache.
type countingPolicyStore struct {
	*store.Memory
	reads int
}

func (c *countingPolicyStore) GetPolicy(ctx context.Context) (engine.PolicySettings, error) {
	c.reads++
	return c.Memory.GetPolicy(ctx)
}

func TestCachedPolicyStore_ReadsBackingOnce(t *testing.T) {
	ctx := context.Background()
	backing := &countingPolicyStore{Memory: store.NewMemory()}
	require.NoError(t, backing.SavePolicy(ctx, cumulativePolicy(3)))

	cached := engine.NewCachedPolicyStore(backing)

	for i := 0; i < 5; i++ {
		_, err := cached.GetPolicy(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, backing.reads)
}

func TestCachedPolicyStore_SaveInvalidatesSnapshot(t *testing.T) {
	ctx := context.Background()
	backing := &countingPolicyStore{Memory: store.NewMemory()}
	require.NoError(t, backing.SavePolicy(ctx, cumulativePolicy(3)))

	cached := engine.NewCachedPolicyStore(backing)
	_, err := cached.GetPolicy(ctx)
	require.NoError(t, err)

	updated := cumulativePolicy(5)
	require.NoError(t, cached.SavePolicy(ctx, updated))

	got, err := cached.GetPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StrikeThreshold)
	assert.Equal(t, 2, backing.reads, "save invalidated the snapshot")
}

func TestCachedPolicyStore_SaveRejectsInvalidSettings(t *testing.T) {
	ctx := context.Background()
	backing := &countingPolicyStore{Memory: store.NewMemory()}
	require.NoError(t, backing.SavePolicy(ctx, cumulativePolicy(3)))

	cached := engine.NewCachedPolicyStore(backing)

	bad := cumulativePolicy(3)
	bad.CountingMode = "Weekly"
	err := cached.SavePolicy(ctx, bad)
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))

	// Backing store untouched
	got, err := backing.Memory.GetPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.ModeCumulative, got.CountingMode)
}

func TestCachedPolicyStore_UnconfiguredPropagates(t *testing.T) {
	cached := engine.NewCachedPolicyStore(store.NewMemory())

	_, err := cached.GetPolicy(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrPolicyNotConfigured)
	assert.True(t, engine.IsConfiguration(err))
}
