package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"risk-register-service/internal/workflow"
)

func TestSimulationStore_FallbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedisSimulationStore(nil, time.Hour)

	state, err := store.Get(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Nil(t, state)

	err = store.Set(ctx, "sess-1", workflow.SimulationState{RoleType: workflow.RoleKadiv, OrgPrefix: "tr - treasury"})
	assert.NoError(t, err)

	state, err = store.Get(ctx, "sess-1")
	assert.NoError(t, err)
	assert.NotNil(t, state)
	assert.Equal(t, workflow.RoleKadiv, state.RoleType)
	// Stored normalized: two uppercase letters.
	assert.Equal(t, "TR", state.OrgPrefix)

	err = store.Clear(ctx, "sess-1")
	assert.NoError(t, err)

	state, err = store.Get(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestSimulationStore_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewRedisSimulationStore(nil, time.Hour)

	assert.NoError(t, store.Set(ctx, "sess-a", workflow.SimulationState{RoleType: workflow.RoleRsaEntry, OrgPrefix: "TR"}))
	assert.NoError(t, store.Set(ctx, "sess-b", workflow.SimulationState{RoleType: workflow.RoleAdminGrc}))

	a, err := store.Get(ctx, "sess-a")
	assert.NoError(t, err)
	assert.Equal(t, workflow.RoleRsaEntry, a.RoleType)

	b, err := store.Get(ctx, "sess-b")
	assert.NoError(t, err)
	assert.Equal(t, workflow.RoleAdminGrc, b.RoleType)
	assert.Equal(t, "GR", b.OrgPrefix)

	assert.NoError(t, store.Clear(ctx, "sess-a"))
	b, err = store.Get(ctx, "sess-b")
	assert.NoError(t, err)
	assert.NotNil(t, b)
}
