package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster_IDsNeverReused(t *testing.T) {
	var r Roster
	positions := []Vec3{{X: 1}, {X: 2}}

	r.SpawnBatch(positions)
	first := r.List()
	require.Len(t, first, 2)
	assert.Equal(t, "npc-0", first[0].ID)
	assert.Equal(t, Vec3{X: 2}, first[1].Position)

	r.Clear()
	assert.False(t, r.AllHelped())

	r.SpawnBatch(positions)
	assert.Equal(t, "npc-2", r.List()[0].ID)
}

func TestRoster_MarkHelped(t *testing.T) {
	var r Roster
	r.SpawnBatch([]Vec3{{}, {}})

	assert.True(t, r.MarkHelped("npc-0"))
	assert.False(t, r.MarkHelped("npc-0"))
	assert.False(t, r.AllHelped())
	assert.True(t, r.MarkHelped("npc-1"))
	assert.True(t, r.AllHelped())
}

func TestRoster_ListIsCopy(t *testing.T) {
	var r Roster
	r.SpawnBatch([]Vec3{{}})

	l := r.List()
	l[0].Helped = true
	assert.False(t, r.List()[0].Helped)
}
