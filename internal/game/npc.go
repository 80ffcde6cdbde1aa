package game

import "fmt"

// NPC is a thirsty character waiting for a filled container.
type NPC struct {
	ID       string `json:"id"`
	Position Vec3   `json:"position"`
	Helped   bool   `json:"helped"`
}

// Roster tracks the current batch of NPCs. IDs keep counting up across
// batches and runs so presentation never sees one reused.
type Roster struct {
	npcs   []NPC
	nextID int
}

// SpawnBatch replaces the roster with one fresh NPC per position.
func (r *Roster) SpawnBatch(positions []Vec3) {
	r.npcs = make([]NPC, 0, len(positions))
	for _, p := range positions {
		r.npcs = append(r.npcs, NPC{
			ID:       fmt.Sprintf("npc-%d", r.nextID),
			Position: p,
		})
		r.nextID++
	}
}

// MarkHelped flags the NPC with id. It returns false for unknown ids and
// for NPCs already helped.
func (r *Roster) MarkHelped(id string) bool {
	for i := range r.npcs {
		if r.npcs[i].ID != id {
			continue
		}
		if r.npcs[i].Helped {
			return false
		}
		r.npcs[i].Helped = true
		return true
	}
	return false
}

// AllHelped is false for an empty roster.
func (r *Roster) AllHelped() bool {
	if len(r.npcs) == 0 {
		return false
	}
	for _, n := range r.npcs {
		if !n.Helped {
			return false
		}
	}
	return true
}

func (r *Roster) Clear() {
	r.npcs = nil
}

func (r *Roster) List() []NPC {
	out := make([]NPC, len(r.npcs))
	copy(out, r.npcs)
	return out
}
