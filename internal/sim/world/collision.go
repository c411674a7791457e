package world

import "sort"

type KillReason string

const (
	KillSelf       KillReason = "SELF"
	KillLethalZone KillReason = "LETHAL_ZONE"
	KillTrail      KillReason = "TRAIL"
	KillHeadOn     KillReason = "HEAD_ON"
)

// KillEvent records one removal. Killer is 0 when nobody is credited.
type KillEvent struct {
	Tick       uint64     `json:"tick"`
	Killer     uint64     `json:"killer,omitempty"`
	KillerName string     `json:"killer_name,omitempty"`
	Victim     uint64     `json:"victim"`
	VictimName string     `json:"victim_name"`
	Reason     KillReason `json:"reason"`
	Cell       [2]int     `json:"cell"`
}

func (w *World) killEvent(nowTick uint64, killer, victim *Entity, reason KillReason) KillEvent {
	ev := KillEvent{
		Tick:       nowTick,
		Victim:     victim.ID,
		VictimName: victim.Name,
		Reason:     reason,
		Cell:       [2]int{victim.Pos.X, victim.Pos.Y},
	}
	if killer != nil {
		ev.Killer = killer.ID
		ev.KillerName = killer.Name
		w.scores.AddKill(killer.Name)
	}
	return ev
}

// detectCollisions checks, per entity in id order: self-collision, the lethal
// ring, then intrusion into another entity's trail. Trail intrusion removes
// the trail's owner and credits the intruder. A trail owner standing on the
// same cell is left to resolveHeadOn.
func (w *World) detectCollisions(nowTick uint64) []KillEvent {
	var kills []KillEvent
	for _, e := range w.reg.order {
		if n := len(e.Trail); n > 1 && containsCell(e.Trail[:n-1], e.Pos) {
			kills = append(kills, w.killEvent(nowTick, nil, e, KillSelf))
			continue
		}
		if w.InLethalZone(e.Pos) {
			kills = append(kills, w.killEvent(nowTick, nil, e, KillLethalZone))
			continue
		}
		for _, o := range w.reg.order {
			if o.ID == e.ID || o.Pos == e.Pos || !o.InTrail(e.Pos) {
				continue
			}
			kills = append(kills, w.killEvent(nowTick, e, o, KillTrail))
			break
		}
	}
	return kills
}

// resolveHeadOn handles every pair sharing a cell. Both in own territory:
// both bounce back one trail cell. Exactly one: the other dies and the holder
// is credited. Neither: both die uncredited.
func (w *World) resolveHeadOn(nowTick uint64) []KillEvent {
	var kills []KillEvent
	all := w.reg.order
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.Pos != b.Pos {
				continue
			}
			aIn, bIn := a.InTerritory(), b.InTerritory()
			switch {
			case aIn && bIn:
				bounce(a)
				bounce(b)
			case aIn:
				kills = append(kills, w.killEvent(nowTick, a, b, KillHeadOn))
			case bIn:
				kills = append(kills, w.killEvent(nowTick, b, a, KillHeadOn))
			default:
				kills = append(kills,
					w.killEvent(nowTick, nil, a, KillHeadOn),
					w.killEvent(nowTick, nil, b, KillHeadOn))
			}
		}
	}
	return kills
}

func bounce(e *Entity) {
	if n := len(e.Trail); n > 1 {
		e.Pos = e.Trail[n-2]
	}
}

func containsCell(cells []Cell, c Cell) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}

// victims returns the distinct victim ids in ascending order.
func victims(kills []KillEvent) []uint64 {
	seen := map[uint64]bool{}
	out := make([]uint64, 0, len(kills))
	for _, k := range kills {
		if seen[k.Victim] {
			continue
		}
		seen[k.Victim] = true
		out = append(out, k.Victim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// applyRemovals detaches every victim. Bots are replaced in the same tick;
// removing the human ends the game.
func (w *World) applyRemovals(ids []uint64) []SpawnRecord {
	var spawned []SpawnRecord
	for _, id := range ids {
		e := w.reg.Remove(id)
		if e == nil {
			continue
		}
		if e.IsHuman() {
			score, _ := w.scores.Score(e.Name)
			w.humanFinal = ScoreEntry{Name: e.Name, Score: score, Kills: w.scores.Kills(e.Name)}
			w.scores.Remove(e.Name)
			w.over = true
			continue
		}
		w.scores.Remove(e.Name)
		nb := w.spawnBot()
		spawned = append(spawned, SpawnRecord{ID: nb.ID, Name: nb.Name, Pos: [2]int{nb.Pos.X, nb.Pos.Y}})
	}
	return spawned
}
