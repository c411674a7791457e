package world

type Role uint8

const (
	RoleHuman Role = iota + 1
	RoleBot
)

func (r Role) String() string {
	switch r {
	case RoleHuman:
		return "HUMAN"
	case RoleBot:
		return "BOT"
	default:
		return "UNKNOWN"
	}
}

func parseRole(s string) Role {
	switch s {
	case "HUMAN":
		return RoleHuman
	case "BOT":
		return RoleBot
	}
	return 0
}

// startBlockRadius gives the 5x5 territory every entity spawns with.
const startBlockRadius = 2

// Controller is the per-role behaviour hook used by the move phase.
type Controller interface {
	// Decide updates the entity's requested direction before it steps.
	Decide(w *World, e *Entity)
	// Permits reports whether e may step onto c this tick.
	Permits(w *World, e *Entity, c Cell) bool
	// Blocked runs when Permits rejected the step.
	Blocked(w *World, e *Entity)
}

// Entity is a single record for both the human and the bots; Role and the
// attached Controller select behaviour.
type Entity struct {
	ID    uint64
	Role  Role
	Name  string
	Color [3]uint8

	Pos    Cell
	Dir    Dir
	Moving bool

	// Trail is the ordered excursion outside Territory. trailSet mirrors it.
	Trail     []Cell
	trailSet  CellSet
	Territory CellSet

	// Bot is nil for the human.
	Bot *BotState

	ctrl Controller
}

func newEntity(id uint64, role Role, pos Cell, color [3]uint8) *Entity {
	e := &Entity{
		ID:        id,
		Role:      role,
		Color:     color,
		Pos:       pos,
		trailSet:  CellSet{},
		Territory: startingBlock(pos),
	}
	return e
}

func startingBlock(center Cell) CellSet {
	s := make(CellSet, (2*startBlockRadius+1)*(2*startBlockRadius+1))
	for dy := -startBlockRadius; dy <= startBlockRadius; dy++ {
		for dx := -startBlockRadius; dx <= startBlockRadius; dx++ {
			s.Add(Cell{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return s
}

func (e *Entity) IsHuman() bool { return e.Role == RoleHuman }

func (e *Entity) InTerritory() bool { return e.Territory.Has(e.Pos) }

func (e *Entity) InTrail(c Cell) bool { return e.trailSet.Has(c) }

func (e *Entity) appendTrail(c Cell) {
	e.Trail = append(e.Trail, c)
	e.trailSet.Add(c)
}

func (e *Entity) clearTrail() {
	e.Trail = e.Trail[:0]
	e.trailSet = CellSet{}
}

// setTrail replaces the trail wholesale (snapshot import, tests).
func (e *Entity) setTrail(cells []Cell) {
	e.Trail = append([]Cell(nil), cells...)
	e.trailSet = NewCellSet(cells...)
}

// Stop halts motion; the next direction request is accepted unconditionally.
func (e *Entity) Stop() { e.Moving = false }
