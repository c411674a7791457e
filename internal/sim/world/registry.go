package world

import (
	"math"
	"sort"
)

// Registry is the authoritative list of live entities. Iteration is always in
// ascending id so every pass over it is deterministic.
type Registry struct {
	byID  map[uint64]*Entity
	order []*Entity
}

func NewRegistry() *Registry {
	return &Registry{byID: map[uint64]*Entity{}}
}

func (r *Registry) Add(e *Entity) {
	if e == nil {
		return
	}
	if _, ok := r.byID[e.ID]; ok {
		return
	}
	r.byID[e.ID] = e
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i].ID > e.ID })
	r.order = append(r.order, nil)
	copy(r.order[i+1:], r.order[i:])
	r.order[i] = e
}

func (r *Registry) Remove(id uint64) *Entity {
	e := r.byID[id]
	if e == nil {
		return nil
	}
	delete(r.byID, id)
	for i, x := range r.order {
		if x.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e
}

func (r *Registry) Get(id uint64) *Entity { return r.byID[id] }

func (r *Registry) Len() int { return len(r.order) }

// All returns a copy of the live entities in ascending id order.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Human() *Entity {
	for _, e := range r.order {
		if e.Role == RoleHuman {
			return e
		}
	}
	return nil
}

// TerritoryOwner returns the lowest-id entity whose territory holds c.
func (r *Registry) TerritoryOwner(c Cell) *Entity {
	for _, e := range r.order {
		if e.Territory.Has(c) {
			return e
		}
	}
	return nil
}

// TrailOwner returns the lowest-id entity other than except whose trail holds c.
func (r *Registry) TrailOwner(c Cell, except uint64) *Entity {
	for _, e := range r.order {
		if e.ID != except && e.InTrail(c) {
			return e
		}
	}
	return nil
}

// NearestDistance is the distance from e to the closest other entity, +Inf if alone.
func (r *Registry) NearestDistance(e *Entity) float64 {
	best := math.Inf(1)
	for _, o := range r.order {
		if o.ID == e.ID {
			continue
		}
		if d := Distance(e.Pos, o.Pos); d < best {
			best = d
		}
	}
	return best
}
