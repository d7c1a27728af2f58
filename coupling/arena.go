// Package coupling builds a hierarchy of blockstate.BlockState levels, each
// one's block-multigraph standing in as the graph the level above it
// partitions. Levels reference each other by uuid.UUID rather than by Go
// pointer, so the chain is a lookup through an Arena rather than a cycle of
// pointers between state objects — the Arena alone owns the lifetime of
// every level it holds.
package coupling

import (
	"sync"

	"github.com/google/uuid"

	"github.com/katalvlaran/blocksbm/blockstate"
	"github.com/katalvlaran/blocksbm/internal/sberrors"
)

// link records one coupling edge: lower's coupled state is higher, with the
// entropy configuration that was in force when the two were coupled.
type link struct {
	higher uuid.UUID
	ea     blockstate.EntropyArgs
}

// Arena owns every level of a coupled-state hierarchy. A level may be
// registered without being coupled to anything (a standalone BlockState), or
// coupled to any number of levels above it — the chain has no fixed depth.
type Arena struct {
	mu     sync.Mutex
	levels map[uuid.UUID]*blockstate.BlockState
	above  map[uuid.UUID]link        // lower id -> its immediate higher link
	below  map[uuid.UUID][]uuid.UUID // higher id -> every lower id coupled to it
}

// NewArena returns an empty hierarchy.
func NewArena() *Arena {
	return &Arena{
		levels: make(map[uuid.UUID]*blockstate.BlockState),
		above:  make(map[uuid.UUID]link),
		below:  make(map[uuid.UUID][]uuid.UUID),
	}
}

// Register admits st to the arena and returns the identifier that addresses
// it from now on. st starts out uncoupled.
func (a *Arena) Register(st *blockstate.BlockState) uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := uuid.New()
	a.levels[id] = st
	return id
}

// State returns the level registered under id.
func (a *Arena) State(id uuid.UUID) (*blockstate.BlockState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.levels[id]
	return st, ok
}

// CoupleState installs higherID as lowerID's coupled state: every lower-level
// move on lowerID from now on propagates `remove_partition_node` /
// `occupy_partition_node`, mirrored edges, and propagate_entries_dS up to
// higher, per couple_state's invariants. ea records the entropy
// configuration the pairing was made under; callers computing entropy across
// the whole chain may still pass their own ea per call, this is only bookkeeping.
//
// higher.G must already equal lower's bg at the identity level (same block
// ids, since lower's blocks become higher's vertices) — CoupleState does not
// and cannot verify that against an opaque blockstate.BlockState, it is the
// caller's responsibility when constructing higher.
func (a *Arena) CoupleState(lowerID, higherID uuid.UUID, ea blockstate.EntropyArgs) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	lower, ok := a.levels[lowerID]
	if !ok {
		return sberrors.Wrapff("Arena.CoupleState", sberrors.ShapeMismatch, "unknown lower level %s", lowerID)
	}
	higher, ok := a.levels[higherID]
	if !ok {
		return sberrors.Wrapff("Arena.CoupleState", sberrors.ShapeMismatch, "unknown higher level %s", higherID)
	}

	if old, had := a.above[lowerID]; had {
		a.detachLocked(lowerID, old.higher)
	}

	lower.SetCoupledState(higher)
	a.above[lowerID] = link{higher: higherID, ea: ea}
	a.below[higherID] = append(a.below[higherID], lowerID)
	return nil
}

// Detach removes lowerID's coupling to whatever level it was installed
// against, if any. A no-op if lowerID is uncoupled.
func (a *Arena) Detach(lowerID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.above[lowerID]
	if !ok {
		return
	}
	a.detachLocked(lowerID, l.higher)
}

func (a *Arena) detachLocked(lowerID, higherID uuid.UUID) {
	if lower, ok := a.levels[lowerID]; ok {
		lower.SetCoupledState(nil)
	}
	delete(a.above, lowerID)
	siblings := a.below[higherID]
	for i, id := range siblings {
		if id == lowerID {
			a.below[higherID] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
}

// Higher returns the id one level above lowerID, if coupled.
func (a *Arena) Higher(lowerID uuid.UUID) (uuid.UUID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.above[lowerID]
	return l.higher, ok
}

// Below returns every level coupled directly beneath higherID.
func (a *Arena) Below(higherID uuid.UUID) []uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uuid.UUID(nil), a.below[higherID]...)
}

// Depth counts the chain length from id up to its topmost coupled ancestor,
// inclusive of id itself (an uncoupled level has depth 1).
func (a *Arena) Depth(id uuid.UUID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	depth := 1
	cur := id
	for {
		l, ok := a.above[cur]
		if !ok {
			return depth
		}
		depth++
		cur = l.higher
	}
}

// Entropy returns id's own entropy plus every level above it, by walking the
// chain and calling each level's Entropy(ea, false) directly — equivalent to
// id.Entropy(ea, true) when every link in the chain was installed with the
// same ea, but lets a caller use a different ea per level.
func (a *Arena) Entropy(id uuid.UUID, ea blockstate.EntropyArgs) (float64, error) {
	a.mu.Lock()
	st, ok := a.levels[id]
	a.mu.Unlock()
	if !ok {
		return 0, sberrors.Wrapff("Arena.Entropy", sberrors.ShapeMismatch, "unknown level %s", id)
	}
	total := st.Entropy(ea, false)

	a.mu.Lock()
	l, coupled := a.above[id]
	a.mu.Unlock()
	if !coupled {
		return total, nil
	}
	above, err := a.Entropy(l.higher, ea)
	if err != nil {
		return 0, err
	}
	return total + above, nil
}
