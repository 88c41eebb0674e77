package scope

import (
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	// ID is a stable index of a frame in the arena.
	// It stays valid after the frame is popped.
	ID int

	Frame[D any] struct {
		Parent ID

		names map[string]D
		order []string
	}

	// Table is an arena of frames with a current top pointer.
	// Push and Pop only move the top, frames are never freed.
	Table[D any] struct {
		frames []*Frame[D]
		top    ID
	}

	ConflictError[D any] struct {
		Name  string
		Decl  D
		Prior D
	}
)

const None ID = -1

func New[D any]() *Table[D] {
	return &Table[D]{top: None}
}

// Push creates a new innermost frame chained to the current one.
func (t *Table[D]) Push() ID {
	id := ID(len(t.frames))

	t.frames = append(t.frames, &Frame[D]{
		Parent: t.top,
		names:  map[string]D{},
	})

	tlog.V("scope").Printw("push", "id", id, "parent", t.top, "from", loc.Callers(1, 2))

	t.top = id

	return id
}

// Pop detaches the innermost frame.
func (t *Table[D]) Pop() {
	if t.top == None {
		panic("scope: pop of empty table")
	}

	tlog.V("scope").Printw("pop", "id", t.top, "from", loc.Callers(1, 2))

	t.top = t.frames[t.top].Parent
}

// Reenter makes a previously pushed frame the innermost one again
// and returns the frame that was on top before.
// Reenter(None) leaves the table with no active frame.
func (t *Table[D]) Reenter(id ID) (prev ID) {
	if id != None && (id < 0 || int(id) >= len(t.frames)) {
		panic(fmt.Sprintf("scope: reenter unknown frame %d", id))
	}

	prev, t.top = t.top, id

	tlog.V("scope").Printw("reenter", "id", id, "prev", prev, "from", loc.Callers(1, 2))

	return prev
}

func (t *Table[D]) Current() ID { return t.top }

func (t *Table[D]) Parent(id ID) ID {
	return t.frames[id].Parent
}

func (t *Table[D]) Len() int { return len(t.frames) }

// Declare inserts into the innermost frame.
// On conflict the first declaration is kept and *ConflictError is returned.
func (t *Table[D]) Declare(name string, d D) error {
	if t.top == None {
		panic("scope: declare without frame")
	}

	f := t.frames[t.top]

	if prior, ok := f.names[name]; ok {
		return &ConflictError[D]{Name: name, Decl: d, Prior: prior}
	}

	f.names[name] = d
	f.order = append(f.order, name)

	tlog.V("scope").Printw("declare", "id", t.top, "name", name)

	return nil
}

// ResolveLocal searches the innermost frame only.
func (t *Table[D]) ResolveLocal(name string) (d D, ok bool) {
	if t.top == None {
		return d, false
	}

	return t.Lookup(t.top, name)
}

// Resolve searches from the innermost frame outwards.
func (t *Table[D]) Resolve(name string) (d D, ok bool) {
	for id := t.top; id != None; id = t.frames[id].Parent {
		if d, ok = t.frames[id].names[name]; ok {
			return d, true
		}
	}

	return d, false
}

// Lookup searches exactly one frame.
func (t *Table[D]) Lookup(id ID, name string) (d D, ok bool) {
	d, ok = t.frames[id].names[name]
	return
}

// Names returns names declared in the frame in declaration order.
func (t *Table[D]) Names(id ID) []string {
	return t.frames[id].order
}

func (e *ConflictError[D]) Error() string {
	return fmt.Sprintf("declaration of %q conflicts with a prior declaration", e.Name)
}

func (id ID) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if id == None {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "%d", int(id))
}
