package tac

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type Segment int

const (
	FrameRelative Segment = iota
	GlobalRelative
)

// Frame and object layout of the target machine.
const (
	WordSize = 4

	OffsetToFirstParam  = 4
	OffsetToFirstLocal  = -8
	OffsetToFirstGlobal = 0

	// ObjectHeader is the vtable pointer every object starts with.
	ObjectHeader = WordSize
	// ArrayHeader holds the element count.
	ArrayHeader = WordSize
)

// Location is an address of a variable or a temporary.
type Location struct {
	Segment Segment
	Offset  int
	Name    string
}

func NewLocation(seg Segment, off int, name string) *Location {
	return &Location{Segment: seg, Offset: off, Name: name}
}

func (l *Location) String() string {
	if l == nil {
		return "<nil>"
	}

	return l.Name
}

func (s Segment) String() string {
	switch s {
	case FrameRelative:
		return "fp"
	case GlobalRelative:
		return "gp"
	default:
		return fmt.Sprintf("Segment(%d)", int(s))
	}
}

func (l *Location) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if l == nil {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "%s(%v%+d)", l.Name, l.Segment, l.Offset)
}
