package diag

import (
	"fmt"
	"io"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"nikand.dev/go/heap"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Diagnostic struct {
		Kind Kind
		Pos  ast.Pos
		Msg  string

		// From is the compiler location that reported it.
		From loc.PC

		seq int
	}

	Reporter interface {
		Report(d *Diagnostic)
	}

	// Bag collects diagnostics in report order.
	Bag struct {
		list []*Diagnostic
	}
)

const (
	DeclConflict Kind = iota
	IdentifierNotDeclared
	IncompatibleOperands
	IncompatibleOperand
	SubscriptNotInteger
	BracketsOnNonArray
	FieldNotFoundInBase
	NumArgsMismatch
	ArgMismatch
	TestNotBoolean
	BreakOutsideLoop
	ReturnMismatch
	PrintArgMismatch
	OverrideMismatch
	InterfaceNotImplemented
	ThisOutsideClassScope
	NewArraySizeNotInteger
	InheritanceCycle
	InvalidAssignTarget
	NoMainFunction

	numKinds
)

var kindNames = [numKinds]string{
	DeclConflict:            "DeclConflict",
	IdentifierNotDeclared:   "IdentifierNotDeclared",
	IncompatibleOperands:    "IncompatibleOperands",
	IncompatibleOperand:     "IncompatibleOperand",
	SubscriptNotInteger:     "SubscriptNotInteger",
	BracketsOnNonArray:      "BracketsOnNonArray",
	FieldNotFoundInBase:     "FieldNotFoundInBase",
	NumArgsMismatch:         "NumArgsMismatch",
	ArgMismatch:             "ArgMismatch",
	TestNotBoolean:          "TestNotBoolean",
	BreakOutsideLoop:        "BreakOutsideLoop",
	ReturnMismatch:          "ReturnMismatch",
	PrintArgMismatch:        "PrintArgMismatch",
	OverrideMismatch:        "OverrideMismatch",
	InterfaceNotImplemented: "InterfaceNotImplemented",
	ThisOutsideClassScope:   "ThisOutsideClassScope",
	NewArraySizeNotInteger:  "NewArraySizeNotInteger",
	InheritanceCycle:        "InheritanceCycle",
	InvalidAssignTarget:     "InvalidAssignTarget",
	NoMainFunction:          "NoMainFunction",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

func New(kind Kind, pos ast.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind: kind,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
		From: loc.Caller(2),
	}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("*** Error line %d.\n*** %s\n", d.Pos.Line, d.Msg)
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%v: %v: %s", d.Pos, d.Kind, d.Msg)
}

func (d *Diagnostic) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 4)

	b = e.AppendKeyInt(b, "line", d.Pos.Line)
	b = e.AppendKeyInt(b, "col", d.Pos.Col)

	b = e.AppendKey(b, "kind")
	b = e.AppendFormat(b, "%v", d.Kind)

	b = e.AppendKey(b, "msg")
	b = e.AppendFormat(b, "%s", d.Msg)

	return b
}

func (b *Bag) Report(d *Diagnostic) {
	d.seq = len(b.list)
	b.list = append(b.list, d)

	tlog.V("diag").Printw("report", "diag", d, "from", d.From)
}

func (b *Bag) Len() int { return len(b.list) }

func (b *Bag) HasErrors() bool { return len(b.list) != 0 }

// Diagnostics returns diagnostics in report order.
func (b *Bag) Diagnostics() []*Diagnostic { return b.list }

// Count returns the number of diagnostics of the kind.
func (b *Bag) Count(k Kind) (n int) {
	for _, d := range b.list {
		if d.Kind == k {
			n++
		}
	}

	return n
}

// Sorted returns diagnostics ordered by source position.
// Diagnostics at the same position keep report order.
func (b *Bag) Sorted() []*Diagnostic {
	h := heap.Heap[*Diagnostic]{Less: diagLess}

	for _, d := range b.list {
		h.Push(d)
	}

	r := make([]*Diagnostic, 0, h.Len())

	for h.Len() != 0 {
		r = append(r, h.Pop())
	}

	return r
}

// Print writes sorted diagnostics in the classic compiler format.
func (b *Bag) Print(w io.Writer) error {
	for _, d := range b.Sorted() {
		if _, err := fmt.Fprintf(w, "\n%s", d.Error()); err != nil {
			return err
		}
	}

	return nil
}

func diagLess(d []*Diagnostic, i, j int) bool {
	if d[i].Pos != d[j].Pos {
		return d[i].Pos.Before(d[j].Pos)
	}

	return d[i].seq < d[j].seq
}
