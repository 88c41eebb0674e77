package tac

import (
	"fmt"
	"strconv"
	"strings"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Instr is one three-address instruction.
	Instr interface {
		String() string
		instr()
	}

	Opcode int

	LoadConst struct {
		Dst   *Location
		Value int
	}

	LoadString struct {
		Dst   *Location
		Value string
	}

	LoadLabel struct {
		Dst   *Location
		Label string
	}

	Assign struct {
		Dst, Src *Location
	}

	Load struct {
		Dst, Ref *Location
		Offset   int
	}

	Store struct {
		Ref    *Location
		Offset int
		Src    *Location
	}

	BinaryOp struct {
		Op        Opcode
		Dst, A, B *Location
	}

	Label struct {
		Name string
	}

	Goto struct {
		Label string
	}

	IfZ struct {
		Test  *Location
		Label string
	}

	PushParam struct {
		Param *Location
	}

	PopParams struct {
		Bytes int
	}

	// LCall calls a label directly. Dst is nil for calls without a value.
	LCall struct {
		Label string
		Dst   *Location
	}

	// ACall calls the address held in Addr.
	ACall struct {
		Addr *Location
		Dst  *Location
	}

	BeginFunc struct {
		FrameSize int
	}

	EndFunc struct{}

	Return struct {
		Value *Location
	}

	VTable struct {
		Class   string
		Methods []string
	}
)

const (
	Add Opcode = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Less
	And
	Or

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	Add:  "+",
	Sub:  "-",
	Mul:  "*",
	Div:  "/",
	Mod:  "%",
	Eq:   "==",
	Less: "<",
	And:  "&&",
	Or:   "||",
}

func (op Opcode) String() string {
	if op < 0 || op >= numOpcodes {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}

	return opcodeNames[op]
}

func (*LoadConst) instr()  {}
func (*LoadString) instr() {}
func (*LoadLabel) instr()  {}
func (*Assign) instr()     {}
func (*Load) instr()       {}
func (*Store) instr()      {}
func (*BinaryOp) instr()   {}
func (*Label) instr()      {}
func (*Goto) instr()       {}
func (*IfZ) instr()        {}
func (*PushParam) instr()  {}
func (*PopParams) instr()  {}
func (*LCall) instr()      {}
func (*ACall) instr()      {}
func (*BeginFunc) instr()  {}
func (*EndFunc) instr()    {}
func (*Return) instr()     {}
func (*VTable) instr()     {}

func (x *LoadConst) String() string { return fmt.Sprintf("%v = %d", x.Dst, x.Value) }

func (x *LoadString) String() string { return fmt.Sprintf("%v = %s", x.Dst, strconv.Quote(x.Value)) }

func (x *LoadLabel) String() string { return fmt.Sprintf("%v = %s", x.Dst, x.Label) }

func (x *Assign) String() string { return fmt.Sprintf("%v = %v", x.Dst, x.Src) }

func (x *Load) String() string { return fmt.Sprintf("%v = %s", x.Dst, deref(x.Ref, x.Offset)) }

func (x *Store) String() string { return fmt.Sprintf("%s = %v", deref(x.Ref, x.Offset), x.Src) }

func (x *BinaryOp) String() string { return fmt.Sprintf("%v = %v %v %v", x.Dst, x.A, x.Op, x.B) }

func (x *Label) String() string { return x.Name + ":" }

func (x *Goto) String() string { return "Goto " + x.Label }

func (x *IfZ) String() string { return fmt.Sprintf("IfZ %v Goto %s", x.Test, x.Label) }

func (x *PushParam) String() string { return fmt.Sprintf("PushParam %v", x.Param) }

func (x *PopParams) String() string { return fmt.Sprintf("PopParams %d", x.Bytes) }

func (x *LCall) String() string {
	if x.Dst == nil {
		return "LCall " + x.Label
	}

	return fmt.Sprintf("%v = LCall %s", x.Dst, x.Label)
}

func (x *ACall) String() string {
	if x.Dst == nil {
		return fmt.Sprintf("ACall %v", x.Addr)
	}

	return fmt.Sprintf("%v = ACall %v", x.Dst, x.Addr)
}

func (x *BeginFunc) String() string { return fmt.Sprintf("BeginFunc %d", x.FrameSize) }

func (x *EndFunc) String() string { return "EndFunc" }

func (x *Return) String() string {
	if x.Value == nil {
		return "Return"
	}

	return fmt.Sprintf("Return %v", x.Value)
}

func (x *VTable) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "VTable %s =\n", x.Class)

	for _, m := range x.Methods {
		fmt.Fprintf(&b, "\t%s,\n", m)
	}

	b.WriteString(";")

	return b.String()
}

func deref(ref *Location, off int) string {
	if off == 0 {
		return fmt.Sprintf("*(%v)", ref)
	}

	if off < 0 {
		return fmt.Sprintf("*(%v - %d)", ref, -off)
	}

	return fmt.Sprintf("*(%v + %d)", ref, off)
}

func (op Opcode) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendFormat(b, "%v", op)
}
