package tac

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tlog.app/go/tlog"
)

type (
	// Emitter is the append-only instruction sink the code generator drives.
	// Destinations are allocated by the caller, the emitter only records operations.
	Emitter interface {
		LoadConstant(dst *Location, v int)
		LoadStringConstant(dst *Location, s string)
		LoadLabel(dst *Location, label string)
		Assign(dst, src *Location)
		Load(dst, ref *Location, offset int)
		Store(ref *Location, offset int, src *Location)
		BinaryOp(op Opcode, dst, a, b *Location)

		NewLabel() string
		Label(label string)
		Goto(label string)
		IfZ(test *Location, label string)

		PushParam(param *Location)
		PopParams(bytes int)
		LCall(label string, dst *Location)
		ACall(addr, dst *Location)
		BuiltInCall(b BuiltIn, dst *Location, args ...*Location)

		BeginFunc() *BeginFunc
		EndFunc()
		Return(val *Location)

		VTable(class string, methods []string)
	}

	// Program records emitted instructions in order.
	Program struct {
		Code []Instr

		labels int
	}
)

var _ Emitter = &Program{}

func New() *Program {
	return &Program{}
}

func (p *Program) add(x Instr) {
	p.Code = append(p.Code, x)

	tlog.V("tac").Printw("emit", "i", len(p.Code)-1, "instr", x.String())
}

func (p *Program) LoadConstant(dst *Location, v int) {
	p.add(&LoadConst{Dst: dst, Value: v})
}

func (p *Program) LoadStringConstant(dst *Location, s string) {
	p.add(&LoadString{Dst: dst, Value: s})
}

func (p *Program) LoadLabel(dst *Location, label string) {
	p.add(&LoadLabel{Dst: dst, Label: label})
}

func (p *Program) Assign(dst, src *Location) {
	p.add(&Assign{Dst: dst, Src: src})
}

func (p *Program) Load(dst, ref *Location, offset int) {
	p.add(&Load{Dst: dst, Ref: ref, Offset: offset})
}

func (p *Program) Store(ref *Location, offset int, src *Location) {
	p.add(&Store{Ref: ref, Offset: offset, Src: src})
}

func (p *Program) BinaryOp(op Opcode, dst, a, b *Location) {
	p.add(&BinaryOp{Op: op, Dst: dst, A: a, B: b})
}

func (p *Program) NewLabel() string {
	l := fmt.Sprintf("_L%d", p.labels)
	p.labels++

	return l
}

func (p *Program) Label(label string) {
	p.add(&Label{Name: label})
}

func (p *Program) Goto(label string) {
	p.add(&Goto{Label: label})
}

func (p *Program) IfZ(test *Location, label string) {
	p.add(&IfZ{Test: test, Label: label})
}

func (p *Program) PushParam(param *Location) {
	p.add(&PushParam{Param: param})
}

func (p *Program) PopParams(bytes int) {
	if bytes == 0 {
		return
	}

	p.add(&PopParams{Bytes: bytes})
}

func (p *Program) LCall(label string, dst *Location) {
	p.add(&LCall{Label: label, Dst: dst})
}

func (p *Program) ACall(addr, dst *Location) {
	p.add(&ACall{Addr: addr, Dst: dst})
}

// BuiltInCall pushes args right to left, calls the built-in and pops the args.
func (p *Program) BuiltInCall(b BuiltIn, dst *Location, args ...*Location) {
	if len(args) != b.NumArgs() {
		panic(fmt.Sprintf("tac: %v takes %d args, got %d", b, b.NumArgs(), len(args)))
	}

	if !b.HasReturn() {
		dst = nil
	}

	for i := len(args) - 1; i >= 0; i-- {
		p.PushParam(args[i])
	}

	p.LCall(b.Label(), dst)
	p.PopParams(len(args) * WordSize)
}

func (p *Program) BeginFunc() *BeginFunc {
	x := &BeginFunc{}
	p.add(x)

	return x
}

func (p *Program) EndFunc() {
	p.add(&EndFunc{})
}

func (p *Program) Return(val *Location) {
	p.add(&Return{Value: val})
}

func (p *Program) VTable(class string, methods []string) {
	p.add(&VTable{Class: class, Methods: methods})
}

// WriteTo prints the program in the usual TAC text form.
func (p *Program) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)

	for _, x := range p.Code {
		var m int

		switch x.(type) {
		case *Label, *VTable:
			m, err = fmt.Fprintf(bw, "%v\n", x)
		default:
			m, err = fmt.Fprintf(bw, "\t%v ;\n", x)
		}

		n += int64(m)

		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}

func (p *Program) String() string {
	var b strings.Builder

	_, _ = p.WriteTo(&b)

	return b.String()
}
