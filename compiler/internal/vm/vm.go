package vm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaobogaga/decaf/compiler/internal/tac"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	Config struct {
		Stdin  io.Reader
		Stdout io.Writer

		// MaxSteps bounds executed instructions, 0 is unlimited.
		MaxSteps int
	}

	// Machine executes a TAC program over word-addressed memory.
	Machine struct {
		cfg Config
		in  *bufio.Reader

		code   []tac.Instr
		labels map[string]int

		funcs     map[int]string
		funcAddrs map[string]int
		vtables   map[string]int

		mem  map[int]int
		strs []string
		heap int

		pc, fp, sp int
		calls      []call
		steps      int
		halted     bool
	}

	call struct {
		ret    int
		fp, sp int
		dst    *tac.Location
	}

	// Fault is a runtime error of the executed program.
	Fault struct {
		PC    int
		Instr string
		Msg   string
	}
)

// Memory map in bytes.
const (
	GlobalBase = 0x1000
	HeapBase   = 0x100000
	StackBase  = 0x10000000
	CodeBase   = 0x40000000
)

const entryLabel = "main"

// New indexes labels and lays out vtables.
func New(p *tac.Program, cfg Config) (*Machine, error) {
	m := &Machine{
		cfg:       cfg,
		code:      p.Code,
		labels:    map[string]int{},
		funcs:     map[int]string{},
		funcAddrs: map[string]int{},
		vtables:   map[string]int{},
		mem:       map[int]int{},
		strs:      []string{""},
		heap:      HeapBase,
	}

	if cfg.Stdin != nil {
		m.in = bufio.NewReader(cfg.Stdin)
	}

	for pc, x := range m.code {
		l, ok := x.(*tac.Label)
		if !ok {
			continue
		}

		if _, dup := m.labels[l.Name]; dup {
			return nil, errors.New("duplicate label %s", l.Name)
		}

		m.labels[l.Name] = pc

		addr := CodeBase + len(m.funcs)*tac.WordSize
		m.funcs[addr] = l.Name
		m.funcAddrs[l.Name] = addr
	}

	for _, x := range m.code {
		vt, ok := x.(*tac.VTable)
		if !ok {
			continue
		}

		if _, dup := m.vtables[vt.Class]; dup {
			return nil, errors.New("duplicate vtable %s", vt.Class)
		}

		base := m.alloc(len(vt.Methods) * tac.WordSize)

		for i, method := range vt.Methods {
			addr, ok := m.funcAddrs[method]
			if !ok {
				return nil, errors.New("vtable %s: undefined method %s", vt.Class, method)
			}

			m.mem[base+i*tac.WordSize] = addr
		}

		m.vtables[vt.Class] = base
	}

	if _, ok := m.labels[entryLabel]; !ok {
		return nil, errors.New("no %s function", entryLabel)
	}

	return m, nil
}

// Run executes p from main until it returns or halts.
func Run(ctx context.Context, p *tac.Program, cfg Config) (err error) {
	m, err := New(p, cfg)
	if err != nil {
		return errors.Wrap(err, "load")
	}

	return m.Run(ctx)
}

func (m *Machine) Run(ctx context.Context) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "vm", "instrs", len(m.code))
	defer func() {
		tr.Finish("err", err, "steps", m.steps)
	}()

	m.fp, m.sp = StackBase, StackBase
	m.calls = []call{{ret: -1, fp: m.fp, sp: m.sp}}
	m.pc = m.labels[entryLabel]

	for !m.halted {
		if m.cfg.MaxSteps != 0 && m.steps >= m.cfg.MaxSteps {
			return m.fault("step limit %d exceeded", m.cfg.MaxSteps)
		}

		if m.steps&0xfff == 0 {
			if err = ctx.Err(); err != nil {
				return errors.Wrap(err, "vm")
			}
		}

		if m.pc < 0 || m.pc >= len(m.code) {
			return m.fault("pc out of code")
		}

		m.steps++

		if err = m.step(m.code[m.pc]); err != nil {
			return err
		}
	}

	return nil
}

// Steps is the number of executed instructions.
func (m *Machine) Steps() int { return m.steps }

func (m *Machine) step(x tac.Instr) (err error) {
	if tlog.If("vm") {
		tlog.Printw("step", "pc", m.pc, "instr", x.String(), "fp", m.fp, "sp", m.sp)
	}

	next := m.pc + 1

	switch x := x.(type) {
	case *tac.Label, *tac.VTable:
	case *tac.LoadConst:
		m.set(x.Dst, x.Value)
	case *tac.LoadString:
		m.set(x.Dst, m.newString(x.Value))
	case *tac.LoadLabel:
		addr, ok := m.vtables[x.Label]
		if !ok {
			addr, ok = m.funcAddrs[x.Label]
		}

		if !ok {
			return m.fault("undefined label %s", x.Label)
		}

		m.set(x.Dst, addr)
	case *tac.Assign:
		m.set(x.Dst, m.get(x.Src))
	case *tac.Load:
		v, err := m.load(m.get(x.Ref) + x.Offset)
		if err != nil {
			return err
		}

		m.set(x.Dst, v)
	case *tac.Store:
		if err = m.store(m.get(x.Ref)+x.Offset, m.get(x.Src)); err != nil {
			return err
		}
	case *tac.BinaryOp:
		v, err := m.binary(x.Op, m.get(x.A), m.get(x.B))
		if err != nil {
			return err
		}

		m.set(x.Dst, v)
	case *tac.Goto:
		next, err = m.target(x.Label)
	case *tac.IfZ:
		if m.get(x.Test) == 0 {
			next, err = m.target(x.Label)
		}
	case *tac.PushParam:
		m.mem[m.sp] = m.get(x.Param)
		m.sp -= tac.WordSize
	case *tac.PopParams:
		m.sp += x.Bytes
	case *tac.LCall:
		if b, ok := tac.LookupBuiltIn(x.Label); ok {
			return m.builtIn(b, x.Dst)
		}

		return m.call(x.Label, x.Dst)
	case *tac.ACall:
		label, ok := m.funcs[m.get(x.Addr)]
		if !ok {
			return m.fault("call of bad address %#x", m.get(x.Addr))
		}

		return m.call(label, x.Dst)
	case *tac.BeginFunc:
		m.sp = m.fp + tac.OffsetToFirstLocal - x.FrameSize
	case *tac.EndFunc:
		m.ret(0, false)
		return nil
	case *tac.Return:
		if x.Value == nil {
			m.ret(0, false)
		} else {
			m.ret(m.get(x.Value), true)
		}

		return nil
	default:
		return m.fault("unsupported instruction")
	}

	if err != nil {
		return err
	}

	m.pc = next

	return nil
}

func (m *Machine) call(label string, dst *tac.Location) error {
	pc, ok := m.labels[label]
	if !ok {
		return m.fault("call of undefined function %s", label)
	}

	m.calls = append(m.calls, call{ret: m.pc + 1, fp: m.fp, sp: m.sp, dst: dst})

	m.fp = m.sp
	m.pc = pc

	return nil
}

func (m *Machine) ret(v int, hasValue bool) {
	c := m.calls[len(m.calls)-1]
	m.calls = m.calls[:len(m.calls)-1]

	if c.ret < 0 {
		m.halted = true
		return
	}

	m.pc, m.fp, m.sp = c.ret, c.fp, c.sp

	if c.dst != nil && hasValue {
		m.set(c.dst, v)
	}
}

func (m *Machine) target(label string) (int, error) {
	pc, ok := m.labels[label]
	if !ok {
		return 0, m.fault("jump to undefined label %s", label)
	}

	return pc, nil
}

func (m *Machine) binary(op tac.Opcode, a, b int) (int, error) {
	switch op {
	case tac.Add:
		return a + b, nil
	case tac.Sub:
		return a - b, nil
	case tac.Mul:
		return a * b, nil
	case tac.Div, tac.Mod:
		if b == 0 {
			return 0, m.fault("division by zero")
		}

		if op == tac.Div {
			return a / b, nil
		}

		return a % b, nil
	case tac.Eq:
		return boolInt(a == b), nil
	case tac.Less:
		return boolInt(a < b), nil
	case tac.And:
		return boolInt(a != 0 && b != 0), nil
	case tac.Or:
		return boolInt(a != 0 || b != 0), nil
	default:
		return 0, m.fault("unsupported operator %v", op)
	}
}

// arg is the i-th pushed parameter of a built-in call.
func (m *Machine) arg(i int) int {
	return m.mem[m.sp+(i+1)*tac.WordSize]
}

func (m *Machine) builtIn(b tac.BuiltIn, dst *tac.Location) error {
	var v int

	switch b {
	case tac.Alloc:
		n := m.arg(0)
		if n < 0 {
			return m.fault("alloc of %d bytes", n)
		}

		v = m.alloc(n)
	case tac.ReadLine:
		line, err := m.readLine()
		if err != nil {
			return err
		}

		v = m.newString(line)
	case tac.ReadInteger:
		line, err := m.readLine()
		if err != nil {
			return err
		}

		v, _ = strconv.Atoi(strings.TrimSpace(line))
	case tac.StringEqual:
		v = boolInt(m.str(m.arg(0)) == m.str(m.arg(1)))
	case tac.PrintInt:
		return m.print(strconv.Itoa(m.arg(0)))
	case tac.PrintString:
		return m.print(m.str(m.arg(0)))
	case tac.PrintBool:
		return m.print(strconv.FormatBool(m.arg(0) != 0))
	case tac.Halt:
		tlog.V("vm").Printw("halt", "pc", m.pc, "from", loc.Caller(1))

		m.halted = true

		return nil
	default:
		return m.fault("unsupported built-in %v", b)
	}

	if dst != nil {
		m.set(dst, v)
	}

	m.pc++

	return nil
}

func (m *Machine) print(s string) error {
	m.pc++

	if m.cfg.Stdout == nil {
		return nil
	}

	_, err := io.WriteString(m.cfg.Stdout, s)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

func (m *Machine) readLine() (string, error) {
	if m.in == nil {
		return "", nil
	}

	line, err := m.in.ReadString('\n')
	if err == io.EOF {
		err = nil
	}

	if err != nil {
		return "", errors.Wrap(err, "read")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (m *Machine) alloc(n int) int {
	addr := m.heap
	m.heap += (n + tac.WordSize - 1) / tac.WordSize * tac.WordSize

	return addr
}

func (m *Machine) newString(s string) int {
	m.strs = append(m.strs, s)

	return len(m.strs) - 1
}

func (m *Machine) str(h int) string {
	if h <= 0 || h >= len(m.strs) {
		return ""
	}

	return m.strs[h]
}

func (m *Machine) addr(l *tac.Location) int {
	if l.Segment == tac.GlobalRelative {
		return GlobalBase + l.Offset
	}

	return m.fp + l.Offset
}

func (m *Machine) get(l *tac.Location) int {
	return m.mem[m.addr(l)]
}

func (m *Machine) set(l *tac.Location, v int) {
	m.mem[m.addr(l)] = v
}

func (m *Machine) load(addr int) (int, error) {
	if err := m.check(addr); err != nil {
		return 0, err
	}

	return m.mem[addr], nil
}

func (m *Machine) store(addr, v int) error {
	if err := m.check(addr); err != nil {
		return err
	}

	m.mem[addr] = v

	return nil
}

func (m *Machine) check(addr int) error {
	if addr < GlobalBase {
		return m.fault("null pointer dereference")
	}

	if addr%tac.WordSize != 0 {
		return m.fault("unaligned access at %#x", addr)
	}

	return nil
}

// Word reads memory, for tests and debugging.
func (m *Machine) Word(addr int) int { return m.mem[addr] }

func (m *Machine) fault(format string, args ...interface{}) error {
	f := &Fault{PC: m.pc, Msg: fmt.Sprintf(format, args...)}

	if m.pc >= 0 && m.pc < len(m.code) {
		f.Instr = m.code[m.pc].String()
	}

	return f
}

func (f *Fault) Error() string {
	return fmt.Sprintf("runtime fault at %d (%s): %s", f.PC, f.Instr, f.Msg)
}

func (f *Fault) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)

	b = e.AppendKeyInt(b, "pc", f.PC)

	b = e.AppendKey(b, "instr")
	b = e.AppendFormat(b, "%s", f.Instr)

	b = e.AppendKey(b, "msg")
	b = e.AppendFormat(b, "%s", f.Msg)

	return b
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
