package codegen

import (
	"context"
	"fmt"
	"sort"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/scope"
	"github.com/xiaobogaga/decaf/compiler/internal/tac"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	CodeGenerator struct {
		table *scope.Table[ast.Decl]
		out   tac.Emitter

		globals int
		temps   int

		// selectors are the interface method names in dispatch order.
		// They take the first vtable slots of every class.
		selectors    []string
		selectorSlot map[string]int

		noSuchMethod bool
	}

	// env is the emission context handed down by value.
	env struct {
		class      *ast.ClassDecl
		classFrame scope.ID
		fn         *ast.FnDecl
		frame      *frame
		this       *tac.Location

		// exit is the label ending the innermost loop.
		exit string
	}

	// frame allocates locals and temporaries of one function.
	frame struct {
		next int
	}
)

const (
	MainLabel         = "main"
	NoSuchMethodLabel = "_NoSuchMethod"
)

// Generate emits the whole program.
// The tree must have passed semantic analysis with no diagnostics,
// an inconsistent tree is reported as an error.
func Generate(ctx context.Context, p *ast.Program, table *scope.Table[ast.Decl], out tac.Emitter) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "codegen", "decls", len(p.Decls))
	defer tr.Finish("err", &err)

	defer func() {
		perr := recover()
		if perr == nil {
			return
		}

		if e, ok := perr.(error); ok {
			err = errors.Wrap(e, "codegen")
		} else {
			err = errors.New("codegen: %v", perr)
		}
	}()

	g := New(table, out)

	g.layoutProgram(p)
	g.generateProgramCode(p)

	tr.Printw("generated", "globals", g.globals/tac.WordSize, "temps", g.temps, "selectors", len(g.selectors))

	return nil
}

func New(table *scope.Table[ast.Decl], out tac.Emitter) *CodeGenerator {
	return &CodeGenerator{
		table:        table,
		out:          out,
		globals:      tac.OffsetToFirstGlobal,
		selectorSlot: map[string]int{},
	}
}

// layoutProgram assigns everything reachable before any function body:
// global slots, function labels, interface selectors and class layouts.
func (g *CodeGenerator) layoutProgram(p *ast.Program) {
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.VarDecl:
			setLoc(d, tac.NewLocation(tac.GlobalRelative, g.globals, d.Name.Name))
			g.globals += tac.WordSize
		case *ast.FnDecl:
			d.Label = FunctionLabel(d)
		case *ast.InterfaceDecl:
			for _, m := range d.Members {
				if _, ok := g.selectorSlot[m.Name.Name]; !ok {
					g.selectorSlot[m.Name.Name] = -1
					g.selectors = append(g.selectors, m.Name.Name)
				}
			}
		}
	}

	sort.Strings(g.selectors)

	for i, s := range g.selectors {
		g.selectorSlot[s] = i
	}

	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.InterfaceDecl:
			for _, m := range d.Members {
				m.Slot = g.selectorSlot[m.Name.Name]
			}
		case *ast.ClassDecl:
			Layout(d)
		}
	}
}

func (g *CodeGenerator) generateProgramCode(p *ast.Program) {
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.FnDecl:
			g.generateFunctionCode(env{classFrame: scope.None}, d)
		case *ast.ClassDecl:
			g.generateClassCode(d)
		}
	}

	if g.noSuchMethod {
		g.generateNoSuchMethodCode()
	}
}

// FunctionLabel is the entry label of a global function.
func FunctionLabel(fn *ast.FnDecl) string {
	if fn.Name.Name == MainLabel {
		return MainLabel
	}

	return "_" + fn.Name.Name
}

// Layout computes the field offsets and method slots of c.
// It is memoized in c.Layout, the base class is laid out first.
func Layout(c *ast.ClassDecl) *ast.ClassLayout {
	if c.Layout != nil {
		return c.Layout
	}

	l := &ast.ClassLayout{Size: tac.ObjectHeader}

	if c.Base != nil {
		bl := Layout(c.Base)

		l.Fields = append(l.Fields, bl.Fields...)
		l.Methods = append(l.Methods, bl.Methods...)
		l.Size = bl.Size
	}

	for _, m := range c.Members {
		switch m := m.(type) {
		case *ast.VarDecl:
			m.Offset = l.Size
			l.Size += tac.WordSize
			l.Fields = append(l.Fields, m)
		case *ast.FnDecl:
			m.Label = fmt.Sprintf("_%s.%s", c.Name.Name, m.Name.Name)
			m.Slot = len(l.Methods)

			for i, inh := range l.Methods {
				if inh.Name.Name == m.Name.Name {
					m.Slot = i
					break
				}
			}

			if m.Slot == len(l.Methods) {
				l.Methods = append(l.Methods, m)
			} else {
				l.Methods[m.Slot] = m
			}
		}
	}

	c.Layout = l

	tlog.V("codegen").Printw("layout", "class", c.Name.Name, "size", l.Size, "fields", len(l.Fields), "methods", len(l.Methods))

	return l
}

// VTableLabels lists the method labels of c in slot order,
// selector slots first.
func (g *CodeGenerator) VTableLabels(c *ast.ClassDecl) []string {
	l := Layout(c)

	labels := make([]string, 0, len(g.selectors)+len(l.Methods))

	for _, s := range g.selectors {
		label := NoSuchMethodLabel

		for _, m := range l.Methods {
			if m.Name.Name == s {
				label = m.Label
				break
			}
		}

		if label == NoSuchMethodLabel {
			g.noSuchMethod = true
		}

		labels = append(labels, label)
	}

	for _, m := range l.Methods {
		labels = append(labels, m.Label)
	}

	return labels
}

// methodOffset is the vtable byte offset fn is dispatched through.
func (g *CodeGenerator) methodOffset(fn *ast.FnDecl) int {
	if fn.Interface != nil {
		return fn.Slot * tac.WordSize
	}

	return (len(g.selectors) + fn.Slot) * tac.WordSize
}

func (g *CodeGenerator) generateClassCode(c *ast.ClassDecl) {
	l := Layout(c)
	if l.Emitted {
		return
	}

	l.Emitted = true

	if c.Base != nil {
		g.generateClassCode(c.Base)
	}

	e := env{class: c, classFrame: c.Scope}

	for _, m := range c.Members {
		if fn, ok := m.(*ast.FnDecl); ok {
			g.generateFunctionCode(e, fn)
		}
	}

	g.out.VTable(c.Name.Name, g.VTableLabels(c))
}

func (g *CodeGenerator) generateFunctionCode(e env, fn *ast.FnDecl) {
	e.fn = fn
	e.frame = &frame{next: tac.OffsetToFirstLocal}
	e.exit = ""

	g.out.Label(fn.Label)
	begin := g.out.BeginFunc()

	off := tac.OffsetToFirstParam

	if e.class != nil {
		e.this = tac.NewLocation(tac.FrameRelative, off, "this")
		off += tac.WordSize
	}

	for _, f := range fn.Formals {
		setLoc(f, tac.NewLocation(tac.FrameRelative, off, f.Name.Name))
		off += tac.WordSize
	}

	prev := g.table.Reenter(fn.Scope)

	g.generateBlockCode(e, fn.Body)

	g.table.Reenter(prev)

	begin.FrameSize = e.frame.size()
	g.out.EndFunc()

	tlog.V("codegen").Printw("function", "label", fn.Label, "frame_size", begin.FrameSize, "from", loc.Caller(1))
}

func (g *CodeGenerator) generateNoSuchMethodCode() {
	e := env{classFrame: scope.None, frame: &frame{next: tac.OffsetToFirstLocal}}

	g.out.Label(NoSuchMethodLabel)
	begin := g.out.BeginFunc()

	g.generateRuntimeErrorCode(e, "Decaf runtime error: No such method\n")

	begin.FrameSize = e.frame.size()
	g.out.EndFunc()
}

// generateRuntimeErrorCode prints msg and halts.
func (g *CodeGenerator) generateRuntimeErrorCode(e env, msg string) {
	t := g.temp(e)
	g.out.LoadStringConstant(t, msg)
	g.out.BuiltInCall(tac.PrintString, nil, t)
	g.out.BuiltInCall(tac.Halt, nil)
}

func (g *CodeGenerator) temp(e env) *tac.Location {
	name := fmt.Sprintf("_tmp%d", g.temps)
	g.temps++

	return e.frame.alloc(name)
}

func (f *frame) alloc(name string) *tac.Location {
	l := tac.NewLocation(tac.FrameRelative, f.next, name)
	f.next -= tac.WordSize

	return l
}

func (f *frame) size() int {
	return tac.OffsetToFirstLocal - f.next
}

// setLoc attaches a location, a declaration gets at most one.
func setLoc(v *ast.VarDecl, l *tac.Location) {
	if v.Loc != nil {
		panic(errors.New("%v: %s already has location %v", v.Name.Pos, v.Name.Name, v.Loc))
	}

	v.Loc = l
}
