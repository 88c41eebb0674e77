package semantic

import (
	"context"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/diag"
	"github.com/xiaobogaga/decaf/compiler/internal/scope"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	Analyzer struct {
		table *scope.Table[ast.Decl]
		r     diag.Reporter

		root   scope.ID
		errors int
	}

	// env is the traversal context handed down by value.
	env struct {
		class      *ast.ClassDecl
		classFrame scope.ID
		fn         *ast.FnDecl
		loops      int
	}
)

func New(table *scope.Table[ast.Decl], r diag.Reporter) *Analyzer {
	return &Analyzer{
		table: table,
		r:     r,
		root:  scope.None,
	}
}

// Check analyzes the whole program, annotating it in place.
// Every violation goes to the reporter, analysis never stops early.
// It returns the number of reported diagnostics.
func (a *Analyzer) Check(ctx context.Context, p *ast.Program) int {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "semantic", "decls", len(p.Decls))
	defer func() {
		tr.Finish("errors", a.errors)
	}()

	p.Scope = a.table.Push()
	a.root = p.Scope

	for _, d := range p.Decls {
		a.declare(d)
	}

	var classes []*ast.ClassDecl

	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.VarDecl:
			a.checkType(d.Type)
		case *ast.FnDecl:
			a.checkSignature(d)
		case *ast.ClassDecl:
			a.resolveHeader(d)
			classes = append(classes, d)
		case *ast.InterfaceDecl:
		default:
			panic(d)
		}
	}

	a.checkCycles(classes)

	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ast.FnDecl:
			a.checkFunction(env{classFrame: scope.None}, d)
		case *ast.ClassDecl:
			a.checkClass(d)
		case *ast.InterfaceDecl:
			a.checkInterface(d)
		}
	}

	a.table.Pop()

	return a.errors
}

func (a *Analyzer) report(d *diag.Diagnostic) {
	a.errors++
	a.r.Report(d)
}

func (a *Analyzer) declare(d ast.Decl) {
	err := a.table.Declare(d.DeclName().Name, d)
	if err == nil {
		return
	}

	c := err.(*scope.ConflictError[ast.Decl])

	a.report(diag.NewDeclConflict(d, c.Prior))
}

// checkType resolves named types against the global scope.
func (a *Analyzer) checkType(t ast.Type) {
	switch t := t.(type) {
	case *ast.PrimitiveType:
	case *ast.ArrayType:
		a.checkType(t.Elem)
	case *ast.NamedType:
		if t.Decl != nil {
			return
		}

		switch d := a.global(t.Name.Name).(type) {
		case *ast.ClassDecl, *ast.InterfaceDecl:
			t.Decl = d
		default:
			a.report(diag.NewIdentifierNotDeclared(t.Name, diag.LookingForType))
		}
	default:
		panic(t)
	}
}

func (a *Analyzer) checkSignature(fn *ast.FnDecl) {
	a.checkType(fn.ReturnType)

	for _, f := range fn.Formals {
		a.checkType(f.Type)
	}
}

func (a *Analyzer) global(name string) ast.Decl {
	d, _ := a.table.Lookup(a.root, name)
	return d
}

func (a *Analyzer) resolveHeader(c *ast.ClassDecl) {
	if c.Extends != nil {
		if b, ok := a.global(c.Extends.Name.Name).(*ast.ClassDecl); ok {
			c.Extends.Decl = b
			c.Base = b
		} else {
			a.report(diag.NewIdentifierNotDeclared(c.Extends.Name, diag.LookingForClass))
		}
	}

	for _, nt := range c.Implements {
		if i, ok := a.global(nt.Name.Name).(*ast.InterfaceDecl); ok {
			nt.Decl = i
			c.Interfaces = append(c.Interfaces, i)
		} else {
			a.report(diag.NewIdentifierNotDeclared(nt.Name, diag.LookingForInterface))
		}
	}
}

// checkCycles reports every class whose base chain leads back to itself
// and cuts its base link.
func (a *Analyzer) checkCycles(classes []*ast.ClassDecl) {
	var cyclic []*ast.ClassDecl

	for _, c := range classes {
		seen := map[*ast.ClassDecl]bool{}

		for b := c.Base; b != nil && !seen[b]; b = b.Base {
			if b == c {
				cyclic = append(cyclic, c)
				break
			}

			seen[b] = true
		}
	}

	for _, c := range cyclic {
		a.report(diag.NewInheritanceCycle(c))
	}

	for _, c := range cyclic {
		c.Base = nil
	}
}

func (a *Analyzer) checkInterface(i *ast.InterfaceDecl) {
	if i.State != ast.Unchecked {
		return
	}

	i.State = ast.Checking

	prev := a.table.Reenter(a.root)
	i.Scope = a.table.Push()

	for _, m := range i.Members {
		a.declare(m)
	}

	for _, m := range i.Members {
		a.checkSignature(m)

		m.Scope = a.table.Push()

		for _, f := range m.Formals {
			a.declare(f)
		}

		a.table.Pop()
	}

	a.table.Pop()
	a.table.Reenter(prev)

	i.State = ast.Checked
}

// checkClass validates a class after its base and interfaces.
// It is memoized by the class check state.
func (a *Analyzer) checkClass(c *ast.ClassDecl) {
	if c.State != ast.Unchecked {
		return
	}

	c.State = ast.Checking

	tlog.V("semantic").Printw("check class", "name", c.Name.Name, "from", loc.Caller(1))

	if c.Base != nil {
		a.checkClass(c.Base)
	}

	for _, i := range c.Interfaces {
		a.checkInterface(i)
	}

	prev := a.table.Reenter(a.root)
	c.Scope = a.table.Push()

	anc := c.Ancestors()

	for i := len(anc) - 1; i >= 0; i-- {
		for _, m := range anc[i].Members {
			if v, ok := m.(*ast.VarDecl); ok {
				// conflicts here were reported when the ancestor was checked
				_ = a.table.Declare(v.Name.Name, v)
			}
		}
	}

	for _, m := range c.Members {
		a.declare(m)
	}

	for _, m := range c.Members {
		switch m := m.(type) {
		case *ast.VarDecl:
			a.checkType(m.Type)
		case *ast.FnDecl:
			a.checkSignature(m)
		}
	}

	a.checkOverrides(c)

	e := env{class: c, classFrame: c.Scope}

	for _, m := range c.Members {
		if fn, ok := m.(*ast.FnDecl); ok {
			a.checkFunction(e, fn)
		}
	}

	a.checkConformance(c)

	a.table.Pop()
	a.table.Reenter(prev)

	c.State = ast.Checked
}

func (a *Analyzer) checkOverrides(c *ast.ClassDecl) {
	for _, m := range c.Members {
		fn, ok := m.(*ast.FnDecl)
		if !ok {
			continue
		}

		name := fn.Name.Name
		mismatch := false

		if c.Base != nil {
			if inh, ok := c.Base.LookupMember(name).(*ast.FnDecl); ok && !fn.SameSignature(inh) {
				mismatch = true
			}
		}

		for _, i := range c.Interfaces {
			if im := i.LookupMethod(name); im != nil && !fn.SameSignature(im) {
				mismatch = true
			}
		}

		if mismatch {
			a.report(diag.NewOverrideMismatch(fn))
		}
	}
}

// checkConformance reports each claimed interface with a method
// that has no identically typed counterpart among the class members.
func (a *Analyzer) checkConformance(c *ast.ClassDecl) {
	for _, nt := range c.Implements {
		i, ok := nt.Decl.(*ast.InterfaceDecl)
		if !ok {
			continue
		}

		for _, im := range i.Members {
			cm, ok := c.LookupMember(im.Name.Name).(*ast.FnDecl)
			if ok && cm.SameSignature(im) {
				continue
			}

			a.report(diag.NewInterfaceNotImplemented(c, nt))

			break
		}
	}
}

func (a *Analyzer) checkFunction(e env, fn *ast.FnDecl) {
	fn.Scope = a.table.Push()

	for _, f := range fn.Formals {
		a.declare(f)
	}

	e.fn = fn
	e.loops = 0

	if fn.Body != nil {
		a.checkBlock(e, fn.Body)
	}

	a.table.Pop()
}

// lookup resolves a bare name: enclosing frames innermost first,
// with the members of the enclosing class and its ancestors
// consulted at the class frame.
func (a *Analyzer) lookup(e env, name string) ast.Decl {
	return Lookup(a.table, e.class, e.classFrame, name)
}

// Lookup is the bare name resolution shared with code generation.
func Lookup(t *scope.Table[ast.Decl], class *ast.ClassDecl, classFrame scope.ID, name string) ast.Decl {
	for id := t.Current(); id != scope.None; id = t.Parent(id) {
		if d, ok := t.Lookup(id, name); ok {
			return d
		}

		if class != nil && id == classFrame {
			if d := class.LookupMember(name); d != nil {
				return d
			}
		}
	}

	return nil
}
