package internal

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xiaobogaga/decaf/compiler/internal/ast"
	"github.com/xiaobogaga/decaf/compiler/internal/codegen"
	"github.com/xiaobogaga/decaf/compiler/internal/diag"
	"github.com/xiaobogaga/decaf/compiler/internal/parser"
	"github.com/xiaobogaga/decaf/compiler/internal/scope"
	"github.com/xiaobogaga/decaf/compiler/internal/semantic"
	"github.com/xiaobogaga/decaf/compiler/internal/tac"
	"github.com/xiaobogaga/decaf/compiler/internal/vm"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	Options struct {
		// CheckOnly stops after semantic analysis.
		CheckOnly bool

		// Diagnostics receives the sorted diagnostic report.
		Diagnostics io.Writer
		// Output receives the generated program text.
		Output io.Writer

		Run      bool
		Stdin    io.Reader
		Stdout   io.Writer
		MaxSteps int
	}

	Result struct {
		Program     *ast.Program
		Diagnostics []*diag.Diagnostic
		Code        *tac.Program
	}

	// DiagnosticsError is returned when analysis reported anything.
	DiagnosticsError struct {
		File  string
		Count int
	}
)

func CompileFile(ctx context.Context, path string, opts Options) (res *Result, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close")
		}
	}()

	return Compile(ctx, path, f, opts)
}

// Compile runs the pipeline: parse, analyze, generate, and run if asked.
// Code generation is skipped when analysis reports anything.
func Compile(ctx context.Context, name string, r io.Reader, opts Options) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "file", name)
	defer tr.Finish("err", &err)

	res = &Result{}

	res.Program, err = parser.Parse(ctx, name, r)
	if err != nil {
		return res, errors.Wrap(err, "parse")
	}

	table := scope.New[ast.Decl]()
	var bag diag.Bag

	semantic.New(table, &bag).Check(ctx, res.Program)

	if !opts.CheckOnly && !hasMain(res.Program) {
		bag.Report(diag.NewNoMainFunction())
	}

	res.Diagnostics = bag.Sorted()

	if bag.HasErrors() {
		tr.Printw("diagnostics", "count", bag.Len())

		if opts.Diagnostics != nil {
			if err = bag.Print(opts.Diagnostics); err != nil {
				return res, errors.Wrap(err, "print diagnostics")
			}
		}

		return res, &DiagnosticsError{File: name, Count: bag.Len()}
	}

	if opts.CheckOnly {
		return res, nil
	}

	res.Code = tac.New()

	err = codegen.Generate(ctx, res.Program, table, res.Code)
	if err != nil {
		return res, errors.Wrap(err, "generate")
	}

	tr.Printw("generated", "instrs", len(res.Code.Code))

	if opts.Output != nil {
		if _, err = res.Code.WriteTo(opts.Output); err != nil {
			return res, errors.Wrap(err, "write")
		}
	}

	if !opts.Run {
		return res, nil
	}

	err = vm.Run(ctx, res.Code, vm.Config{
		Stdin:    opts.Stdin,
		Stdout:   opts.Stdout,
		MaxSteps: opts.MaxSteps,
	})
	if err != nil {
		return res, errors.Wrap(err, "run")
	}

	return res, nil
}

func hasMain(p *ast.Program) bool {
	for _, d := range p.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && fn.Name.Name == codegen.MainLabel {
			return true
		}
	}

	return false
}

func (e *DiagnosticsError) Error() string {
	if e.Count == 1 {
		return fmt.Sprintf("%s: 1 error", e.File)
	}

	return fmt.Sprintf("%s: %d errors", e.File, e.Count)
}
