package main

import (
	"context"
	"os"

	"github.com/xiaobogaga/decaf/compiler/internal"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

func main() {
	checkCmd := &cli.Command{
		Name:        "check",
		Description: "parse and analyze decaf files, print diagnostics",
		Action:      checkAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile decaf files to three-address code",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: flags(
			cli.NewFlag("output,o", "", "write the program to file instead of stdout"),
		),
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile a decaf file and execute it",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: flags(
			cli.NewFlag("max-steps", 0, "instruction budget, 0 is unlimited"),
		),
	}

	app := &cli.Command{
		Name:        "decafc",
		Description: "decafc is a compiler for the decaf teaching language",
		Flags: []*cli.Flag{
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			checkCmd,
			compileCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// flags adds the common flags to a subcommand.
func flags(fs ...*cli.Flag) []*cli.Flag {
	return append(fs,
		cli.NewFlag("verbosity,v", "", "tlog topics to trace (scope,semantic,codegen,tac,vm,diag)"),
	)
}

func newContext(c *cli.Command) context.Context {
	tlog.SetVerbosity(c.String("verbosity"))

	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}

func checkAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	for _, a := range c.Args {
		_, err = internal.CompileFile(ctx, a, internal.Options{
			CheckOnly:   true,
			Diagnostics: os.Stdout,
		})
		if err != nil {
			return errors.Wrap(err, "check %v", a)
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	out := os.Stdout

	if name := c.String("output"); name != "" {
		var f *os.File

		f, err = os.Create(name)
		if err != nil {
			return errors.Wrap(err, "create output")
		}

		defer func() {
			e := f.Close()
			if err == nil && e != nil {
				err = errors.Wrap(e, "close output")
			}
		}()

		out = f
	}

	for _, a := range c.Args {
		_, err = internal.CompileFile(ctx, a, internal.Options{
			Diagnostics: os.Stdout,
			Output:      out,
		})
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	if len(c.Args) != 1 {
		return errors.New("run takes exactly one file, got %d", len(c.Args))
	}

	_, err = internal.CompileFile(ctx, c.Args[0], internal.Options{
		Diagnostics: os.Stdout,
		Run:         true,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		MaxSteps:    c.Int("max-steps"),
	})
	if err != nil {
		return errors.Wrap(err, "run %v", c.Args[0])
	}

	return nil
}
