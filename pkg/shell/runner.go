package shell

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// forwardScript runs the positional parameters as a single command, exactly like "$@" in a shell script.
const forwardScript = `"$@"`

// Options describes the environment a command runs in.
type Options struct {
	// Dir is the working directory of the command. The process' own working directory is left alone.
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Builtins is the path of an executable providing the mv, rm and mkdir subcommands.
	// If it's empty, these commands are looked up in PATH like any other command.
	Builtins string
}

var builtinCommands = map[string]bool{
	"mv":    true,
	"rm":    true,
	"mkdir": true,
}

// redirectBuiltins routes mv, rm and mkdir to our cross-platform implementation to make sure they
// behave consistently.
func redirectBuiltins(builtins string, args []string) []string {
	if builtins == "" || len(args) == 0 || !builtinCommands[args[0]] {
		return args
	}

	return append([]string{builtins}, args...)
}

func execHandler(builtins string) interp.ExecHandlerFunc {
	next := interp.DefaultExecHandler(2 * time.Second)

	return func(ctx context.Context, args []string) error {
		return next(ctx, redirectBuiltins(builtins, args))
	}
}

var defaultOpenHandler = interp.DefaultOpenHandler()

func openHandler(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

func newRunner(opts Options, params []string) (*interp.Runner, error) {
	env := opts.Env
	if env == nil {
		env = os.Environ()
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	runner, err := interp.New(
		interp.Dir(opts.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.ExecHandler(execHandler(opts.Builtins)),
		interp.OpenHandler(openHandler),
		interp.StdIO(opts.Stdin, stdout, stderr),
		interp.Params(append([]string{"-e", "--"}, params...)...),
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to initialize runner")
	}

	return runner, nil
}

// Parse parses a shell script. name is only used in error messages.
func Parse(name, script string) (*syntax.File, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse command %s", script)
	}

	return file, nil
}

// RunArgs executes args[0] with the remaining items as its arguments. The arguments are passed
// through verbatim: no quoting, expansion or word splitting is applied to them.
func RunArgs(ctx context.Context, opts Options, args []string) error {
	if len(args) == 0 {
		return eris.New("no command given")
	}

	return RunScript(ctx, opts, forwardScript, args...)
}

// RunScript executes a shell script. params become the script's positional parameters ($1, $2, ...).
func RunScript(ctx context.Context, opts Options, script string, params ...string) error {
	file, err := Parse("command", script)
	if err != nil {
		return err
	}

	return runFile(ctx, opts, file, params)
}

// lastCall finds the simple command that ends stmt. For "a && b" or "a | b" that's b.
func lastCall(stmt *syntax.Stmt) *syntax.CallExpr {
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		return cmd
	case *syntax.BinaryCmd:
		return lastCall(cmd.Y)
	default:
		return nil
	}
}

// RunLine executes a command line and appends args verbatim to its last command, the way a shell
// alias would.
func RunLine(ctx context.Context, opts Options, line string, args []string) error {
	file, err := Parse("command", line)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		var call *syntax.CallExpr
		if len(file.Stmts) > 0 {
			call = lastCall(file.Stmts[len(file.Stmts)-1])
		}
		if call == nil || len(call.Args) == 0 {
			return eris.Errorf("can't append arguments to %s", strings.TrimSpace(line))
		}

		call.Args = append(call.Args, &syntax.Word{
			Parts: []syntax.WordPart{
				&syntax.DblQuoted{
					Parts: []syntax.WordPart{
						&syntax.ParamExp{Param: &syntax.Lit{Value: "@"}},
					},
				},
			},
		})
	}

	return runFile(ctx, opts, file, args)
}

func runFile(ctx context.Context, opts Options, file *syntax.File, params []string) error {
	runner, err := newRunner(opts, params)
	if err != nil {
		return err
	}

	return runner.Run(ctx, file)
}

// ExitCode extracts the exit status from an error returned by RunArgs or RunScript.
// Errors that aren't caused by a non-zero exit status are reported as 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	if status, ok := interp.IsExitStatus(err); ok {
		return int(status)
	}

	return 1
}
