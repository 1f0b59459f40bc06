package each

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/OMUAPPS/omuchat-python/pkg/shell"
	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
	"github.com/OMUAPPS/omuchat-python/pkg/wslog"
)

// ErrCommandFailed is returned by Run if the command failed in at least one package.
var ErrCommandFailed = eris.New("command failed")

// Progress receives one Add(1) call per finished package. *progressbar.ProgressBar implements it.
type Progress interface {
	Add(num int) error
}

// Options controls a run.
type Options struct {
	// Root is exported to the command as OMUWS_ROOT
	Root string
	// Args is the command and its arguments. They're passed on verbatim.
	Args []string
	// Script is a shell script that's run instead of Args. Args become its positional parameters.
	Script string
	Env    map[string]string
	// Jobs limits the number of packages processed at the same time. Values below 2 mean sequential
	// execution with unbuffered output.
	Jobs     int
	FailFast bool
	DryRun   bool
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	// Builtins is passed to shell.Options
	Builtins string
	Progress Progress
}

func (o *Options) command() []string {
	if o.Script != "" {
		return append([]string{o.Script}, o.Args...)
	}

	return o.Args
}

func (o *Options) env(member workspace.Member) []string {
	env := make(map[string]string, len(o.Env)+3)
	for k, v := range o.Env {
		env[k] = v
	}

	env["OMUWS_ROOT"] = o.Root
	env["OMUWS_PACKAGE"] = member.Name
	env["OMUWS_PACKAGE_DIR"] = member.Dir

	return shell.Environ(env)
}

func (o *Options) progress() {
	if o.Progress != nil {
		_ = o.Progress.Add(1)
	}
}

// Run executes the command in every member. The returned report is never nil when err is caused by
// a failing command; errors.Is(err, ErrCommandFailed) distinguishes that case.
func Run(ctx context.Context, members []workspace.Member, opts Options) (*Report, error) {
	if len(opts.Args) == 0 && opts.Script == "" {
		return nil, eris.New("no command given")
	}

	report := &Report{
		ID:      nanoid.New(),
		Started: time.Now(),
		Command: opts.command(),
		Results: make([]Result, len(members)),
	}

	logger := wslog.Log(ctx).With().Str("run", report.ID).Logger()
	ctx = wslog.WithLogger(ctx, &logger)

	if opts.Jobs > 1 {
		runParallel(ctx, members, &opts, report)
	} else {
		runSequential(ctx, members, &opts, report)
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, eris.Wrapf(ErrCommandFailed, "%d of %d packages failed", len(failed), len(members))
	}

	if err := ctx.Err(); err != nil {
		return report, eris.Wrap(err, "run aborted")
	}

	return report, nil
}

func skipped(member workspace.Member) Result {
	return Result{Package: member.Name, Dir: member.Dir, Skipped: true}
}

func runSequential(ctx context.Context, members []workspace.Member, opts *Options, report *Report) {
	stop := false
	for idx, member := range members {
		if stop || ctx.Err() != nil {
			report.Results[idx] = skipped(member)
			continue
		}

		result := runMember(ctx, member, opts, opts.Stdout, opts.Stderr)
		report.Results[idx] = result
		opts.progress()

		if result.Failed() && opts.FailFast {
			wslog.Log(ctx).Warn().Str("package", member.Name).Msg("stopping after the first failure")
			stop = true
		}
	}
}

func runParallel(ctx context.Context, members []workspace.Member, opts *Options, report *Report) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	var outputLock sync.Mutex
	for idx, member := range members {
		idx, member := idx, member
		g.Go(func() error {
			if gctx.Err() != nil {
				report.Results[idx] = skipped(member)
				return nil
			}

			var stdout, stderr bytes.Buffer
			result := runMember(gctx, member, opts, &stdout, &stderr)
			if result.Failed() && gctx.Err() != nil && ctx.Err() == nil {
				// killed because another package failed with --fail-fast
				wslog.Log(ctx).Debug().Str("package", member.Name).Msg("cancelled after a failure elsewhere")
				result = skipped(member)
			}
			report.Results[idx] = result

			outputLock.Lock()
			flush(opts.Stdout, &stdout)
			flush(opts.Stderr, &stderr)
			opts.progress()
			outputLock.Unlock()

			if result.Failed() && opts.FailFast {
				return eris.Wrapf(ErrCommandFailed, "in %s", member.Name)
			}
			return nil
		})
	}

	// Failures are recorded in the report, the group error only serves to cancel the others.
	_ = g.Wait()
}

func flush(w io.Writer, buf *bytes.Buffer) {
	if w != nil && buf.Len() > 0 {
		_, _ = w.Write(buf.Bytes())
	}
}

func runMember(ctx context.Context, member workspace.Member, opts *Options, stdout, stderr io.Writer) Result {
	logger := wslog.Log(ctx).With().Str("package", member.Name).Logger()
	result := Result{Package: member.Name, Dir: member.Dir}

	logger.Info().
		Bool("command", true).
		Str("path", member.Dir).
		Msg(strings.Join(opts.command(), " "))

	if opts.DryRun {
		result.Skipped = true
		return result
	}

	shellOpts := shell.Options{
		Dir:      member.Dir,
		Env:      opts.env(member),
		Stdout:   stdout,
		Stderr:   stderr,
		Builtins: opts.Builtins,
	}

	// Parallel runs can't share a terminal for input.
	if opts.Jobs <= 1 {
		shellOpts.Stdin = opts.Stdin
	}

	start := time.Now()
	var err error
	if opts.Script != "" {
		err = shell.RunScript(ctx, shellOpts, opts.Script, opts.Args...)
	} else {
		err = shell.RunArgs(ctx, shellOpts, opts.Args)
	}
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		result.ExitStatus = shell.ExitCode(err)
		logger.Error().Int("status", result.ExitStatus).Err(err).Msg("command failed")
	} else {
		logger.Debug().Dur("duration", result.Duration).Msg("done")
	}

	return result
}
