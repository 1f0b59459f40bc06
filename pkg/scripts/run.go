// Package scripts runs the script aliases declared in the workspace configuration.
package scripts

import (
	"context"
	"io"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"

	"github.com/OMUAPPS/omuchat-python/pkg/shell"
	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
	"github.com/OMUAPPS/omuchat-python/pkg/wslog"
)

// ErrRecursiveChain is returned if a chain ends up calling itself.
var ErrRecursiveChain = eris.New("script was called recursively")

type Options struct {
	Env      map[string]string
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Builtins string
	DryRun   bool
}

type runtimeCtx struct {
	project *workspace.Project
	opts    Options
	// false while a script is running, true once it finished
	runScripts map[string]bool
}

// Run executes the named script from the project root. args are appended to the command; chains
// don't accept any.
func Run(ctx context.Context, project *workspace.Project, name string, args []string, opts Options) error {
	rctx := &runtimeCtx{
		project:    project,
		opts:       opts,
		runScripts: map[string]bool{},
	}

	return rctx.run(ctx, name, args)
}

func (r *runtimeCtx) run(ctx context.Context, name string, args []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if done, ok := r.runScripts[name]; ok && !done {
		return eris.Wrapf(ErrRecursiveChain, "script %s", name)
	}

	script, err := r.project.Script(name)
	if err != nil {
		return err
	}

	r.runScripts[name] = false
	defer func() {
		r.runScripts[name] = true
	}()

	if len(script.Chain) > 0 {
		if len(args) > 0 {
			return eris.Errorf("script %s is a chain and doesn't accept arguments", name)
		}

		for _, item := range script.Chain {
			if err := r.run(ctx, item, nil); err != nil {
				return eris.Wrapf(err, "script %s failed due to %s", name, item)
			}
		}
		return nil
	}

	env, err := r.env(script)
	if err != nil {
		return err
	}

	logger := wslog.Log(ctx)
	logger.Info().Str("script", name).Bool("command", true).Msg(script.String())
	if r.opts.DryRun {
		return nil
	}

	shellOpts := shell.Options{
		Dir:      r.project.Root,
		Env:      shell.Environ(env),
		Stdin:    r.opts.Stdin,
		Stdout:   r.opts.Stdout,
		Stderr:   r.opts.Stderr,
		Builtins: r.opts.Builtins,
	}

	if len(script.Args) > 0 {
		err = shell.RunArgs(ctx, shellOpts, append(append([]string{}, script.Args...), args...))
	} else {
		err = shell.RunLine(ctx, shellOpts, script.Line, args)
	}
	if err != nil {
		return eris.Wrapf(err, "script %s failed", name)
	}

	return nil
}

// env merges the process overrides, the script's env-file and its env table, in that order.
func (r *runtimeCtx) env(script *workspace.Script) (map[string]string, error) {
	env := map[string]string{"OMUWS_ROOT": r.project.Root}
	for k, v := range r.opts.Env {
		env[k] = v
	}

	if script.EnvFile != "" {
		path := script.EnvFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.project.Root, path)
		}

		fileEnv, err := godotenv.Read(path)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read env file %s for script %s", path, script.Name)
		}

		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for k, v := range script.Env {
		env[k] = v
	}

	return env, nil
}

// ReadEnvFiles loads dotenv files relative to root. Later files override earlier ones.
func ReadEnvFiles(root string, files []string) (map[string]string, error) {
	env := map[string]string{}
	for _, file := range files {
		if !filepath.IsAbs(file) {
			file = filepath.Join(root, file)
		}

		values, err := godotenv.Read(file)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read env file %s", file)
		}

		for k, v := range values {
			env[k] = v
		}
	}

	return env, nil
}
