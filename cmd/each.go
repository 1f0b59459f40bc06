package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/OMUAPPS/omuchat-python/pkg/each"
	"github.com/OMUAPPS/omuchat-python/pkg/scripts"
	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
	"github.com/OMUAPPS/omuchat-python/pkg/wslog"
)

var eachCmd = &cobra.Command{
	Use:     "each [flags] [--] <command> [args...]",
	Aliases: []string{"foreach"},
	Short:   "Runs a command inside every workspace package",
	Long: `Runs the given command once in every direct subdirectory of the packages
directory, using the subdirectory as working directory. The command and its
arguments are passed on verbatim.

By default all packages are processed even if the command fails in some of
them; use --fail-fast to stop at the first failure. The exit status is non-zero
if the command failed anywhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		script, _ := flags.GetString("shell")
		if script == "" && len(args) == 0 {
			return eris.New("no command given")
		}

		dryRun, _ := flags.GetBool("dry")
		onlyFailed, _ := flags.GetBool("failed")
		useMembers, _ := flags.GetBool("members")
		filters, _ := flags.GetStringArray("filter")

		dir := app.cfg.PackagesDir
		if flags.Changed("dir") {
			dir, _ = flags.GetString("dir")
		}

		jobs := app.cfg.Jobs
		if flags.Changed("jobs") {
			jobs, _ = flags.GetInt("jobs")
		}
		if jobs < 1 {
			return eris.Errorf("invalid value for --jobs: %d", jobs)
		}

		failFast := app.cfg.FailFast
		if flags.Changed("fail-fast") {
			failFast, _ = flags.GetBool("fail-fast")
		}

		envFiles := app.cfg.EnvFiles
		if flags.Changed("env-file") {
			envFiles, _ = flags.GetStringArray("env-file")
		}

		ctx := cmd.Context()
		logger := wslog.Log(ctx)

		members, err := selectMembers(useMembers, dir)
		if err != nil {
			return err
		}

		members, err = workspace.FilterMembers(members, filters)
		if err != nil {
			return err
		}

		statePath := filepath.Join(app.root, app.cfg.StateDir, each.StateFile)
		if onlyFailed {
			last, err := each.LoadReport(statePath)
			if err != nil {
				return err
			}
			members = each.OnlyFailed(members, last)
		}

		if len(members) == 0 {
			logger.Info().Str("dir", dir).Msg("no packages found")
			return nil
		}

		env, err := scripts.ReadEnvFiles(app.root, envFiles)
		if err != nil {
			return err
		}

		opts := each.Options{
			Root:     app.root,
			Args:     args,
			Script:   script,
			Env:      env,
			Jobs:     jobs,
			FailFast: failFast,
			DryRun:   dryRun,
			Stdin:    cmd.InOrStdin(),
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
			Builtins: builtinsBinary(),
		}

		if jobs > 1 {
			opts.Progress = progressbar.NewOptions(len(members),
				progressbar.OptionSetDescription("packages"),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetVisibility(os.Getenv("CI") != "true"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
		}

		report, runErr := each.Run(ctx, members, opts)
		if report == nil {
			return runErr
		}

		if !dryRun {
			if err := each.SaveReport(statePath, report); err != nil {
				logger.Warn().Err(err).Msg("failed to save run state")
			}
		}

		if runErr != nil {
			logger.Error().Msg(report.Summary())
		} else {
			logger.Info().Msg(report.Summary())
		}

		return runErr
	},
}

func init() {
	flags := eachCmd.Flags()
	// everything after the command belongs to the command
	flags.SetInterspersed(false)

	flags.String("dir", "packages", "directory containing the packages, relative to the workspace root")
	flags.Bool("members", false, "use the workspace member globs from pyproject.toml instead of --dir")
	flags.StringArray("filter", nil, "only run in packages whose name matches this pattern (repeatable)")
	flags.String("shell", "", "run this shell script instead of a command; remaining arguments become $1, $2, ...")
	flags.IntP("jobs", "j", 1, "number of packages processed at the same time")
	flags.Bool("fail-fast", false, "stop after the first package that fails")
	flags.BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	flags.Bool("failed", false, "only run in packages that failed during the previous run")
	flags.StringArray("env-file", nil, "load environment variables from this dotenv file (repeatable)")

	rootCmd.AddCommand(eachCmd)
}
