package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/OMUAPPS/omuchat-python/pkg/config"
	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
	"github.com/OMUAPPS/omuchat-python/pkg/wslog"
)

type appState struct {
	root   string
	cfg    *config.Config
	logger zerolog.Logger
}

var app appState

var rootCmd = &cobra.Command{
	Use:   "omuws",
	Short: "Workspace tool for the omuchat packages",
	Long: `omuws runs commands across the packages of the workspace and exposes the
script aliases, version and metadata declared in the root pyproject.toml.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("root", "", "workspace root (default: nearest directory with a pyproject.toml)")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.Bool("log-json", false, "output JSON log events instead of console messages")
}

func newLogger(out io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg.Log.JSON {
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return eris.ToJSON(err, true)
		}
		return zerolog.New(out).Level(cfg.LogLevel()).With().Timestamp().Logger()
	}

	return zerolog.New(NewConsoleWriter(out)).Level(cfg.LogLevel())
}

func setup(cmd *cobra.Command, args []string) error {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}

	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return eris.Wrap(err, "failed to retrieve the current working directory")
		}

		root, err = workspace.FindRoot(wd)
		if err != nil {
			return err
		}
	} else {
		root, err = filepath.Abs(root)
		if err != nil {
			return eris.Wrapf(err, "failed to resolve %s", root)
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		if _, err = config.ParseLogLevel(level); err != nil {
			return err
		}
		cfg.Log.Level = level
	}

	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON, _ = cmd.Flags().GetBool("log-json")
	}

	app = appState{
		root:   root,
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), cfg),
	}
	cmd.SetContext(wslog.WithLogger(cmd.Context(), &app.logger))

	return nil
}

// loadProject reads the root pyproject.toml. A missing file yields an empty project.
func loadProject() (*workspace.Project, error) {
	project, err := workspace.Load(app.root)
	if err != nil {
		if eris.Is(err, workspace.ErrNoProject) {
			app.logger.Debug().Str("root", app.root).Msg("no pyproject.toml found, using defaults")
			return workspace.Empty(app.root), nil
		}
		return nil, err
	}

	return project, nil
}

// selectMembers lists the packages in dir or, if useMembers is set, resolves the member globs of the
// root pyproject.toml.
func selectMembers(useMembers bool, dir string) ([]workspace.Member, error) {
	if !useMembers {
		return workspace.ListDir(app.root, dir)
	}

	project, err := loadProject()
	if err != nil {
		return nil, err
	}

	return project.Members()
}

// builtinsBinary returns the path of the running executable so the shell can route mv, rm and mkdir
// to our own implementation.
func builtinsBinary() string {
	exe, err := os.Executable()
	if err != nil {
		app.logger.Debug().Err(err).Msg("failed to determine executable, using system mv/rm/mkdir")
		return ""
	}

	return exe
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	cobra.CheckErr(err)
}
