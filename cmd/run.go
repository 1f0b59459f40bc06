package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OMUAPPS/omuchat-python/pkg/scripts"
)

var runCmd = &cobra.Command{
	Use:   "run [script] [args...]",
	Short: "Runs a script alias declared in pyproject.toml",
	Long: `Runs one of the aliases declared in [tool.rye.scripts] or [tool.omuws.scripts]
from the workspace root. Additional arguments are appended to the command.
Without a script name, the available aliases are listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := loadProject()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			out := cmd.OutOrStdout()
			names := project.ScriptNames()
			if len(names) == 0 {
				fmt.Fprintln(out, "No scripts declared.")
				return nil
			}

			fmt.Fprintln(out, "Available scripts:")
			maxNameLen := 0
			for _, name := range names {
				if len(name) > maxNameLen {
					maxNameLen = len(name)
				}
			}

			lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
			for _, name := range names {
				script, err := project.Script(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, lineFmt, name+":", script.String())
			}
			return nil
		}

		dryRun, _ := cmd.Flags().GetBool("dry")
		env, err := scripts.ReadEnvFiles(app.root, app.cfg.EnvFiles)
		if err != nil {
			return err
		}

		return scripts.Run(cmd.Context(), project, args[0], args[1:], scripts.Options{
			Env:      env,
			Stdin:    cmd.InOrStdin(),
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
			Builtins: builtinsBinary(),
			DryRun:   dryRun,
		})
	},
}

func init() {
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")

	rootCmd.AddCommand(runCmd)
}
