package cmd

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/OMUAPPS/omuchat-python/pkg"
	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows or changes the version of the workspace and its packages",
	Long: `Without flags, prints the version of the workspace and of every package.
--bump and --set rewrite the version in the root pyproject.toml and in the
pyproject.toml of every package.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		bump, _ := cmd.Flags().GetString("bump")
		newVersion, _ := cmd.Flags().GetString("set")
		dryRun, _ := cmd.Flags().GetBool("dry")
		useMembers, _ := cmd.Flags().GetBool("members")

		project, err := loadProject()
		if err != nil {
			return err
		}

		members, err := selectMembers(useMembers, app.cfg.PackagesDir)
		if err != nil {
			return err
		}

		if bump == "" && newVersion == "" {
			pkg.PrintTask(out, project.Metadata.Name+" "+project.Metadata.Version)
			for _, member := range members {
				meta, err := member.Metadata()
				if err != nil {
					pkg.PrintError(out, member.Path+": "+err.Error())
					continue
				}

				if meta == nil {
					continue
				}
				pkg.PrintSubtask(out, member.Path+": "+meta.Name+" "+meta.Version)
			}
			return nil
		}

		if bump != "" && newVersion != "" {
			return eris.New("--bump and --set are mutually exclusive")
		}

		if bump != "" {
			newVersion, err = workspace.NextVersion(project.Metadata.Version, bump)
			if err != nil {
				return err
			}
		} else if err = workspace.ValidateVersion(newVersion); err != nil {
			return err
		}

		changes, err := project.PlanVersion(members, newVersion)
		if err != nil {
			return err
		}

		pkg.PrintTask(out, "Setting version "+newVersion)
		for _, change := range changes {
			rel, err := filepath.Rel(app.root, change.Path)
			if err != nil {
				rel = change.Path
			}
			pkg.PrintSubtask(out, rel+": "+change.Old+" -> "+change.New)
		}

		if dryRun {
			return nil
		}

		return workspace.ApplyVersion(changes)
	},
}

func init() {
	versionCmd.Flags().String("bump", "", "increment the version (major, minor or patch)")
	versionCmd.Flags().String("set", "", "set an explicit version")
	versionCmd.Flags().BoolP("dry", "n", false, "only print the changes")
	versionCmd.Flags().Bool("members", false, "use the workspace member globs from pyproject.toml")

	rootCmd.AddCommand(versionCmd)
}
