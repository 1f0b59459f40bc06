package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OMUAPPS/omuchat-python/pkg/workspace"
)

func printField(out io.Writer, name, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(out, "%-17s %s\n", name+":", value)
}

func printProjectInfo(out io.Writer, project *workspace.Project) {
	meta := project.Metadata

	authors := make([]string, len(meta.Authors))
	for idx, author := range meta.Authors {
		authors[idx] = author.Name
		if author.Email != "" {
			authors[idx] += " <" + author.Email + ">"
		}
	}

	printField(out, "root", project.Root)
	printField(out, "name", meta.Name)
	printField(out, "version", meta.Version)
	printField(out, "description", meta.Description)
	printField(out, "authors", strings.Join(authors, ", "))
	printField(out, "requires-python", meta.RequiresPython)
	printField(out, "build-backend", project.BuildSystem.Backend)
	printField(out, "dependencies", fmt.Sprintf("%d", len(meta.Dependencies)))
	printField(out, "dependency groups", strings.Join(project.DependencyGroupNames(), ", "))
	printField(out, "members", strings.Join(project.MemberGlobs(), ", "))
	printField(out, "lint select", strings.Join(project.LintSelect(), ", "))
	printField(out, "lint ignore", strings.Join(project.LintIgnore(), ", "))
	printField(out, "scripts", strings.Join(project.ScriptNames(), ", "))
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Shows the workspace metadata from pyproject.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := loadProject()
		if err != nil {
			return err
		}

		printProjectInfo(cmd.OutOrStdout(), project)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
