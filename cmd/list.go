package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type memberEntry struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Project string `json:"project,omitempty" yaml:"project,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

func collectMembers(useMembers bool) ([]memberEntry, error) {
	members, err := selectMembers(useMembers, app.cfg.PackagesDir)
	if err != nil {
		return nil, err
	}

	entries := make([]memberEntry, 0, len(members))
	for _, member := range members {
		entry := memberEntry{Name: member.Name, Path: member.Path}

		meta, err := member.Metadata()
		if err != nil {
			app.logger.Warn().Str("package", member.Name).Err(err).Msg("failed to read package metadata")
		} else if meta != nil {
			entry.Project = meta.Name
			entry.Version = meta.Version
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func printMembers(out io.Writer, format string, entries []memberEntry) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return eris.Wrap(err, "failed to encode output")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return eris.Wrap(err, "failed to encode output")
		}
		fmt.Fprint(out, string(data))
	case "text":
		maxPathLen := 0
		for _, entry := range entries {
			if len(entry.Path) > maxPathLen {
				maxPathLen = len(entry.Path)
			}
		}

		lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxPathLen+3)
		for _, entry := range entries {
			details := entry.Project
			if entry.Version != "" {
				details += " " + entry.Version
			}
			fmt.Fprintf(out, lineFmt, entry.Path, details)
		}
	default:
		return eris.Errorf("unsupported format %s", format)
	}

	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the workspace packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		useMembers, _ := cmd.Flags().GetBool("members")

		entries, err := collectMembers(useMembers)
		if err != nil {
			return err
		}

		return printMembers(cmd.OutOrStdout(), format, entries)
	},
}

func init() {
	listCmd.Flags().StringP("format", "o", "text", "output format (text, json or yaml)")
	listCmd.Flags().Bool("members", false, "use the workspace member globs from pyproject.toml")

	rootCmd.AddCommand(listCmd)
}
