package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandEntry describes one leaf command for introspection output.
type commandEntry struct {
	Path  string      `json:"path"`
	Short string      `json:"short"`
	Args  string      `json:"args,omitempty"`
	Flags []flagEntry `json:"flags,omitempty"`
}

// flagEntry describes one flag of a leaf command.
type flagEntry struct {
	Name    string `json:"name"`
	Short   string `json:"shorthand,omitempty"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
	Usage   string `json:"usage,omitempty"`
}

func newCommandsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List every CLI command with its flags",
		Long: `Walks the command tree and lists each command with its path, flags,
and description. Works offline; wrappers and agents can discover the
CLI surface in a single call instead of scraping --help output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := walkCommands(cmd.Root(), "")

			if filter != "" {
				needle := strings.ToLower(filter)
				var kept []commandEntry
				for _, e := range entries {
					if strings.Contains(strings.ToLower(e.Path+" "+e.Short), needle) {
						kept = append(kept, e)
					}
				}
				entries = kept
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, e.Short})
			}
			printTable(os.Stdout, []string{"command", "description"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring search across command paths and descriptions")

	return cmd
}

// walkCommands collects leaf commands depth-first, skipping plumbing.
func walkCommands(cmd *cobra.Command, parentPath string) []commandEntry {
	var entries []commandEntry

	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}

		childPath := child.Name()
		if parentPath != "" {
			childPath = parentPath + " " + child.Name()
		}

		if child.HasSubCommands() {
			entries = append(entries, walkCommands(child, childPath)...)
			continue
		}

		args := ""
		if useParts := strings.Fields(child.Use); len(useParts) > 1 {
			args = strings.Join(useParts[1:], " ")
		}

		entries = append(entries, commandEntry{
			Path:  childPath,
			Short: child.Short,
			Args:  args,
			Flags: collectFlags(child),
		})
	}

	return entries
}

func collectFlags(cmd *cobra.Command) []flagEntry {
	var flags []flagEntry
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		flags = append(flags, flagEntry{
			Name:    f.Name,
			Short:   f.Shorthand,
			Type:    f.Value.Type(),
			Default: f.DefValue,
			Usage:   f.Usage,
		})
	})
	return flags
}
