package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ToolkitCommand handles installed toolkits
type ToolkitCommand struct{}

// NewToolkitCommand creates the toolkit command tree
func NewToolkitCommand(groupID string) *cobra.Command {
	tc := &ToolkitCommand{}

	cmd := &cobra.Command{
		Use:     "toolkit",
		Short:   "Install and list toolkits",
		GroupID: groupID,
	}

	cmd.AddCommand(
		tc.newInstallCommand(),
		tc.newListCommand(),
	)

	return cmd
}

func (c *ToolkitCommand) newInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [file]",
		Short: "Install a toolkit",
		Long: `Install a toolkit exported by 'automate pattern build'.
Installing a toolkit replaces any other installed version of it.

Examples:
  automate toolkit install ~/.automate/export/microservice_0.1.0.toolkit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			tk, err := services.Runtime.InstallToolkit(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Installed toolkit '%s' %s", tk.Name(), tk.Version))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *ToolkitCommand) newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed toolkits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			summaries, err := services.Runtime.ListToolkits()
			if err != nil {
				return err
			}
			return printer.PrintSummaries("toolkit", summaries, "")
		},
	}
	addOutputFlags(cmd)
	return cmd
}
