package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n1rna/automate/internal/parser"
)

// DraftCommand handles drafts created from installed toolkits
type DraftCommand struct{}

// NewDraftCommand creates the draft command tree
func NewDraftCommand(groupID string) *cobra.Command {
	dc := &DraftCommand{}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Configure drafts and run their automation",
		Long: `Create drafts from installed toolkits, configure them and run their automation.

Items of a draft are addressed with expressions like '{services}' for an element, or
'{services.<id>}' for an item of a collection. The draft root is the default.`,
		GroupID: groupID,
	}

	cmd.AddCommand(
		dc.newNewCommand(),
		dc.newSwitchCommand(),
		dc.newListCommand(),
		dc.newViewCommand(),
		dc.newConfigureCommand(),
		dc.newValidateCommand(),
		dc.newUpgradeCommand(),
		dc.newRunCommand(),
		dc.newDeleteCommand(),
	)

	return cmd
}

func (c *DraftCommand) newNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [toolkit] [name]",
		Short: "Create a draft from an installed toolkit and make it current",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			d, err := services.Runtime.NewDraft(args[0], args[1])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Created draft '%s' from toolkit '%s' %s", d.Name, d.Toolkit.Name(), d.ToolkitVersion()))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newSwitchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch [name-or-id]",
		Short: "Make another draft current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			d, err := services.Runtime.SwitchDraft(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Switched to draft '%s'", d.Name))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			summaries, current, err := services.Runtime.ListDrafts()
			if err != nil {
				return err
			}
			return printer.PrintSummaries("draft", summaries, current)
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the current draft",
		Long: `Show the current draft as a tree, or with --config the configuration
that templates are rendered against.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			d, err := services.Runtime.CurrentDraft()
			if err != nil {
				return err
			}
			if showConfig, _ := cmd.Flags().GetBool("config"); showConfig {
				return printer.PrintConfiguration(d.Model)
			}
			return printer.PrintDraft(d)
		},
	}
	cmd.Flags().Bool("config", false, "Show the configuration instead of the tree")
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newConfigureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure items of the current draft",
		Long: `Configure items of the current draft.

Examples:
  # Add an item to a collection
  automate draft configure add '{services}'

  # Set values of an item
  automate draft configure on '{services.<id>}' name=billing port=8080`,
	}

	add := &cobra.Command{
		Use:   "add [expression]",
		Short: "Configure an element, or add an item to a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			item, err := services.Runtime.AddItem(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added %s (%s)", item.ConfigurePath(), item.ID))
			return nil
		},
	}

	on := &cobra.Command{
		Use:   "on [expression] [name=value]...",
		Short: "Set attribute values of an item",
		Long: `Set attribute values of an item, from arguments or from a YAML, JSON or .env file.
Arguments override values read from the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			values := make(map[string]string)
			if from, _ := cmd.Flags().GetString("from"); from != "" {
				if values, err = parser.ParseValuesFile(from); err != nil {
					return err
				}
			}
			assignments, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			for name, value := range assignments {
				values[name] = value
			}
			if len(values) == 0 {
				return fmt.Errorf("no values given, use name=value arguments or --from")
			}
			item, err := services.Runtime.SetProperties(args[0], values)
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Updated %s", item.ConfigurePath()))
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset [expression]",
		Short: "Restore the default values of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			item, err := services.Runtime.ResetProperties(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Reset %s", item.ConfigurePath()))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear [expression]",
		Short: "Remove all items of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			item, err := services.Runtime.ClearCollection(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Cleared %s", item.ConfigurePath()))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [expression]",
		Short: "Remove an item from the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := services.Runtime.DeleteItem(args[0]); err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted %s", args[0]))
			return nil
		},
	}

	on.Flags().String("from", "", "Read values from a YAML, JSON or .env file")

	for _, sub := range []*cobra.Command{add, on, reset, clearCmd, del} {
		addOutputFlags(sub)
		cmd.AddCommand(sub)
	}
	return cmd
}

func (c *DraftCommand) newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [expression]",
		Short: "Validate the current draft, or one of its items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			expression := ""
			if len(args) > 0 {
				expression = args[0]
			}
			results, err := services.Runtime.Validate(expression)
			if err != nil {
				return err
			}
			if err := printer.PrintValidation(results); err != nil {
				return err
			}
			if len(results) > 0 {
				return fmt.Errorf("the draft has %d validation errors", len(results))
			}
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newUpgradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the current draft to the installed toolkit",
		Long: `Upgrade the current draft to the installed version of its toolkit.
Upgrades with breaking changes are only applied with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			result, upgradeErr := services.Runtime.Upgrade(force)
			if result != nil {
				if err := printer.PrintMigration(result); err != nil {
					return err
				}
			}
			return upgradeErr
		},
	}
	cmd.Flags().Bool("force", false, "Apply the upgrade even if it has breaking changes")
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [automation]",
		Short: "Run a command or launch point on an item of the current draft",
		Long: `Run a command or launch point on an item of the current draft.
Files are rendered below the target directory (--target, default: the working directory).

Examples:
  automate draft run generate --on '{services.<id>}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			on, _ := cmd.Flags().GetString("on")
			result, err := services.Runtime.Run(cmd.Context(), args[0], on)
			if err != nil {
				return err
			}
			if err := printer.PrintExecution(result); err != nil {
				return err
			}
			return result.Err()
		},
	}
	cmd.Flags().String("on", "", "Expression of the item (default: the draft root)")
	addOutputFlags(cmd)
	return cmd
}

func (c *DraftCommand) newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [name-or-id]",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := services.Runtime.DeleteDraft(args[0]); err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted draft '%s'", args[0]))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}
