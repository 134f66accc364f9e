package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n1rna/automate/internal/parser"
	"github.com/n1rna/automate/internal/pattern"
)

// PatternCommand handles authoring of patterns
type PatternCommand struct{}

// NewPatternCommand creates the pattern command tree
func NewPatternCommand(groupID string) *cobra.Command {
	pc := &PatternCommand{}

	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Author patterns and build toolkits",
		Long: `Create and edit patterns.

A pattern describes a tree of elements, their attributes, code templates and automation.
Building a pattern versions it and exports a toolkit that can be installed to create drafts.

Elements and automation are addressed with expressions relative to the pattern,
like '{services}' or '{apattern.services.endpoints}'. The pattern root is the default.`,
		GroupID: groupID,
	}

	cmd.AddCommand(
		pc.newCreateCommand(),
		pc.newSwitchCommand(),
		pc.newListCommand(),
		pc.newViewCommand(),
		pc.newDeleteCommand(),
		pc.newAddElementCommand("add-element", "Add an element", pattern.CardinalityOne),
		pc.newAddElementCommand("add-collection", "Add a collection", pattern.CardinalityZeroOrMany),
		pc.newUpdateElementCommand(),
		pc.newDeleteElementCommand(),
		pc.newAddAttributeCommand(),
		pc.newUpdateAttributeCommand(),
		pc.newDeleteAttributeCommand(),
		pc.newAddCodeTemplateCommand(),
		pc.newUploadCodeTemplateCommand(),
		pc.newDeleteCodeTemplateCommand(),
		pc.newAddCodeTemplateCommandCommand(),
		pc.newAddCliCommandCommand(),
		pc.newAddLaunchPointCommand(),
		pc.newUpdateLaunchPointCommand(),
		pc.newDeleteAutomationCommand(),
		pc.newBuildCommand(),
	)

	return cmd
}

func (c *PatternCommand) newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new pattern and make it current",
		Long: `Create a new pattern and make it the current pattern.

Examples:
  # Create a pattern
  automate pattern create microservice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := services.Authoring.CreatePattern(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Created pattern '%s' (%s)", p.Name, p.ID))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newSwitchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch [name-or-id]",
		Short: "Make another pattern current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := services.Authoring.SwitchPattern(args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Switched to pattern '%s'", p.Name))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			summaries, current, err := services.Authoring.ListPatterns()
			if err != nil {
				return err
			}
			return printer.PrintSummaries("pattern", summaries, current)
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the schema of the current pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			p, err := services.Authoring.CurrentPattern()
			if err != nil {
				return err
			}
			return printer.PrintPattern(p)
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [name-or-id]",
		Short: "Delete a pattern and its code templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := services.Authoring.DeletePattern(args[0]); err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted pattern '%s'", args[0]))
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newAddElementCommand(use, short string, cardinality pattern.Cardinality) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [name]",
		Short: short + " to the current pattern",
		Long: short + ` to the current pattern.

Examples:
  # Add to the pattern root
  automate pattern ` + use + ` services

  # Add below another element, with attributes given as name:type:required[:default]
  automate pattern ` + use + ` endpoints --parent '{services}' \
    --attribute path:string:true --attribute port:int:false:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			parent, _ := cmd.Flags().GetString("parent")
			opts := pattern.ElementOptions{Cardinality: cardinality}
			if value, _ := cmd.Flags().GetString("cardinality"); value != "" {
				if opts.Cardinality, err = pattern.ParseCardinality(value); err != nil {
					return err
				}
			}
			if opts.Cardinality.IsCollection() != cardinality.IsCollection() {
				return fmt.Errorf("the cardinality %s cannot be used with %s", opts.Cardinality, use)
			}
			opts.AutoCreate, _ = cmd.Flags().GetBool("autocreate")
			opts.DisplayName, _ = cmd.Flags().GetString("displayname")
			opts.Description, _ = cmd.Flags().GetString("description")
			specs, _ := cmd.Flags().GetStringSlice("attribute")
			attributes, err := parser.ParseAttributeSpecs(specs)
			if err != nil {
				return err
			}

			var added *pattern.Element
			_, err = services.Authoring.UpdateElement(parent, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				if added, err = e.AddElement(args[0], opts); err != nil {
					return err
				}
				for _, attribute := range attributes {
					if _, err := attribute.Apply(added); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added '%s' to '%s'", added.Name, added.Parent().Name))
			return nil
		},
	}
	cmd.Flags().String("parent", "", "Expression of the parent element (default: the pattern)")
	cmd.Flags().String("cardinality", "", "Cardinality (One, ZeroOrOne, OneOrMany, ZeroOrMany)")
	cmd.Flags().Bool("autocreate", true, "Create the element automatically in new drafts")
	cmd.Flags().String("displayname", "", "Display name")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().StringSlice("attribute", []string{}, "Add attribute in format 'name:type:required[:default]'")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newUpdateElementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-element [name]",
		Short: "Update an element or collection",
		Long: `Update an element or collection. Only the flags given are changed.

Examples:
  # Rename a collection and allow it to be empty
  automate pattern update-element services --name apis --cardinality ZeroOrMany`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			parent, _ := cmd.Flags().GetString("parent")
			update := pattern.ElementUpdate{
				Name:        changedString(cmd, "name"),
				DisplayName: changedString(cmd, "displayname"),
				Description: changedString(cmd, "description"),
				AutoCreate:  changedBool(cmd, "autocreate"),
			}
			if value := changedString(cmd, "cardinality"); value != nil {
				cardinality, err := pattern.ParseCardinality(*value)
				if err != nil {
					return err
				}
				update.Cardinality = &cardinality
			}

			var updated *pattern.Element
			_, err = services.Authoring.UpdateElement(parent, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				updated, err = e.UpdateElement(args[0], update)
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Updated '%s'", updated.Name))
			return nil
		},
	}
	cmd.Flags().String("parent", "", "Expression of the parent element (default: the pattern)")
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("cardinality", "", "Cardinality (One, ZeroOrOne, OneOrMany, ZeroOrMany)")
	cmd.Flags().Bool("autocreate", true, "Create the element automatically in new drafts")
	cmd.Flags().String("displayname", "", "Display name")
	cmd.Flags().String("description", "", "Description")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newDeleteElementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-element [name]",
		Short: "Delete an element or collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			parent, _ := cmd.Flags().GetString("parent")
			_, err = services.Authoring.UpdateElement(parent, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				return e.DeleteElement(args[0])
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("parent", "", "Expression of the parent element (default: the pattern)")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newAddAttributeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-attribute [name]",
		Short: "Add an attribute to an element",
		Long: `Add an attribute to an element.

Examples:
  # A required string attribute on the pattern
  automate pattern add-attribute owner --required

  # An attribute with choices on a collection
  automate pattern add-attribute protocol --element '{services}' --default http --choices http,grpc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			typeName, _ := cmd.Flags().GetString("type")
			dataType, err := pattern.ParseDataType(typeName)
			if err != nil {
				return err
			}
			required, _ := cmd.Flags().GetBool("required")
			defaultValue, _ := cmd.Flags().GetString("default")
			choices, _ := cmd.Flags().GetString("choices")

			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				_, err := e.AddAttribute(args[0], dataType, required, defaultValue, splitList(choices))
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added attribute '%s' (%s)", args[0], dataType))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("type", "string", "Data type (string, bool, int, float, datetime)")
	cmd.Flags().Bool("required", false, "Whether a value is required")
	cmd.Flags().String("default", "", "Default value")
	cmd.Flags().String("choices", "", "Comma separated list of allowed values")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newUpdateAttributeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-attribute [name]",
		Short: "Update an attribute. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			update := pattern.AttributeUpdate{
				Name:         changedString(cmd, "name"),
				IsRequired:   changedBool(cmd, "required"),
				DefaultValue: changedString(cmd, "default"),
			}
			if value := changedString(cmd, "type"); value != nil {
				dataType, err := pattern.ParseDataType(*value)
				if err != nil {
					return err
				}
				update.DataType = &dataType
			}
			if value := changedString(cmd, "choices"); value != nil {
				choices := splitList(*value)
				update.Choices = &choices
			}

			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				_, err := e.UpdateAttribute(args[0], update)
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Updated attribute '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("type", "string", "Data type (string, bool, int, float, datetime)")
	cmd.Flags().Bool("required", false, "Whether a value is required")
	cmd.Flags().String("default", "", "Default value")
	cmd.Flags().String("choices", "", "Comma separated list of allowed values, empty to remove them")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newDeleteAttributeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-attribute [name]",
		Short: "Delete an attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				return e.DeleteAttribute(args[0])
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted attribute '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newAddCodeTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-codetemplate [file]",
		Short: "Capture a file as a code template",
		Long: `Capture a file as a code template of an element.
The template is named after the file unless --name is given.

Examples:
  automate pattern add-codetemplate ./templates/service.go.tmpl --element '{services}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			name, _ := cmd.Flags().GetString("name")
			tmpl, err := services.Authoring.AddCodeTemplate(element, name, args[0])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added code template '%s' (%s)", tmpl.Name, tmpl.ID))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("name", "", "Name of the code template")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newUploadCodeTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload-codetemplate [name] [file]",
		Short: "Replace the content of a code template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			tmpl, err := services.Authoring.UploadCodeTemplate(element, args[0], args[1])
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Uploaded code template '%s'", tmpl.Name))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newDeleteCodeTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-codetemplate [name]",
		Short: "Delete a code template that no command uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			if err := services.Authoring.DeleteCodeTemplate(element, args[0]); err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted code template '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newAddCodeTemplateCommandCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-codetemplate-command [codetemplate]",
		Short: "Add a command that renders a code template to a file",
		Long: `Add a command that renders a code template to a file.
The target path is itself a template rendered against the draft item.

Examples:
  automate pattern add-codetemplate-command service --element '{services}' \
    --name generate --targetpath 'services/{{name}}/main.go'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			name, _ := cmd.Flags().GetString("name")
			targetPath, _ := cmd.Flags().GetString("targetpath")
			oneOff, _ := cmd.Flags().GetBool("oneoff")

			var added *pattern.Automation
			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				added, err = e.AddCodeTemplateCommand(name, args[0], oneOff, targetPath)
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added command '%s' (%s)", added.Name, added.ID))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("name", "", "Name of the command")
	cmd.Flags().String("targetpath", "", "Path of the rendered file, relative to the target directory")
	cmd.Flags().Bool("oneoff", false, "Never overwrite an existing file")
	_ = cmd.MarkFlagRequired("targetpath")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newAddCliCommandCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-cli-command [application]",
		Short: "Add a command that runs an application",
		Long: `Add a command that runs an application. The arguments are a template
rendered against the draft item, then split like a shell would.

Examples:
  automate pattern add-cli-command go --name tidy --arguments 'mod tidy'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			name, _ := cmd.Flags().GetString("name")
			arguments, _ := cmd.Flags().GetString("arguments")

			var added *pattern.Automation
			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				added, err = e.AddCliCommand(name, args[0], arguments)
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added command '%s' (%s)", added.Name, added.ID))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("name", "", "Name of the command")
	cmd.Flags().String("arguments", "", "Arguments passed to the application")
	_ = cmd.MarkFlagRequired("name")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newAddLaunchPointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-launchpoint [name]",
		Short: "Add a launch point running several commands",
		Long: `Add a launch point that runs commands of the pattern in order.

Examples:
  automate pattern add-launchpoint all --commands generate,tidy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			commands, _ := cmd.Flags().GetString("commands")

			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				_, err := e.AddCommandLaunchPoint(args[0], splitList(commands))
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Added launch point '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("commands", "", "Comma separated names or ids of commands")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newUpdateLaunchPointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-launchpoint [name]",
		Short: "Add or remove commands of a launch point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			add, _ := cmd.Flags().GetString("add")
			remove, _ := cmd.Flags().GetString("remove")

			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				_, err := e.UpdateCommandLaunchPoint(args[0], splitList(add), splitList(remove))
				return err
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Updated launch point '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().String("add", "", "Comma separated commands to add")
	cmd.Flags().String("remove", "", "Comma separated commands to remove")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newDeleteAutomationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-automation [name]",
		Short: "Delete a command or launch point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			element, _ := cmd.Flags().GetString("element")
			cascade, _ := cmd.Flags().GetBool("cascade")
			_, err = services.Authoring.UpdateElement(element, func(_ *pattern.PatternDefinition, e *pattern.Element) error {
				return e.DeleteAutomation(args[0], cascade)
			})
			if err != nil {
				return err
			}
			printer.Success(fmt.Sprintf("Deleted automation '%s'", args[0]))
			return nil
		},
	}
	cmd.Flags().String("element", "", "Expression of the element (default: the pattern)")
	cmd.Flags().Bool("cascade", false, "Also remove the command from launch points using it")
	addOutputFlags(cmd)
	return cmd
}

func (c *PatternCommand) newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Version the current pattern and export a toolkit",
		Long: `Version the current pattern and export it as a toolkit.

Without --version the next version follows the changes made since the last build:
breaking changes bump the minor version, other changes the patch version.

Examples:
  automate pattern build
  automate pattern build --version 1.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			instruction, _ := cmd.Flags().GetString("version")
			result, err := services.Authoring.Build(instruction)
			if err != nil {
				return err
			}
			return printer.PrintPack(result)
		},
	}
	cmd.Flags().String("version", "", "Explicit version of the toolkit, or 'auto'")
	addOutputFlags(cmd)
	return cmd
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetBool(name)
	return &value
}
