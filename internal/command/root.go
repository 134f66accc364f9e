// Package command implements the automate command line.
package command

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/n1rna/automate/internal/application"
	"github.com/n1rna/automate/internal/config"
	"github.com/n1rna/automate/internal/execution"
	"github.com/n1rna/automate/internal/logger"
	"github.com/n1rna/automate/internal/storage"
	"github.com/n1rna/automate/internal/templating"
)

type rootFlags struct {
	baseDir   string
	targetDir string
	debug     bool
}

// NewRootCommand creates the automate root command with all subcommands. The reported version
// is the runtime version that toolkit compatibility is checked against.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   config.ProductName,
		Short: "automate - author patterns, ship toolkits, scaffold code",
		Long: `automate captures the structure of a kind of software as a pattern with code templates
and automation, ships it as a versioned toolkit, and scaffolds code from drafts configured
against installed toolkits.`,
		Version:           config.RuntimeVersion,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: flags.initServices,
	}

	cmd.PersistentFlags().StringVar(&flags.baseDir, "dir", "",
		"Base directory for automate storage (default: $AUTOMATE_HOME or ~/.automate)")
	cmd.PersistentFlags().StringVar(&flags.targetDir, "target", "",
		"Directory that automation renders files into and runs commands in (default: working directory)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug output")

	cmd.AddGroup(&cobra.Group{
		ID:    "authoring",
		Title: "Authoring Commands:",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    "runtime",
		Title: "Runtime Commands:",
	})

	cmd.AddCommand(
		NewPatternCommand("authoring"),
		NewToolkitCommand("runtime"),
		NewDraftCommand("runtime"),
		NewInfoCommand(),
	)

	cmd.SetVersionTemplate(config.ProductName + " version {{.Version}}\n")
	return cmd
}

func (f *rootFlags) initServices(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(f.baseDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if f.debug || cfg.Debug {
		logger.SetGlobalLevel(logger.DEBUG)
	} else {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger.SetGlobalLevel(level)
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	targetDir := f.targetDir
	if targetDir == "" {
		targetDir = execution.WorkingDir()
	}
	if targetDir, err = filepath.Abs(targetDir); err != nil {
		return fmt.Errorf("invalid target directory: %w", err)
	}
	executor := execution.NewExecutor(templating.NewEngine(), targetDir)

	services := &Services{
		Config:    cfg,
		Authoring: application.NewAuthoringService(store, config.RuntimeVersion),
		Runtime:   application.NewRuntimeService(store, config.RuntimeVersion, executor),
	}
	cmd.SetContext(WithServices(cmd.Context(), services))
	logger.Debug("using %s", cfg.BaseDir)
	return nil
}

// NewInfoCommand shows the runtime metadata
func NewInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show runtime and storage information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, printer, err := setup(cmd)
			if err != nil {
				return err
			}
			meta := services.Config.Metadata()
			printer.Printf("%s %s\n", meta.ProductName, meta.RuntimeVersion)
			printer.Printf("Home:   %s\n", meta.BaseDir)
			printer.Printf("Export: %s\n", meta.ExportDir)
			return nil
		},
	}
	addOutputFlags(cmd)
	return cmd
}
