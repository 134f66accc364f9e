package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n1rna/automate/internal/application"
	"github.com/n1rna/automate/internal/config"
	"github.com/n1rna/automate/internal/output"
)

// Services are the application services shared by all commands
type Services struct {
	Config    *config.Config
	Authoring *application.AuthoringService
	Runtime   *application.RuntimeService
}

type servicesKey struct{}

// WithServices returns a new context with the application services
func WithServices(ctx context.Context, services *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, services)
}

// GetServices retrieves the application services from the context
func GetServices(ctx context.Context) *Services {
	if services, ok := ctx.Value(servicesKey{}).(*Services); ok {
		return services
	}
	return nil
}

// RequireServices retrieves the application services and returns an error if not found
func RequireServices(ctx context.Context) (*Services, error) {
	services := GetServices(ctx)
	if services == nil {
		return nil, fmt.Errorf("services not initialized")
	}
	return services, nil
}

// addOutputFlags registers --format and --quiet
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress non-error output")
}

// newPrinter builds a printer from the output flags, writing to the command's output
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format := output.FormatTable
	if flag := cmd.Flags().Lookup("format"); flag != nil {
		parsed, err := output.ParseFormat(flag.Value.String())
		if err != nil {
			return nil, err
		}
		format = parsed
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	return output.NewPrinterWithWriter(cmd.OutOrStdout(), format, quiet), nil
}

// setup resolves both the services and a printer for a command
func setup(cmd *cobra.Command) (*Services, *output.Printer, error) {
	services, err := RequireServices(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	printer, err := newPrinter(cmd)
	if err != nil {
		return nil, nil, err
	}
	return services, printer, nil
}

// parseAssignments parses name=value arguments
func parseAssignments(args []string) (map[string]string, error) {
	assignments := make(map[string]string, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid assignment: %s (use name=value format)", arg)
		}
		assignments[strings.TrimSpace(parts[0])] = parts[1]
	}
	return assignments, nil
}

// splitList splits a comma separated flag value, dropping blanks
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
