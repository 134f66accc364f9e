// Package output provides formatted terminal output for patterns, toolkits and drafts.
// This centralizes all printing and formatting logic away from command modules.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/execution"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/persist"
	"github.com/n1rna/automate/internal/storage"
	"github.com/n1rna/automate/internal/toolkit"
)

// Format represents different output formats
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", s)
	}
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// Printer handles formatted output to the terminal
type Printer struct {
	writer io.Writer
	format Format
	quiet  bool
}

// NewPrinter creates a new printer with the specified format
func NewPrinter(format Format, quiet bool) *Printer {
	return &Printer{
		writer: os.Stdout,
		format: format,
		quiet:  quiet,
	}
}

// NewPrinterWithWriter creates a new printer with a custom writer
func NewPrinterWithWriter(writer io.Writer, format Format, quiet bool) *Printer {
	return &Printer{
		writer: writer,
		format: format,
		quiet:  quiet,
	}
}

// Success prints a success message
func (p *Printer) Success(message string) {
	if !p.quiet {
		fmt.Fprintf(p.writer, "%s %s\n", successColor.Sprint("✓"), message)
	}
}

// Error prints an error message
func (p *Printer) Error(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", errorColor.Sprint("✗"), message)
}

// Warning prints a warning message
func (p *Printer) Warning(message string) {
	if !p.quiet {
		fmt.Fprintf(p.writer, "%s %s\n", warningColor.Sprint("⚠"), message)
	}
}

// Info prints an informational message
func (p *Printer) Info(message string) {
	if !p.quiet {
		fmt.Fprintf(p.writer, "%s %s\n", infoColor.Sprint("ℹ"), message)
	}
}

// Printf writes unformatted text
func (p *Printer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.writer, format, args...)
}

// PrintPattern prints the schema tree of a pattern
func (p *Printer) PrintPattern(def *pattern.PatternDefinition) error {
	switch p.format {
	case FormatTable:
		fmt.Fprintln(p.writer, patternTree(def))
		return nil
	default:
		return p.printEntity(def)
	}
}

// PrintDraft prints the configured items of a draft
func (p *Printer) PrintDraft(d *draft.DraftDefinition) error {
	switch p.format {
	case FormatTable:
		fmt.Fprintf(p.writer, "Draft: %s (toolkit %s %s)\n", d.Name, d.Toolkit.Name(), d.ToolkitVersion())
		fmt.Fprintln(p.writer, draftTree(d.Model))
		return nil
	default:
		return p.printEntity(d)
	}
}

// PrintConfiguration prints the configuration of a draft item
func (p *Printer) PrintConfiguration(item *draft.DraftItem) error {
	config := item.Configuration(false)
	if p.format == FormatYAML {
		return p.printYAML(config)
	}
	return p.printJSON(config)
}

// PrintSummaries prints a list of stored entities
func (p *Printer) PrintSummaries(kind string, summaries []storage.EntitySummary, current string) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(summaries)
	case FormatYAML:
		return p.printYAML(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintf(p.writer, "No %ss found\n", kind)
		return nil
	}

	w := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\tNAME\tVERSION\tID\tUPDATED\n")
	fmt.Fprintf(w, "\t----\t-------\t--\t-------\n")
	for _, summary := range summaries {
		marker := ""
		if summary.ID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			marker,
			summary.Name,
			summary.Version,
			summary.ID,
			summary.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

// PrintValidation prints the problems found in a draft
func (p *Printer) PrintValidation(results []draft.ValidationResult) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(results)
	case FormatYAML:
		return p.printYAML(results)
	}

	if len(results) == 0 {
		p.Success("The draft is valid")
		return nil
	}
	for _, result := range results {
		p.Error(fmt.Sprintf("%s: %s", result.Path, result.Message))
	}
	return nil
}

// PrintPack prints the outcome of building a toolkit
func (p *Printer) PrintPack(result *toolkit.PackResult) error {
	if p.format != FormatTable {
		summary := map[string]interface{}{
			"Toolkit":  result.Toolkit.Name(),
			"Previous": result.Version.Previous,
			"Version":  result.Version.Version,
			"Changes":  result.Version.Changes.String(),
			"Location": result.Location,
		}
		if p.format == FormatYAML {
			return p.printYAML(summary)
		}
		return p.printJSON(summary)
	}

	p.Success(fmt.Sprintf("Built toolkit %s %s (was %s)", result.Toolkit.Name(), result.Version.Version, result.Version.Previous))
	for _, entry := range result.Version.Log {
		p.printChange(entry.Change, entry.Description)
	}
	p.Info(fmt.Sprintf("Installer written to %s", result.Location))
	return nil
}

// PrintMigration prints the log of a draft upgrade
func (p *Printer) PrintMigration(result *draft.DraftUpgradeResult) error {
	if p.format != FormatTable {
		entries := make([]map[string]string, 0, len(result.Log))
		for _, entry := range result.Log {
			entries = append(entries, map[string]string{"Change": entry.Change.String(), "Message": entry.Message})
		}
		summary := map[string]interface{}{
			"From":    result.FromVersion,
			"To":      result.ToVersion,
			"Success": result.IsSuccess(),
			"Log":     entries,
		}
		if p.format == FormatYAML {
			return p.printYAML(summary)
		}
		return p.printJSON(summary)
	}

	if !result.IsSuccess() {
		p.Error(result.Failure())
		return nil
	}
	if result.FromVersion == result.ToVersion {
		p.Info(fmt.Sprintf("The draft is already on toolkit version %s", result.ToVersion))
		return nil
	}
	p.Success(fmt.Sprintf("Upgraded draft from %s to %s", result.FromVersion, result.ToVersion))
	for _, entry := range result.Log {
		p.printChange(entry.Change, entry.Message)
	}
	return nil
}

// PrintExecution prints the outcome of running an automation
func (p *Printer) PrintExecution(result *execution.Result) error {
	if p.format != FormatTable {
		commands := make([]map[string]interface{}, 0, len(result.Commands))
		for _, cmd := range result.Commands {
			entry := map[string]interface{}{
				"Command": cmd.CommandName,
				"Item":    cmd.ItemPath,
				"File":    cmd.FilePath,
				"Skipped": cmd.Skipped,
				"Output":  cmd.Output,
			}
			if cmd.Err != nil {
				entry["Error"] = cmd.Err.Error()
			}
			commands = append(commands, entry)
		}
		if p.format == FormatYAML {
			return p.printYAML(commands)
		}
		return p.printJSON(commands)
	}

	for _, cmd := range result.Commands {
		switch {
		case cmd.Err != nil:
			p.Error(fmt.Sprintf("%s on %s: %v", cmd.CommandName, cmd.ItemPath, cmd.Err))
		case cmd.Skipped:
			p.Warning(fmt.Sprintf("%s on %s: %s already exists", cmd.CommandName, cmd.ItemPath, cmd.FilePath))
		case cmd.FilePath != "":
			p.Success(fmt.Sprintf("%s on %s: wrote %s", cmd.CommandName, cmd.ItemPath, cmd.FilePath))
		default:
			p.Success(fmt.Sprintf("%s on %s", cmd.CommandName, cmd.ItemPath))
			if out := strings.TrimSpace(cmd.Output); out != "" {
				fmt.Fprintln(p.writer, out)
			}
		}
	}
	return nil
}

func (p *Printer) printChange(change pattern.VersionChange, message string) {
	if change == pattern.Breaking {
		p.Warning(fmt.Sprintf("%s: %s", change, message))
		return
	}
	p.Info(fmt.Sprintf("%s: %s", change, message))
}

// printEntity prints a persisted entity as JSON or YAML
func (p *Printer) printEntity(entity persist.Persistable) error {
	var (
		data []byte
		err  error
	)
	switch p.format {
	case FormatJSON:
		data, err = persist.Marshal(entity)
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = persist.MarshalYAML(entity)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
	if err != nil {
		return err
	}
	_, err = p.writer.Write(data)
	return err
}

// printJSON prints any object as JSON
func (p *Printer) printJSON(obj interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(obj)
}

func (p *Printer) printYAML(obj interface{}) error {
	encoder := yaml.NewEncoder(p.writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(obj)
}
