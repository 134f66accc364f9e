// Package execution runs the automation of a pattern against the items of a draft.
package execution

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/n1rna/automate/internal/draft"
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/logger"
	"github.com/n1rna/automate/internal/pattern"
)

// Runner starts programs for CLI commands
type Runner interface {
	Run(ctx context.Context, dir, name string, args []string) (string, error)
}

// ProcessRunner runs programs as child processes
type ProcessRunner struct{}

// Run implements Runner
func (ProcessRunner) Run(ctx context.Context, dir, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// CommandResult is the outcome of one command against one draft item
type CommandResult struct {
	CommandID   string
	CommandName string
	Type        pattern.AutomationType
	ItemPath    string
	// FilePath is the rendered file of a code template command
	FilePath string
	// Skipped is set when a one-off command found its file already present
	Skipped bool
	Output  string
	Err     error
}

// Result is the outcome of executing an automation
type Result struct {
	Automation string
	Commands   []CommandResult
}

// IsSuccess reports whether every command succeeded
func (r *Result) IsSuccess() bool {
	return r.Err() == nil
}

// Err combines the errors of all failed commands
func (r *Result) Err() error {
	var err error
	for _, cmd := range r.Commands {
		err = multierr.Append(err, cmd.Err)
	}
	return err
}

// Executor executes automation. Files are written below TargetDir on Fs.
type Executor struct {
	Engine    draft.Transformer
	Runner    Runner
	Fs        afero.Fs
	TargetDir string
}

// NewExecutor creates an executor writing to the OS file system
func NewExecutor(engine draft.Transformer, targetDir string) *Executor {
	return &Executor{
		Engine:    engine,
		Runner:    ProcessRunner{},
		Fs:        afero.NewOsFs(),
		TargetDir: targetDir,
	}
}

// Execute runs the named automation of the item's element against the item. The item and
// everything below it must be valid first.
func (x *Executor) Execute(ctx context.Context, d *draft.DraftDefinition, item *draft.DraftItem, automation string) (*Result, error) {
	if item == nil || !item.IsMaterialised {
		return nil, errs.Validation("the automation '%s' can only run on a configured item", automation)
	}
	if item.IsContainer() {
		return nil, errs.Validation("the automation '%s' must run on an item of the collection '%s'", automation, item.Name())
	}
	auto := item.Schema().FindAutomation(automation)
	if auto == nil {
		return nil, errs.NotFound("the automation '%s' does not exist on '%s'", automation, item.Name())
	}
	if problems := item.Validate(); len(problems) > 0 {
		messages := make([]string, 0, len(problems))
		for _, problem := range problems {
			messages = append(messages, fmt.Sprintf("%s: %s", problem.Path, problem.Message))
		}
		return nil, errs.Validation("the automation '%s' cannot run until these problems are fixed:\n%s",
			auto.Name, strings.Join(messages, "\n"))
	}

	result := &Result{Automation: auto.Name}
	log := logger.With("draft", d.Name, "automation", auto.Name)

	if lp, ok := auto.LaunchPoint(); ok {
		for _, id := range lp.CommandIDs {
			command, err := d.Pattern().FindAutomation(id)
			if err != nil {
				result.Commands = append(result.Commands, CommandResult{CommandID: id, ItemPath: item.ConfigurePath(), Err: err})
				continue
			}
			for _, target := range launchTargets(item, command.Parent()) {
				result.Commands = append(result.Commands, x.executeCommand(ctx, d, target, command))
			}
		}
		log.Infow("executed launch point", "commands", len(result.Commands), "success", result.IsSuccess())
		return result, nil
	}

	result.Commands = append(result.Commands, x.executeCommand(ctx, d, item, auto))
	log.Infow("executed command", "success", result.IsSuccess())
	return result, nil
}

// launchTargets finds the items a command of the given element runs against: the nearest
// ancestor-or-self with that element, or else every configured item of it below the item
func launchTargets(item *draft.DraftItem, element *pattern.Element) []*draft.DraftItem {
	for current := item; current != nil; current = current.Parent() {
		if current.Schema() == element && !current.IsContainer() {
			return []*draft.DraftItem{current}
		}
	}
	var targets []*draft.DraftItem
	_ = item.Walk(func(candidate *draft.DraftItem) error {
		if candidate.Schema() == element && !candidate.IsContainer() {
			targets = append(targets, candidate)
		}
		return nil
	})
	return targets
}

func (x *Executor) executeCommand(ctx context.Context, d *draft.DraftDefinition, item *draft.DraftItem, command *pattern.Automation) CommandResult {
	result := CommandResult{
		CommandID:   command.ID,
		CommandName: command.Name,
		Type:        command.Type(),
		ItemPath:    item.ConfigurePath(),
	}
	switch spec := command.Spec.(type) {
	case *pattern.CodeTemplateCommand:
		result.FilePath, result.Skipped, result.Err = x.renderCodeTemplate(d, item, command, spec)
	case *pattern.CliCommand:
		result.Output, result.Err = x.runCli(ctx, item, command, spec)
	default:
		result.Err = errs.Validation("the automation '%s' cannot be launched", command.Name)
	}
	return result
}

func (x *Executor) renderCodeTemplate(d *draft.DraftDefinition, item *draft.DraftItem, command *pattern.Automation, spec *pattern.CodeTemplateCommand) (string, bool, error) {
	tmpl := command.Parent().FindCodeTemplate(spec.CodeTemplateID)
	if tmpl == nil {
		return "", false, errs.NotFound("the code template of command '%s' does not exist", command.Name)
	}
	file := d.Toolkit.FindCodeTemplateFile(tmpl.ID)
	if file == nil {
		return "", false, errs.NotFound("the toolkit has no content for code template '%s'", tmpl.Name)
	}

	rendered, err := draft.ResolveExpression(x.Engine, fmt.Sprintf("file path of command '%s'", command.Name), spec.FilePath, item)
	if err != nil {
		return "", false, err
	}
	path, err := x.targetPath(rendered)
	if err != nil {
		return "", false, err
	}

	if spec.IsOneOff {
		exists, err := afero.Exists(x.Fs, path)
		if err != nil {
			return path, false, fmt.Errorf("failed to check %s: %w", path, err)
		}
		if exists {
			return path, true, nil
		}
	}

	content, err := draft.ResolveExpression(x.Engine, fmt.Sprintf("code template '%s'", tmpl.Name), string(file.Contents), item)
	if err != nil {
		return path, false, err
	}
	if err := x.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, false, fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(x.Fs, path, []byte(content), 0o644); err != nil {
		return path, false, fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return path, false, nil
}

// targetPath places a rendered relative path below TargetDir, rejecting paths that escape it
func (x *Executor) targetPath(rendered string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(rendered))
	if cleaned == "." || cleaned == "" {
		return "", errs.Validation("the file path '%s' is empty", rendered)
	}
	if filepath.IsAbs(cleaned) {
		return "", errs.Validation("the file path '%s' must be relative", rendered)
	}

	root := filepath.Clean(x.TargetDir)
	full := filepath.Join(root, cleaned)
	if !strings.HasPrefix(full+string(filepath.Separator), root+string(filepath.Separator)) {
		return "", errs.Validation("the file path '%s' is outside of '%s'", rendered, root)
	}
	return full, nil
}

func (x *Executor) runCli(ctx context.Context, item *draft.DraftItem, command *pattern.Automation, spec *pattern.CliCommand) (string, error) {
	rendered, err := draft.ResolveExpression(x.Engine, fmt.Sprintf("arguments of command '%s'", command.Name), spec.Arguments, item)
	if err != nil {
		return "", err
	}
	args, err := shellquote.Split(rendered)
	if err != nil {
		return "", errs.Validation("the arguments of command '%s' are malformed: %s", command.Name, err)
	}

	out, err := x.Runner.Run(ctx, x.TargetDir, spec.ApplicationName, args)
	if err != nil {
		return out, fmt.Errorf("the command '%s' failed: %w", command.Name, err)
	}
	return out, nil
}

// WorkingDir returns the current directory, used as the default target directory
func WorkingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
