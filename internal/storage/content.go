package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/pattern"
	"github.com/n1rna/automate/internal/toolkit"
)

// codeTemplatePath is where the content of a code template is kept while authoring
func (s *Storage) codeTemplatePath(patternID string, tmpl *pattern.CodeTemplate) string {
	name := tmpl.ID
	if tmpl.OriginalFileExtension != "" {
		name += "." + tmpl.OriginalFileExtension
	}
	return filepath.Join(s.config.CodeTemplatesDir(), patternID, name)
}

// UploadCodeTemplate copies the source file into the content store and returns the
// modification time recorded for the stored copy
func (s *Storage) UploadCodeTemplate(p *pattern.PatternDefinition, tmpl *pattern.CodeTemplate, sourcePath string) (time.Time, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, errs.NotFound("the file '%s' does not exist", sourcePath)
		}
		return time.Time{}, fmt.Errorf("failed to read code template file: %w", err)
	}

	target := s.codeTemplatePath(p.ID, tmpl)
	if err := writeFileAtomic(target, data); err != nil {
		return time.Time{}, fmt.Errorf("failed to store code template %s: %w", tmpl.Name, err)
	}

	modified := s.now().UTC().Truncate(time.Second)
	if err := os.Chtimes(target, modified, modified); err != nil {
		return time.Time{}, fmt.Errorf("failed to stamp code template %s: %w", tmpl.Name, err)
	}
	return modified, nil
}

// DownloadCodeTemplate implements toolkit.ContentProvider
func (s *Storage) DownloadCodeTemplate(p *pattern.PatternDefinition, tmpl *pattern.CodeTemplate) (toolkit.CodeTemplateContent, error) {
	path := s.codeTemplatePath(p.ID, tmpl)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return toolkit.CodeTemplateContent{}, errs.NotFound("the content of code template '%s' was never uploaded", tmpl.Name)
		}
		return toolkit.CodeTemplateContent{}, fmt.Errorf("failed to stat code template: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return toolkit.CodeTemplateContent{}, fmt.Errorf("failed to read code template: %w", err)
	}
	return toolkit.CodeTemplateContent{
		Content:         data,
		LastModifiedUtc: info.ModTime().UTC().Truncate(time.Second),
	}, nil
}

// DeleteCodeTemplateContent removes the stored content of a code template
func (s *Storage) DeleteCodeTemplateContent(p *pattern.PatternDefinition, tmpl *pattern.CodeTemplate) error {
	if err := os.Remove(s.codeTemplatePath(p.ID, tmpl)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove code template content: %w", err)
	}
	return nil
}
