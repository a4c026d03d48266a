// Package prompts holds the static table that turns a content category into a prompt.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Content categories with a dedicated template.
const (
	Architecture = "architecture"
	Database     = "database"
	Code         = "code"
	Test         = "test"
)

// Placeholder is replaced by the system type in every template.
const Placeholder = "{{system}}"

//go:embed templates.yaml
var defaultTemplates []byte

var ErrIncompleteTable = errors.New("prompt table incomplete")

// Table maps content categories to prompt templates.
type Table struct {
	System    string            `yaml:"system"`
	Fallback  string            `yaml:"fallback"`
	Templates map[string]string `yaml:"templates"`
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Parse(defaultTemplates)
}

// Parse decodes a YAML table and checks every category is present.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode prompt table: %w", err)
	}
	if strings.TrimSpace(t.System) == "" {
		return nil, fmt.Errorf("%w: missing system instruction", ErrIncompleteTable)
	}
	if strings.TrimSpace(t.Fallback) == "" {
		return nil, fmt.Errorf("%w: missing fallback template", ErrIncompleteTable)
	}
	for _, ct := range []string{Architecture, Database, Code, Test} {
		if strings.TrimSpace(t.Templates[ct]) == "" {
			return nil, fmt.Errorf("%w: missing %q template", ErrIncompleteTable, ct)
		}
	}
	return &t, nil
}

// Compose builds the prompt for contentType. Unknown categories use the fallback.
func (t *Table) Compose(systemType, contentType string) string {
	tmpl, ok := t.Templates[contentType]
	if !ok {
		tmpl = t.Fallback
	}
	return strings.ReplaceAll(tmpl, Placeholder, systemType)
}
