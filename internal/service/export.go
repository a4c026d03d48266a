package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultExportFilename = "exported.txt"
	defaultExportDir      = "exports"
)

var ErrInvalidFilename = errors.New("invalid export filename")

// ExportService writes posted text into a single export directory.
type ExportService struct {
	dir string
}

func NewExportService(dir string) *ExportService {
	if strings.TrimSpace(dir) == "" {
		dir = defaultExportDir
	}
	return &ExportService{dir: dir}
}

var _ Exporter = (*ExportService)(nil)

// Export overwrites <dir>/<filename> with content and returns the written path.
// A blank filename means DefaultExportFilename.
func (s *ExportService) Export(filename, content string) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %q: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write export %q: %w", path, err)
	}
	return path, nil
}

func cleanFilename(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return DefaultExportFilename, nil
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}
