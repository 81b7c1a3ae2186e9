package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemOptions configures a run against the real filesystem.
type FilesystemOptions struct {
	Options
	// BaseDir is the directory patch paths are resolved under. Empty
	// means the current working directory.
	BaseDir string
}

// ApplyFilesystem applies a parsed document to the files under the base
// directory, writing each result to a numbered sibling of its original.
func ApplyFilesystem(ctx context.Context, doc *Document, opts FilesystemOptions) ([]Outcome, Tally, error) {
	ws, err := newFilesystemWorkspace(opts.BaseDir)
	if err != nil {
		return nil, Tally{}, err
	}
	return apply(ctx, doc, ws, opts.Options)
}

// ApplyFilesystemPatch parses patchBody and applies it in one call.
func ApplyFilesystemPatch(ctx context.Context, patchBody string, opts FilesystemOptions) ([]Outcome, Tally, error) {
	doc, err := Parse(patchBody)
	if err != nil {
		return nil, Tally{}, err
	}
	return ApplyFilesystem(ctx, doc, opts)
}

type filesystemWorkspace struct {
	// baseDir is the absolute root every patch path resolves under.
	baseDir string
	// display is the base directory as the caller gave it, used when
	// naming files in outcomes.
	display string
}

func newFilesystemWorkspace(baseDir string) (*filesystemWorkspace, error) {
	trimmed := strings.TrimSpace(baseDir)
	if trimmed == "" {
		trimmed = "."
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", trimmed, err)
	}
	return &filesystemWorkspace{baseDir: abs, display: trimmed}, nil
}

func (ws *filesystemWorkspace) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("patch path must not be empty")
	}

	abs := filepath.Join(ws.baseDir, path)
	if abs != ws.baseDir && !strings.HasPrefix(abs, ws.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("patch path %s escapes the base directory", path)
	}
	return abs, nil
}

func (ws *filesystemWorkspace) Load(path string) (string, bool, error) {
	abs, err := ws.resolve(path)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("%s is a directory, not a file", ws.Display(path))
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", ws.Display(path), err)
		}
		return string(content), true, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("failed to stat %s: %w", ws.Display(path), err)
	}
}

func (ws *filesystemWorkspace) Exists(path string) bool {
	abs, err := ws.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

func (ws *filesystemWorkspace) Write(path, content string) error {
	abs, err := ws.resolve(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		// A failed write must not leave a partial output behind.
		os.Remove(abs)
		return fmt.Errorf("failed to write %s: %w", ws.Display(path), err)
	}
	return nil
}

func (ws *filesystemWorkspace) Display(path string) string {
	return filepath.Join(ws.display, path)
}
