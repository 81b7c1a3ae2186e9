package patch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Status classifies the outcome of one file patch.
type Status string

const (
	// StatusPatched means the file was patched and the output written
	// (or, in dry-run mode, computed).
	StatusPatched Status = "patched"
	// StatusSkipped means the original file was missing.
	StatusSkipped Status = "skipped"
	// StatusFailed means the file could not be patched.
	StatusFailed Status = "failed"
)

// Outcome is the per-file result handed to the reporter.
type Outcome struct {
	Status Status
	// Path names the target file the way the run should report it.
	Path string
	// OutputPath is the numbered sibling the result was written to, or
	// would be written to in dry-run mode. Only set for StatusPatched.
	OutputPath string
	// Lines is the line count of the patched content.
	Lines int
	// Style is the line-ending style the output was rendered with.
	Style Style
	// Reason explains StatusSkipped.
	Reason string
	// Err explains StatusFailed.
	Err error
	// Mismatches lists context disagreements encountered while patching.
	Mismatches []ContextMismatch
}

// Tally aggregates outcomes across one run.
type Tally struct {
	Processed int
	Patched   int
	Skipped   int
	Errors    int
}

func (t *Tally) record(o Outcome) {
	t.Processed++
	switch o.Status {
	case StatusPatched:
		t.Patched++
	case StatusSkipped:
		t.Skipped++
	default:
		t.Errors++
	}
}

// Options configures a patch run.
type Options struct {
	// DryRun computes outcomes and output paths without writing anything.
	DryRun bool
	// Logger receives context-mismatch warnings and per-hunk diagnostics.
	// Nil disables logging.
	Logger *zap.Logger
}

// DecodeError reports file content that is not valid UTF-8.
type DecodeError struct {
	Path string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: content is not valid UTF-8", e.Path)
}

// workspace abstracts where originals are read from and outputs written
// to, so the engine can drive the filesystem and in-memory copies alike.
type workspace interface {
	// Load returns the content of path and whether the file exists.
	Load(path string) (string, bool, error)
	// Exists reports whether path is already taken.
	Exists(path string) bool
	// Write stores content at path.
	Write(path, content string) error
	// Display renders path the way outcomes should name it.
	Display(path string) string
}

// apply drives every file patch of the document against the workspace.
// One file's failure never stops the remaining files; the context is
// checked between files only.
func apply(ctx context.Context, doc *Document, ws workspace, opts Options) ([]Outcome, Tally, error) {
	if doc == nil {
		return nil, Tally{}, errors.New("document must not be nil")
	}
	if ws == nil {
		return nil, Tally{}, errors.New("workspace must not be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	outcomes := make([]Outcome, 0, len(doc.Files))
	var tally Tally
	for i := range doc.Files {
		if err := ctx.Err(); err != nil {
			return outcomes, tally, err
		}
		outcome := applyFile(&doc.Files[i], ws, opts, logger)
		tally.record(outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, tally, nil
}

func applyFile(fp *FilePatch, ws workspace, opts Options, logger *zap.Logger) Outcome {
	display := ws.Display(fp.Path)

	if len(fp.Errs) > 0 {
		errs := make([]error, 0, len(fp.Errs))
		for _, perr := range fp.Errs {
			errs = append(errs, perr)
		}
		return Outcome{Status: StatusFailed, Path: display, Err: errors.Join(errs...)}
	}

	content, exists, err := ws.Load(fp.Path)
	if err != nil {
		return Outcome{Status: StatusFailed, Path: display, Err: err}
	}
	if !exists {
		return Outcome{Status: StatusSkipped, Path: display, Reason: "original file not found"}
	}
	if !utf8.ValidString(content) {
		return Outcome{Status: StatusFailed, Path: display, Err: &DecodeError{Path: display}}
	}

	style := DetectStyle(content)
	lines := SplitLines(content)

	var (
		offset      int
		touchedTail bool
		mismatches  []ContextMismatch
	)
	for i, hunk := range fp.Hunks {
		res, err := ApplyHunk(lines, hunk, offset)
		if err != nil {
			var oob *OutOfBoundsError
			if errors.As(err, &oob) {
				oob.Path = display
			}
			return Outcome{
				Status:     StatusFailed,
				Path:       display,
				Err:        fmt.Errorf("hunk #%d: %w", i+1, err),
				Mismatches: mismatches,
			}
		}

		for j := range res.Mismatches {
			res.Mismatches[j].Path = display
			m := res.Mismatches[j]
			logger.Warn("context mismatch",
				zap.String("file", display),
				zap.String("hunk", m.Header),
				zap.Int("line", m.Line),
				zap.String("expected", m.Expected),
				zap.String("actual", m.Actual))
		}
		mismatches = append(mismatches, res.Mismatches...)

		logger.Debug("hunk applied",
			zap.String("file", display),
			zap.String("hunk", hunk.Header),
			zap.Int("index", res.Index),
			zap.Int("offset", res.Offset),
			zap.Strings("removed", res.Replaced),
			zap.Strings("inserted", res.Inserted))

		lines = res.Lines
		offset = res.Offset
		touchedTail = touchedTail || res.TouchedTail
	}

	outStyle := style
	if touchedTail || len(lines) == 0 {
		outStyle.NoFinalNewline = false
	}

	outputPath := nextNumberedPath(ws, fp.Path)
	if !opts.DryRun {
		if err := ws.Write(outputPath, outStyle.Render(lines)); err != nil {
			return Outcome{Status: StatusFailed, Path: display, Err: err, Mismatches: mismatches}
		}
	}

	return Outcome{
		Status:     StatusPatched,
		Path:       display,
		OutputPath: ws.Display(outputPath),
		Lines:      len(lines),
		Style:      outStyle,
		Mismatches: mismatches,
	}
}

// nextNumberedPath picks the smallest numbered sibling of path that does
// not exist yet, keeping the extension in place: app.py becomes
// app.001.py, then app.002.py, and so on.
func nextNumberedPath(ws workspace, path string) string {
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) {
		// Dotfiles such as .bashrc carry no extension to preserve.
		ext = ""
	}
	stem := strings.TrimSuffix(path, ext)

	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s.%03d%s", stem, counter, ext)
		if !ws.Exists(candidate) {
			return candidate
		}
	}
}
