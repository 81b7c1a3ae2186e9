package patch

import "fmt"

// ContextMismatch records a context line whose text disagreed with the
// file content it was checked against. Application proceeds with the
// patch's intended content; the mismatch is surfaced as a warning.
type ContextMismatch struct {
	Path   string
	Header string
	// Line is the 1-based line number in the file as patched so far.
	Line     int
	Expected string
	Actual   string
}

func (m ContextMismatch) String() string {
	s := fmt.Sprintf("context mismatch at line %d: expected %q, found %q", m.Line, m.Expected, m.Actual)
	if m.Header != "" {
		s = m.Header + ": " + s
	}
	if m.Path != "" {
		s = m.Path + ": " + s
	}
	return s
}

// OutOfBoundsError reports a hunk whose addressing falls outside the
// current file content. It is fatal for the file being patched.
type OutOfBoundsError struct {
	Path   string
	Header string
	// Index is the zero-based application index after offset correction.
	Index    int
	OldCount int
	FileLen  int
}

func (e *OutOfBoundsError) Error() string {
	var reason string
	switch {
	case e.Index < 0:
		reason = fmt.Sprintf("start index %d is negative", e.Index)
	case e.Index > e.FileLen:
		reason = fmt.Sprintf("start index %d is beyond the end of the file (file has %d lines)", e.Index, e.FileLen)
	default:
		reason = fmt.Sprintf("hunk removes %d lines at index %d but the file has only %d lines", e.OldCount, e.Index, e.FileLen)
	}

	s := "hunk cannot be applied: " + reason
	if e.Header != "" {
		s = fmt.Sprintf("hunk %s cannot be applied: %s", e.Header, reason)
	}
	if e.Path != "" {
		s = e.Path + ": " + s
	}
	return s
}

// HunkResult is the outcome of applying one hunk.
type HunkResult struct {
	// Lines is the updated line sequence.
	Lines []string
	// Offset is the cumulative line-count correction to carry into the
	// next hunk of the same file.
	Offset int
	// Index is the zero-based position the hunk was spliced in at.
	Index int
	// Replaced and Inserted are the before and after slices of the
	// spliced region, exposed for diagnostics.
	Replaced []string
	Inserted []string
	// Mismatches lists context lines that disagreed with the file.
	Mismatches []ContextMismatch
	// TouchedTail reports whether the splice reached the end of the
	// file, which re-terminates a previously unterminated final line.
	TouchedTail bool
}

// ApplyHunk splices one hunk into lines at the position implied by its
// old start and the running offset carried from earlier hunks of the same
// file. Context disagreements are recorded, never fatal; the patch's
// intended content wins. The input slice is not modified.
func ApplyHunk(lines []string, hunk Hunk, offset int) (HunkResult, error) {
	oldLines, newLines := 0, 0
	for _, line := range hunk.Lines {
		switch line.Kind {
		case LineContext:
			oldLines++
			newLines++
		case LineDeleted:
			oldLines++
		case LineAdded:
			newLines++
		}
	}
	if oldLines != hunk.OldCount || newLines != hunk.NewCount {
		return HunkResult{}, fmt.Errorf(
			"hunk %s is inconsistent: body has %d old and %d new lines, header declares %d and %d",
			hunk.Header, oldLines, newLines, hunk.OldCount, hunk.NewCount)
	}

	index := offset
	if hunk.OldStart > 0 {
		index = hunk.OldStart - 1 + offset
	}

	if index < 0 || index > len(lines) || index+hunk.OldCount > len(lines) {
		return HunkResult{}, &OutOfBoundsError{
			Header:   hunk.Header,
			Index:    index,
			OldCount: hunk.OldCount,
			FileLen:  len(lines),
		}
	}

	var (
		replacement []string
		mismatches  []ContextMismatch
		cursor      = index
	)
	for _, line := range hunk.Lines {
		switch line.Kind {
		case LineContext:
			if actual := lines[cursor]; actual != line.Text {
				mismatches = append(mismatches, ContextMismatch{
					Header:   hunk.Header,
					Line:     cursor + 1,
					Expected: line.Text,
					Actual:   actual,
				})
			}
			replacement = append(replacement, line.Text)
			cursor++
		case LineDeleted:
			cursor++
		case LineAdded:
			replacement = append(replacement, line.Text)
		}
	}

	replaced := append([]string(nil), lines[index:index+hunk.OldCount]...)

	return HunkResult{
		Lines:       splice(lines, index, hunk.OldCount, replacement),
		Offset:      offset + hunk.NewCount - hunk.OldCount,
		Index:       index,
		Replaced:    replaced,
		Inserted:    replacement,
		Mismatches:  mismatches,
		TouchedTail: index+hunk.OldCount >= len(lines),
	}, nil
}

// splice replaces deleteCount entries of target starting at index with the
// replacement block, leaving target itself untouched.
func splice(target []string, index, deleteCount int, replacement []string) []string {
	if deleteCount == 0 && len(replacement) == 0 {
		return target
	}

	result := make([]string, 0, len(target)-deleteCount+len(replacement))
	result = append(result, target[:index]...)
	result = append(result, replacement...)
	result = append(result, target[index+deleteCount:]...)
	return result
}
