package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineKind tags a hunk body line as context, addition, or deletion.
type LineKind int

const (
	// LineContext lines appear unchanged in both file versions.
	LineContext LineKind = iota
	// LineAdded lines exist only in the new file version.
	LineAdded
	// LineDeleted lines exist only in the old file version.
	LineDeleted
)

// Line is one body line of a hunk with its terminator stripped.
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is one contiguous change region within a file patch. Start values
// are 1-based line numbers in the respective file version; counts may be
// zero for pure insertions or deletions.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	// Header is the raw @@ line, kept for diagnostics.
	Header string
	Lines  []Line
}

// FilePatch groups the hunks that target a single file.
type FilePatch struct {
	// Path names the target file, taken from the +++ line with any
	// leading a/ or b/ prefix stripped.
	Path string
	// OldPath is the pre-image path from the --- line, equally stripped.
	OldPath string
	Hunks   []Hunk
	// Errs holds the parse problems found in this file's section. A file
	// with a non-empty Errs cannot be applied.
	Errs []*ParseError
}

// Document is the parsed form of one unified-diff input.
type Document struct {
	Files []FilePatch
}

// ParseError describes a malformed construct in the diff input.
type ParseError struct {
	// Line is the 1-based line number of the offending input line.
	Line int
	// Construct names the grammar element that failed, such as
	// "hunk header".
	Construct string
	Detail    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Construct, e.Detail)
}

// ParseOptions adjusts how forgiving the parser is.
type ParseOptions struct {
	// ContinueOnError keeps scanning a file section after a malformed
	// construct so that every problem is reported. Without it the first
	// error in a section skips ahead to the next file header; other file
	// sections always parse regardless.
	ContinueOnError bool
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse reads a unified-diff document into its file patches. Problems
// inside a file section are recorded on that section rather than failing
// the whole document; only a hunk appearing before any file header aborts
// parsing outright.
func Parse(input string) (*Document, error) {
	return ParseWithOptions(input, ParseOptions{})
}

// ParseWithOptions is Parse with explicit parser settings.
func ParseWithOptions(input string, opts ParseOptions) (*Document, error) {
	doc := &Document{}
	lines := SplitLines(input)

	var (
		current  *FilePatch
		open     *Hunk
		oldLeft  int
		newLeft  int
		skipping bool
	)

	recordErr := func(lineNo int, construct, detail string) {
		current.Errs = append(current.Errs, &ParseError{Line: lineNo, Construct: construct, Detail: detail})
		open = nil
		if !opts.ContinueOnError {
			skipping = true
		}
	}

	failOpenHunk := func(lineNo int) {
		recordErr(lineNo, "hunk body", fmt.Sprintf(
			"hunk %s ends with %d old and %d new lines unaccounted for",
			open.Header, oldLeft, newLeft))
	}

	closeFile := func(lineNo int) {
		if current == nil {
			return
		}
		if open != nil {
			failOpenHunk(lineNo)
		}
		if len(current.Hunks) == 0 && len(current.Errs) == 0 {
			current.Errs = append(current.Errs, &ParseError{
				Line:      lineNo,
				Construct: "file section",
				Detail:    fmt.Sprintf("no hunks for %s", current.Path),
			})
		}
		doc.Files = append(doc.Files, *current)
		current = nil
		skipping = false
	}

	for i := 0; i < len(lines); i++ {
		raw := lines[i]
		lineNo := i + 1

		if open != nil {
			// The header counts drive body consumption: the hunk is
			// complete exactly when both run out.
			consumed := true
			switch {
			case strings.HasPrefix(raw, "\\"):
				// "\ No newline at end of file" marker; not counted.
			case strings.HasPrefix(raw, " ") && oldLeft > 0 && newLeft > 0:
				open.Lines = append(open.Lines, Line{Kind: LineContext, Text: raw[1:]})
				oldLeft--
				newLeft--
			case strings.HasPrefix(raw, "+") && newLeft > 0:
				open.Lines = append(open.Lines, Line{Kind: LineAdded, Text: raw[1:]})
				newLeft--
			case strings.HasPrefix(raw, "-") && oldLeft > 0:
				open.Lines = append(open.Lines, Line{Kind: LineDeleted, Text: raw[1:]})
				oldLeft--
			default:
				failOpenHunk(lineNo)
				consumed = false
			}
			if consumed {
				if oldLeft == 0 && newLeft == 0 {
					current.Hunks = append(current.Hunks, *open)
					open = nil
				}
				continue
			}
			// The offending line may start the next section; rescan it.
		}

		if strings.HasPrefix(raw, "--- ") {
			closeFile(lineNo)
			if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ") {
				i++
				current = &FilePatch{
					OldPath: headerPath(raw[len("--- "):]),
					Path:    headerPath(lines[i][len("+++ "):]),
				}
			} else {
				p := headerPath(raw[len("--- "):])
				current = &FilePatch{
					OldPath: p,
					Path:    p,
					Errs: []*ParseError{{
						Line:      lineNo,
						Construct: "file header",
						Detail:    fmt.Sprintf("missing +++ line after --- %s", p),
					}},
				}
				skipping = !opts.ContinueOnError
			}
			continue
		}

		if skipping {
			continue
		}

		if strings.HasPrefix(raw, "@@") {
			if current == nil {
				return nil, &ParseError{
					Line:      lineNo,
					Construct: "hunk header",
					Detail:    "hunk appears before any file header",
				}
			}
			match := hunkHeaderRe.FindStringSubmatch(raw)
			if match == nil {
				recordErr(lineNo, "hunk header", fmt.Sprintf("malformed hunk header %q", raw))
				continue
			}
			hunk := Hunk{
				OldStart: headerInt(match[1], 1),
				OldCount: headerInt(match[2], 1),
				NewStart: headerInt(match[3], 1),
				NewCount: headerInt(match[4], 1),
				Header:   raw,
			}
			if hunk.OldStart < 0 || hunk.OldCount < 0 || hunk.NewStart < 0 || hunk.NewCount < 0 {
				recordErr(lineNo, "hunk header", fmt.Sprintf("malformed hunk header %q", raw))
				continue
			}
			if n := len(current.Hunks); n > 0 && current.Hunks[n-1].OldStart >= hunk.OldStart {
				recordErr(lineNo, "hunk header", fmt.Sprintf(
					"hunk %s out of order: old start %d does not ascend past %d",
					hunk.Header, hunk.OldStart, current.Hunks[n-1].OldStart))
				continue
			}
			open = &hunk
			oldLeft = hunk.OldCount
			newLeft = hunk.NewCount
			if oldLeft == 0 && newLeft == 0 {
				current.Hunks = append(current.Hunks, *open)
				open = nil
			}
			continue
		}

		// Everything else between sections is separator noise: blank
		// lines, git's "diff --git" and "index" lines, stray +++ lines.
	}

	closeFile(len(lines))
	return doc, nil
}

// headerInt parses one numeric field of a hunk header, substituting the
// unified-diff default when the field is absent. Values that do not fit
// an int come back negative so the caller can reject the header.
func headerInt(field string, missing int) int {
	if field == "" {
		return missing
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return -1
	}
	return n
}

// headerPath extracts the file path from a --- or +++ header, dropping
// any timestamp after a tab and a single leading a/ or b/ prefix.
func headerPath(field string) string {
	if tab := strings.IndexByte(field, '\t'); tab >= 0 {
		field = field[:tab]
	}
	field = strings.TrimSpace(field)
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(field, prefix) {
			return field[len(prefix):]
		}
	}
	return field
}
