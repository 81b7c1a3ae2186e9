package patch

import (
	"runtime"
	"strings"
)

// LineEnding identifies the terminator used between lines of a text file.
type LineEnding int

const (
	// CRLF is the Windows-style "\r\n" terminator.
	CRLF LineEnding = iota
	// LF is the Unix-style "\n" terminator.
	LF
	// CR is the classic Mac "\r" terminator.
	CR
)

// Sequence returns the literal byte sequence of the ending.
func (e LineEnding) Sequence() string {
	switch e {
	case LF:
		return "\n"
	case CR:
		return "\r"
	default:
		return "\r\n"
	}
}

// String names the ending the way status output reports it.
func (e LineEnding) String() string {
	switch e {
	case LF:
		return "LF"
	case CR:
		return "CR"
	default:
		return "CRLF"
	}
}

// Style captures how a file terminates its lines so rewritten content can
// match the original byte for byte.
type Style struct {
	// Ending is the dominant line terminator of the file.
	Ending LineEnding
	// NoFinalNewline records that the last line carried no terminator.
	NoFinalNewline bool
}

// DetectStyle inspects content and reports the dominant line ending along
// with whether the final line is unterminated. Ties favour CRLF over LF
// over CR; empty content falls back to the platform default.
func DetectStyle(content string) Style {
	if content == "" {
		return Style{Ending: platformEnding()}
	}

	crlf := strings.Count(content, "\r\n")
	lf := strings.Count(content, "\n") - crlf
	cr := strings.Count(content, "\r") - crlf

	var ending LineEnding
	switch {
	case crlf >= lf && crlf >= cr:
		ending = CRLF
	case lf >= cr:
		ending = LF
	default:
		ending = CR
	}

	return Style{
		Ending:         ending,
		NoFinalNewline: !strings.HasSuffix(content, "\n") && !strings.HasSuffix(content, "\r"),
	}
}

// SplitLines breaks content into logical lines regardless of which line
// endings it mixes. A trailing terminator does not produce an empty final
// line, and empty content yields no lines at all.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Render joins lines using the style's terminator. The final line is left
// unterminated only when the style says so; no lines render as the empty
// string.
func (s Style) Render(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	sep := s.Ending.Sequence()
	joined := strings.Join(lines, sep)
	if s.NoFinalNewline {
		return joined
	}
	return joined + sep
}

func platformEnding() LineEnding {
	if runtime.GOOS == "windows" {
		return CRLF
	}
	return LF
}
