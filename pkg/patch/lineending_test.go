package patch

import (
	"reflect"
	"runtime"
	"testing"
)

func TestDetectStyleDominantEnding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    LineEnding
	}{
		{name: "crlf", content: "a\r\nb\r\n", want: CRLF},
		{name: "lf", content: "a\nb\n", want: LF},
		{name: "cr", content: "a\rb\r", want: CR},
		{name: "mixed crlf dominant", content: "a\r\nb\r\nc\n", want: CRLF},
		{name: "mixed lf dominant", content: "a\nb\nc\r\n", want: LF},
		{name: "tie crlf beats lf", content: "a\r\nb\n", want: CRLF},
		{name: "tie lf beats cr", content: "a\nb\r", want: LF},
		{name: "no terminator at all", content: "solo", want: CRLF},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := DetectStyle(tc.content).Ending; got != tc.want {
				t.Fatalf("DetectStyle(%q).Ending = %v, want %v", tc.content, got, tc.want)
			}
		})
	}
}

func TestDetectStyleEmptyContentUsesPlatformDefault(t *testing.T) {
	t.Parallel()

	want := LF
	if runtime.GOOS == "windows" {
		want = CRLF
	}
	if got := DetectStyle("").Ending; got != want {
		t.Fatalf("DetectStyle of empty content = %v, want %v", got, want)
	}
	if DetectStyle("").NoFinalNewline {
		t.Fatal("empty content reported an unterminated final line")
	}
}

func TestDetectStyleTracksFinalTerminator(t *testing.T) {
	t.Parallel()

	if DetectStyle("a\nb\n").NoFinalNewline {
		t.Fatal("terminated content reported as unterminated")
	}
	if !DetectStyle("a\nb").NoFinalNewline {
		t.Fatal("unterminated content not detected")
	}
	if DetectStyle("a\rb\r").NoFinalNewline {
		t.Fatal("CR-terminated content reported as unterminated")
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "empty", content: "", want: nil},
		{name: "terminated", content: "a\nb\n", want: []string{"a", "b"}},
		{name: "unterminated", content: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", content: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "cr only", content: "a\rb", want: []string{"a", "b"}},
		{name: "interior blank line", content: "a\n\nb\n", want: []string{"a", "", "b"}},
		{name: "single newline", content: "\n", want: []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := SplitLines(tc.content); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitLines(%q) = %#v, want %#v", tc.content, got, tc.want)
			}
		})
	}
}

func TestStyleRender(t *testing.T) {
	t.Parallel()

	if got := (Style{Ending: CRLF}).Render([]string{"x", "y"}); got != "x\r\ny\r\n" {
		t.Fatalf("CRLF render = %q", got)
	}
	if got := (Style{Ending: LF, NoFinalNewline: true}).Render([]string{"x", "y"}); got != "x\ny" {
		t.Fatalf("unterminated render = %q", got)
	}
	if got := (Style{Ending: CR}).Render(nil); got != "" {
		t.Fatalf("empty render = %q", got)
	}
}

func TestStyleRenderRoundTrip(t *testing.T) {
	t.Parallel()

	contents := []string{
		"a\nb\n",
		"a\r\nb\r\n",
		"a\rb\r",
		"a\nb",
		"one\r\ntwo\r\nthree\r\n",
		"\n",
	}
	for _, content := range contents {
		style := DetectStyle(content)
		if got := style.Render(SplitLines(content)); got != content {
			t.Fatalf("round trip of %q produced %q", content, got)
		}
	}
}
