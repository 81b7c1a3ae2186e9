package patch

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ApplyMemory applies a parsed document to an in-memory file set keyed by
// slash-separated relative paths. The input map is never modified; the
// returned map holds the originals plus the numbered outputs.
func ApplyMemory(ctx context.Context, doc *Document, files map[string]string, opts Options) (map[string]string, []Outcome, Tally, error) {
	ws := newMemoryWorkspace(files)
	outcomes, tally, err := apply(ctx, doc, ws, opts)
	if err != nil {
		return nil, nil, Tally{}, err
	}
	return ws.files, outcomes, tally, nil
}

// ApplyMemoryPatch parses patchBody and applies it to files in one call.
func ApplyMemoryPatch(ctx context.Context, patchBody string, files map[string]string, opts Options) (map[string]string, []Outcome, Tally, error) {
	doc, err := Parse(patchBody)
	if err != nil {
		return nil, nil, Tally{}, err
	}
	return ApplyMemory(ctx, doc, files, opts)
}

type memoryWorkspace struct {
	files map[string]string
}

func newMemoryWorkspace(files map[string]string) *memoryWorkspace {
	snapshot := make(map[string]string, len(files))
	for name, content := range files {
		snapshot[name] = content
	}
	return &memoryWorkspace{files: snapshot}
}

func (ws *memoryWorkspace) key(p string) (string, error) {
	cleaned := path.Clean(strings.TrimSpace(p))
	if cleaned == "" || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid patch path %q", p)
	}
	return cleaned, nil
}

func (ws *memoryWorkspace) Load(p string) (string, bool, error) {
	name, err := ws.key(p)
	if err != nil {
		return "", false, err
	}
	content, ok := ws.files[name]
	return content, ok, nil
}

func (ws *memoryWorkspace) Exists(p string) bool {
	name, err := ws.key(p)
	if err != nil {
		return false
	}
	_, ok := ws.files[name]
	return ok
}

func (ws *memoryWorkspace) Write(p, content string) error {
	name, err := ws.key(p)
	if err != nil {
		return err
	}
	ws.files[name] = content
	return nil
}

func (ws *memoryWorkspace) Display(p string) string {
	return p
}
