package vault

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel lines delimiting the user-owned region of a note.
const (
	CustomStart = "%% CUSTOM-START %%"
	CustomEnd   = "%% CUSTOM-END %%"
)

// ErrNoCustomRegion means a text has no well-formed sentinel pair.
var ErrNoCustomRegion = errors.New("no custom region")

// Document splits a note around its custom region.
type Document struct {
	Preamble  string
	Custom    string
	Postamble string
}

// CustomBlock renders the sentinel pair around custom.
func CustomBlock(custom string) string {
	return CustomStart + "\n" + custom + "\n" + CustomEnd
}

// Render reassembles the note.
func (d Document) Render() string {
	return d.Preamble + CustomBlock(d.Custom) + d.Postamble
}

// lineAt reports whether a sentinel occupies a whole line starting at pos,
// and returns the offset just past the line terminator.
func lineAt(text string, pos int, sentinel string) (int, bool) {
	if pos > 0 && text[pos-1] != '\n' {
		return 0, false
	}
	rest := text[pos+len(sentinel):]
	switch {
	case rest == "":
		return len(text), true
	case strings.HasPrefix(rest, "\r\n"):
		return pos + len(sentinel) + 2, true
	case strings.HasPrefix(rest, "\n"):
		return pos + len(sentinel) + 1, true
	}
	return 0, false
}

func findLine(text string, from int, sentinel string) (start, next int, ok bool) {
	for from <= len(text) {
		i := strings.Index(text[from:], sentinel)
		if i < 0 {
			return 0, 0, false
		}
		start = from + i
		if next, ok = lineAt(text, start, sentinel); ok {
			return start, next, true
		}
		from = start + 1
	}
	return 0, 0, false
}

// ParseDocument locates the first start sentinel line and the first end
// sentinel line after it. The custom region is the text between them minus
// the single line break (LF or CRLF) that precedes the end line.
func ParseDocument(text string) (Document, error) {
	start, bodyStart, ok := findLine(text, 0, CustomStart)
	if !ok || bodyStart == len(text) && !strings.HasSuffix(text, "\n") {
		return Document{}, ErrNoCustomRegion
	}
	end, _, ok := findLine(text, bodyStart, CustomEnd)
	if !ok {
		return Document{}, ErrNoCustomRegion
	}

	custom := text[bodyStart:end]
	if strings.HasSuffix(custom, "\r\n") {
		custom = strings.TrimSuffix(custom, "\r\n")
	} else {
		custom = strings.TrimSuffix(custom, "\n")
	}
	return Document{
		Preamble:  text[:start],
		Custom:    custom,
		Postamble: text[end+len(CustomEnd):],
	}, nil
}

// Merge carries the custom region of existing into fresh. With no existing
// note, or one whose sentinels were damaged, fresh is returned unchanged.
// A fresh note without a custom region is a rendering bug and an error.
func Merge(existing []byte, fresh string) (string, error) {
	doc, err := ParseDocument(fresh)
	if err != nil {
		return "", fmt.Errorf("rendered note: %w", err)
	}
	if existing == nil {
		return fresh, nil
	}
	prior, err := ParseDocument(string(existing))
	if err != nil {
		return fresh, nil
	}
	doc.Custom = prior.Custom
	return doc.Render(), nil
}
