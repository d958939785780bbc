// Package export writes scraped events to disk for direct runs.
//
// All file access goes through afero so tests can run against an in-memory filesystem.
package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"sjsage522/eventscraper/internal/crawler"

	"github.com/spf13/afero"
)

// Writer saves event lists as JSON files
type Writer struct {
	fs afero.Afero
}

// NewWriter creates a writer on top of fs
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: afero.Afero{Fs: fs}}
}

// NewOsWriter creates a writer on the operating system filesystem
func NewOsWriter() *Writer {
	return NewWriter(afero.NewOsFs())
}

// Encode renders events as 4-space indented JSON, leaving non-ASCII and HTML characters as they are
func Encode(events []crawler.EventRecord) ([]byte, error) {
	if events == nil {
		events = []crawler.EventRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteEvents writes events to path, creating missing parent directories
func (w *Writer) WriteEvents(path string, events []crawler.EventRecord) error {
	data, err := Encode(events)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return w.fs.WriteFile(path, data, 0o644)
}
