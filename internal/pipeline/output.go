package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/outline"
)

// WriteJSON encodes v with four-space indentation, leaving non-ASCII text
// and HTML-significant characters unescaped.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteResult writes res in the outline output format.
func WriteResult(w io.Writer, res outline.Result) error {
	if res.Outline == nil {
		res.Outline = []outline.Entry{}
	}
	return WriteJSON(w, res)
}

// writeResultFile writes res to path through a temp file in the same
// directory, so readers never see a partial file.
func writeResultFile(path string, res outline.Result) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".outline-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteResult(tmp, res); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
