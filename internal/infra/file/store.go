// Package file persists the question bank, score ledger, and permission map
// as three independent JSON documents with whole-file rewrite semantics.
// Each store serializes its writes behind a mutex so concurrent mutations
// cannot lose updates; cross-process coordination is out of scope.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// loadDocument reads path into v. A missing file leaves v untouched and
// creates the document with initial content so later rewrites start from a
// well-formed file.
func loadDocument(path string, v any, initial string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return os.WriteFile(path, []byte(initial), 0o644)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// saveDocument rewrites the whole document. Indented output keeps the files
// hand-editable, matching the original documents.
func saveDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
