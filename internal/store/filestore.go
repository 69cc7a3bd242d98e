package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore reads and writes the whole document as one pretty-printed JSON
// file. Every Load parses the file from scratch and every Save rewrites it
// in full; there is no cached in-memory copy between requests.
type FileStore struct {
	path string
}

// NewFileStore creates a store over the given file path. The file does not
// need to exist yet; the first Load seeds it.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document file. A missing file is not an error: the default
// seed document is written and returned. A present file is parsed, run
// through the repair pass, and persisted again unconditionally, so the file
// on disk is always in repaired shape after a Load. A file that fails to
// parse is a hard error for the caller.
func (s *FileStore) Load(ctx context.Context) (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc := NewDocument()
		if err := s.Save(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse document file %s: %w", s.path, err)
	}

	doc.Repair()
	if err := s.Save(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save serializes the document and replaces the file via a temp file and
// rename, so readers never observe a partially written document.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".document-*.json")
	if err != nil {
		return fmt.Errorf("create temp document file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp document file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp document file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document file: %w", err)
	}
	return nil
}

// Encode serializes the document the way it is persisted: two-space
// indentation, HTML escaping off so chat text and descriptions survive
// round-trips byte for byte.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
