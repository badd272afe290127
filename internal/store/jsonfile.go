package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// JSONFile keeps each collection in <dir>/<name>.json.
type JSONFile struct {
	dir string
}

type envelope struct {
	SchemaVersion *int            `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

func NewJSONFile(dir string) (*JSONFile, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONFile{dir: dir}, nil
}

func (j *JSONFile) Path(name string) string {
	return filepath.Join(j.dir, name+".json")
}

func (j *JSONFile) Read(ctx context.Context, name string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	raw, err := os.ReadFile(j.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, ErrNotExist
	}
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", j.Path(name), err)
	}
	return decodeEnvelope(raw)
}

// decodeEnvelope accepts both the versioned envelope and a bare collection,
// which is reported as version 0.
func decodeEnvelope(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("empty file: %w", ErrCorrupt)
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if env.SchemaVersion != nil {
			if len(env.Data) == 0 {
				return Document{}, fmt.Errorf("envelope without data: %w", ErrCorrupt)
			}
			return Document{Version: *env.SchemaVersion, Body: env.Data}, nil
		}
	}
	return Document{Version: 0, Body: trimmed}, nil
}

// Write replaces the file atomically: the document is written to a temp file
// in the same directory, synced, then renamed over the target.
func (j *JSONFile) Write(ctx context.Context, name string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	version := doc.Version
	out, err := json.Marshal(envelope{SchemaVersion: &version, Data: doc.Body})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return writeFileAtomic(j.Path(name), out, 0o600)
}

func (j *JSONFile) Close() error { return nil }

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
