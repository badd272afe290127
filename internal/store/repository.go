package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Migration upgrades a document body from one schema version to the next.
type Migration func(body []byte) ([]byte, error)

// Repository loads and saves one collection of type T.
type Repository[T any] struct {
	backend    Backend
	name       string
	migrations map[int]Migration
}

// NewRepository binds collection name on backend. Version 0 documents, the
// bare JSON written before envelopes existed, upgrade unchanged: their
// records already match the version 1 layout.
func NewRepository[T any](backend Backend, name string) *Repository[T] {
	return &Repository[T]{
		backend: backend,
		name:    name,
		migrations: map[int]Migration{
			0: func(body []byte) ([]byte, error) { return body, nil },
		},
	}
}

// WithMigration registers fn to upgrade documents stored at version from.
func (r *Repository[T]) WithMigration(from int, fn Migration) *Repository[T] {
	r.migrations[from] = fn
	return r
}

func (r *Repository[T]) Name() string { return r.name }

// Load returns the stored collection. A document that was never written
// yields the zero value and found=false without error.
func (r *Repository[T]) Load(ctx context.Context) (T, bool, error) {
	var out T
	doc, err := r.backend.Read(ctx, r.name)
	if errors.Is(err, ErrNotExist) {
		return out, false, nil
	}
	if err != nil {
		kind := KindIO
		if errors.Is(err, ErrCorrupt) {
			kind = KindDecode
		}
		return out, false, &Error{Op: "load", Name: r.name, Kind: kind, Err: err}
	}
	if doc.Version > CurrentSchemaVersion {
		return out, false, &Error{Op: "load", Name: r.name, Kind: KindVersion,
			Err: fmt.Errorf("schema version %d is newer than supported version %d", doc.Version, CurrentSchemaVersion)}
	}
	body := doc.Body
	for v := doc.Version; v < CurrentSchemaVersion; v++ {
		fn, ok := r.migrations[v]
		if !ok {
			return out, false, &Error{Op: "load", Name: r.name, Kind: KindVersion,
				Err: fmt.Errorf("no migration from schema version %d", v)}
		}
		body, err = fn(body)
		if err != nil {
			return out, false, &Error{Op: "load", Name: r.name, Kind: KindDecode,
				Err: fmt.Errorf("migrate from schema version %d: %w", v, err)}
		}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, false, &Error{Op: "load", Name: r.name, Kind: KindDecode, Err: err}
	}
	return out, true, nil
}

// Save overwrites the stored collection with v.
func (r *Repository[T]) Save(ctx context.Context, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return &Error{Op: "save", Name: r.name, Kind: KindEncode, Err: err}
	}
	if err := r.backend.Write(ctx, r.name, Document{Version: CurrentSchemaVersion, Body: body}); err != nil {
		return &Error{Op: "save", Name: r.name, Kind: KindIO, Err: err}
	}
	return nil
}
