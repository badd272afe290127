// Package store persists whole collections as versioned documents.
//
// Each collection is one document: it is always read and written in full.
// Backends only move bytes; Repository owns encoding, schema versions and
// error classification.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CurrentSchemaVersion is the document layout written by this build.
const CurrentSchemaVersion = 1

// Collection names.
const (
	Foods         = "foods"
	Meals         = "meals"
	ConsumedMeals = "consumed_meals"
	NutritionData = "nutrition_data"
	Workouts      = "workouts"
)

// Names lists every collection in a stable order.
var Names = []string{Foods, Meals, ConsumedMeals, NutritionData, Workouts}

var (
	// ErrNotExist is returned by a Backend when a document was never written.
	ErrNotExist = errors.New("document does not exist")
	// ErrCorrupt matches errors caused by unreadable document contents.
	ErrCorrupt = errors.New("document is corrupt")
)

// Document is the raw stored form of a collection.
type Document struct {
	Version int
	Body    []byte
}

type Backend interface {
	Read(ctx context.Context, name string) (Document, error)
	Write(ctx context.Context, name string, doc Document) error
	Close() error
}

type Kind int

const (
	KindIO Kind = iota + 1
	KindDecode
	KindEncode
	KindVersion
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	case KindVersion:
		return "version"
	}
	return "unknown"
}

// Error describes a failed load or save of one collection.
type Error struct {
	Op   string
	Name string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Name, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports decode failures as ErrCorrupt.
func (e *Error) Is(target error) bool {
	return target == ErrCorrupt && e.Kind == KindDecode
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the backend named kind rooted at dir.
func Open(ctx context.Context, kind, dir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendJSON:
		return NewJSONFile(dir)
	case BackendSQLite:
		return OpenSQLite(ctx, dir)
	}
	return nil, fmt.Errorf("unknown store backend %q (expected %s or %s)", kind, BackendJSON, BackendSQLite)
}
