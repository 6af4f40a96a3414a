// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package entity provides generic keyed access to stored entities: key
// resolution, relation loading, and the dual-fetch mutation pattern every
// service in this codebase is built on.
package entity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/store"
)

// Entity is the capability every stored type implements: a single key column
// plus explicit persisted-state tracking. Key-based equality between two
// instances compares only the key, never the payload.
type Entity[K comparable] interface {
	Key() K
	Persisted() bool
	MarkPersisted()
}

// Tracked records whether an instance is backed by a stored row. Embed it in
// entity structs; Access marks instances persisted on fetch and insert.
// Freshly constructed entities are not persisted until inserted.
type Tracked struct {
	persisted bool
}

// Persisted reports whether this instance is backed by a stored row.
func (t *Tracked) Persisted() bool { return t.persisted }

// MarkPersisted records that this instance is backed by a stored row.
func (t *Tracked) MarkPersisted() { t.persisted = true }

// KeyEqual reports whether two entity instances refer to the same stored row.
// Only keys are compared, so copies from different fetches are equal.
func KeyEqual[K comparable, E Entity[K]](a, b E) bool {
	return a.Key() == b.Key()
}

// Field describes one stored column of an entity. Exactly one field per
// descriptor must be marked as the key.
type Field struct {
	Column string
	Key    bool
}

// Relation is a named, eagerly loadable relation of an entity. Load populates
// the in-memory set from the store. Save, when non-nil, mirrors the in-memory
// set back to the store; relations without Save are read-only projections
// (inverse sides of a relation owned elsewhere).
type Relation[E any] struct {
	Name string
	Load func(ctx context.Context, q store.Querier, e E) error
	Save func(ctx context.Context, q store.Querier, e E) error
}

// Descriptor maps an entity type onto its table: column layout, key field,
// row scanning, insert arguments, and named relations. Descriptors are
// registered once at process start via Register or MustRegister.
type Descriptor[E Entity[K], K comparable] struct {
	// Table is the backing table name.
	Table string

	// Fields lists the stored columns in scan/argument order. Exactly one
	// must have Key set.
	Fields []Field

	// ScanRow scans one row (in Fields order) into a new entity instance.
	// Scan errors must be returned unwrapped so absence can be detected.
	ScanRow func(row pgx.Row) (E, error)

	// Args returns the column values of e in Fields order, encoded for SQL.
	Args func(e E) []any

	// KeyArg encodes a key value for use as a SQL argument. Defaults to the
	// identity encoding when nil.
	KeyArg func(k K) any

	// Relations lists the entity's named relations.
	Relations []Relation[E]

	// DefaultRelations names the relations loaded on the fresh copies inside
	// ApplyChange and ApplyChangePair, so preconditions can inspect relation
	// sets. Every relation with a Save hook should be listed here; those are
	// the sets mirrored back on every successful change.
	DefaultRelations []string

	keyIndex  int
	keyColumn string

	selectSQL string // SELECT cols FROM table
	keyedSQL  string // SELECT cols FROM table WHERE key = $1
	insertSQL string
	updateSQL string // key is $1, remaining fields follow
	deleteSQL string

	relationsByName  map[string]Relation[E]
	defaultRelations []Relation[E]
}

// KeyColumn returns the name of the descriptor's key column.
func (d *Descriptor[E, K]) KeyColumn() string { return d.keyColumn }

// table registry; duplicate registration is a configuration error.
var (
	registryMu       sync.Mutex
	registeredTables = make(map[string]bool)
)

// Register validates the descriptor, derives its SQL, and records its table
// in the process-wide registry. A descriptor with zero or multiple key-marked
// fields, or a table registered twice, is a configuration error raised here,
// at startup, never at call time.
func Register[E Entity[K], K comparable](d *Descriptor[E, K]) (*Descriptor[E, K], error) {
	if d == nil {
		return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").Errorf("descriptor is required")
	}
	if d.Table == "" {
		return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").Errorf("table name is required")
	}
	if d.ScanRow == nil || d.Args == nil {
		return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
			With("table", d.Table).
			Errorf("ScanRow and Args are required")
	}

	keyCount := 0
	for i, f := range d.Fields {
		if f.Column == "" {
			return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
				With("table", d.Table).
				Errorf("field %d has no column name", i)
		}
		if f.Key {
			keyCount++
			d.keyIndex = i
			d.keyColumn = f.Column
		}
	}
	if keyCount != 1 {
		return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
			With("table", d.Table).
			With("key_fields", keyCount).
			Errorf("descriptor must mark exactly one key field")
	}

	d.relationsByName = make(map[string]Relation[E], len(d.Relations))
	for _, rel := range d.Relations {
		if rel.Name == "" || rel.Load == nil {
			return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
				With("table", d.Table).
				Errorf("relations require a name and a loader")
		}
		if _, dup := d.relationsByName[rel.Name]; dup {
			return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
				With("table", d.Table).
				With("relation", rel.Name).
				Errorf("duplicate relation name")
		}
		d.relationsByName[rel.Name] = rel
	}
	d.defaultRelations = make([]Relation[E], 0, len(d.DefaultRelations))
	for _, name := range d.DefaultRelations {
		rel, ok := d.relationsByName[name]
		if !ok {
			return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
				With("table", d.Table).
				With("relation", name).
				Errorf("default relation is not declared")
		}
		d.defaultRelations = append(d.defaultRelations, rel)
	}

	if d.KeyArg == nil {
		d.KeyArg = func(k K) any { return k }
	}

	d.buildSQL()

	registryMu.Lock()
	defer registryMu.Unlock()
	if registeredTables[d.Table] {
		return nil, oops.Code("ENTITY_DESCRIPTOR_INVALID").
			With("table", d.Table).
			Errorf("table is already registered")
	}
	registeredTables[d.Table] = true

	return d, nil
}

// MustRegister is Register for package-level descriptor variables; it panics
// on configuration errors so misconfigured entities fail at process start.
func MustRegister[E Entity[K], K comparable](d *Descriptor[E, K]) *Descriptor[E, K] {
	registered, err := Register(d)
	if err != nil {
		panic(err)
	}
	return registered
}

func (d *Descriptor[E, K]) buildSQL() {
	columns := make([]string, len(d.Fields))
	placeholders := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		columns[i] = f.Column
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	d.selectSQL = "SELECT " + strings.Join(columns, ", ") + " FROM " + d.Table
	d.keyedSQL = d.selectSQL + " WHERE " + d.keyColumn + " = $1"
	d.insertSQL = "INSERT INTO " + d.Table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.Join(placeholders, ", ") + ")"
	d.deleteSQL = "DELETE FROM " + d.Table + " WHERE " + d.keyColumn + " = $1"

	assignments := make([]string, 0, len(d.Fields)-1)
	n := 2
	for i, f := range d.Fields {
		if i == d.keyIndex {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = $%d", f.Column, n))
		n++
	}
	d.updateSQL = "UPDATE " + d.Table + " SET " + strings.Join(assignments, ", ") +
		" WHERE " + d.keyColumn + " = $1"
}

// updateArgs reorders the field values for updateSQL: key first, then the
// remaining fields in declaration order.
func (d *Descriptor[E, K]) updateArgs(e E) []any {
	vals := d.Args(e)
	out := make([]any, 0, len(vals))
	out = append(out, vals[d.keyIndex])
	for i, v := range vals {
		if i != d.keyIndex {
			out = append(out, v)
		}
	}
	return out
}
