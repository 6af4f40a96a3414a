// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/store"
)

// UnitOfWork produces an independent transactional session per call. Every
// Access operation runs inside exactly one unit of work that is released
// before the operation returns; nothing here holds a session across calls.
type UnitOfWork interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context, q store.Querier) error) error
}

// Access provides generic fetch, insert, mutate, and delete operations for
// one entity type. It is safe for concurrent use; concurrent callers never
// contend on an in-process lock because every operation opens its own unit
// of work.
//
// There is no cross-call optimistic concurrency check: two concurrent
// ApplyChange calls can both pass their precondition against data that was
// fresh at the time and the later write wins.
type Access[E Entity[K], K comparable] struct {
	desc *Descriptor[E, K]
	uow  UnitOfWork
}

// NewAccess creates an Access for a registered descriptor.
func NewAccess[E Entity[K], K comparable](desc *Descriptor[E, K], uow UnitOfWork) (*Access[E, K], error) {
	if desc == nil {
		return nil, oops.Code("ENTITY_ACCESS_INVALID").Errorf("descriptor is required")
	}
	if uow == nil {
		return nil, oops.Code("ENTITY_ACCESS_INVALID").With("table", desc.Table).
			Errorf("unit-of-work factory is required")
	}
	return &Access[E, K]{desc: desc, uow: uow}, nil
}

// UnitOfWork returns the unit-of-work factory this Access runs on.
func (a *Access[E, K]) UnitOfWork() UnitOfWork { return a.uow }

// Find resolves an entity by key. Absence is an empty result (zero E, nil
// error), never an error.
func (a *Access[E, K]) Find(ctx context.Context, key K) (E, error) {
	return a.Fetch(ctx, key)
}

// Fetch resolves an entity by key and eagerly loads the named relations.
// Absence is an empty result. Naming an undeclared relation is a caller bug
// and returns an error.
func (a *Access[E, K]) Fetch(ctx context.Context, key K, relations ...string) (E, error) {
	var zero E
	rels, err := a.resolveRelations(relations)
	if err != nil {
		return zero, err
	}

	var out E
	err = a.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		e, found, fetchErr := a.fetchOne(ctx, q, key, rels)
		if fetchErr != nil {
			return fetchErr
		}
		if found {
			out = e
		}
		return nil
	})
	if err != nil {
		return zero, err
	}
	recordOp(a.desc.Table, "fetch")
	return out, nil
}

// FindWhere returns the first entity matching the given predicate, with the
// named relations loaded, or an empty result. The predicate is a SQL
// condition over the entity's columns with $n placeholders bound to args.
func (a *Access[E, K]) FindWhere(ctx context.Context, where string, args []any, relations ...string) (E, error) {
	var zero E
	rels, err := a.resolveRelations(relations)
	if err != nil {
		return zero, err
	}

	sql := a.desc.selectSQL + " WHERE " + where + " LIMIT 1"
	var out E
	err = a.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		row := q.QueryRow(ctx, sql, args...)
		e, scanErr := a.desc.ScanRow(row)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil
		}
		if scanErr != nil {
			return oops.Code("ENTITY_FETCH_FAILED").
				With("table", a.desc.Table).
				With("operation", "find where").
				Wrap(scanErr)
		}
		if loadErr := a.loadRelations(ctx, q, e, rels); loadErr != nil {
			return loadErr
		}
		e.MarkPersisted()
		out = e
		return nil
	})
	if err != nil {
		return zero, err
	}
	recordOp(a.desc.Table, "fetch")
	return out, nil
}

// Filter narrows and orders a ListWhere query. All parts are optional.
type Filter struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
}

// ListWhere returns all entities matching the filter, each with the named
// relations loaded. An empty result is a nil slice, not an error.
func (a *Access[E, K]) ListWhere(ctx context.Context, filter Filter, relations ...string) ([]E, error) {
	rels, err := a.resolveRelations(relations)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(a.desc.selectSQL)
	if filter.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(filter.Where)
	}
	if filter.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(filter.OrderBy)
	}
	if filter.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", filter.Limit)
	}

	var out []E
	err = a.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		rows, queryErr := q.Query(ctx, sb.String(), filter.Args...)
		if queryErr != nil {
			return oops.Code("ENTITY_QUERY_FAILED").
				With("table", a.desc.Table).
				Wrap(queryErr)
		}
		defer rows.Close()

		for rows.Next() {
			e, scanErr := a.desc.ScanRow(rows)
			if scanErr != nil {
				return oops.Code("ENTITY_SCAN_FAILED").
					With("table", a.desc.Table).
					Wrap(scanErr)
			}
			out = append(out, e)
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			return oops.Code("ENTITY_ITERATE_FAILED").
				With("table", a.desc.Table).
				Wrap(rowsErr)
		}
		rows.Close()

		for _, e := range out {
			if loadErr := a.loadRelations(ctx, q, e, rels); loadErr != nil {
				return loadErr
			}
			e.MarkPersisted()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	recordOp(a.desc.Table, "list")
	return out, nil
}

// ApplyChange performs a store-mirrored mutation on an entity the caller
// already holds. A new unit of work is opened, a fresh copy of the entity is
// fetched by key inside it (with the descriptor's default relations loaded),
// and the precondition is evaluated against that fresh copy. A false
// precondition makes the whole call a silent no-op: nothing is persisted and
// the caller's copy is left untouched. Otherwise mutate is applied to both
// the fresh copy and the caller's copy, and the fresh copy is committed, so
// the caller's in-memory view and the store converge on every successful
// call.
//
// A nil precondition always passes.
func (a *Access[E, K]) ApplyChange(ctx context.Context, current E, mutate func(E), precondition func(E) bool) error {
	if mutate == nil {
		return oops.Code("ENTITY_ACCESS_INVALID").With("table", a.desc.Table).
			Errorf("mutate function is required")
	}

	var persisted bool
	err := a.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		fresh, found, err := a.fetchOne(ctx, q, current.Key(), a.desc.defaultRelations)
		if err != nil {
			return err
		}
		if !found {
			return oops.Code("ENTITY_GONE").
				With("table", a.desc.Table).
				Wrap(ErrNotFound)
		}
		if precondition != nil && !precondition(fresh) {
			return nil
		}
		mutate(fresh)
		mutate(current)
		persisted = true
		return a.persist(ctx, q, fresh)
	})
	if err != nil {
		return err
	}
	if persisted {
		recordOp(a.desc.Table, "change")
	}
	return nil
}

// ApplyChangePair is ApplyChange over a pair of entities, for mutations that
// span two entity types such as toggling a like between a post and a user.
// Both fresh copies are fetched inside the same unit of work before the
// precondition is evaluated. Both Access values must be built over the same
// database; the unit of work of the first is used.
func ApplyChangePair[E Entity[K], F Entity[K], K comparable](
	ctx context.Context,
	ea *Access[E, K], fa *Access[F, K],
	current E, other F,
	mutate func(E, F),
	precondition func(E, F) bool,
) error {
	if mutate == nil {
		return oops.Code("ENTITY_ACCESS_INVALID").With("table", ea.desc.Table).
			Errorf("mutate function is required")
	}

	var persisted bool
	err := ea.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		freshE, foundE, err := ea.fetchOne(ctx, q, current.Key(), ea.desc.defaultRelations)
		if err != nil {
			return err
		}
		freshF, foundF, err := fa.fetchOne(ctx, q, other.Key(), fa.desc.defaultRelations)
		if err != nil {
			return err
		}
		if !foundE || !foundF {
			return oops.Code("ENTITY_GONE").
				With("tables", ea.desc.Table+","+fa.desc.Table).
				Wrap(ErrNotFound)
		}
		if precondition != nil && !precondition(freshE, freshF) {
			return nil
		}
		mutate(freshE, freshF)
		mutate(current, other)
		persisted = true
		if err := ea.persist(ctx, q, freshE); err != nil {
			return err
		}
		return fa.persist(ctx, q, freshF)
	})
	if err != nil {
		return err
	}
	if persisted {
		recordOp(ea.desc.Table, "change")
		recordOp(fa.desc.Table, "change")
	}
	return nil
}

// Insert unconditionally creates the entity in a fresh unit of work and
// marks it persisted. Owned relation sets already populated on the entity
// are written as well.
func (a *Access[E, K]) Insert(ctx context.Context, e E) error {
	err := a.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		return a.insertOne(ctx, q, e)
	})
	if err != nil {
		return err
	}
	recordOp(a.desc.Table, "insert")
	return nil
}

// Delete removes the row with the given key. Deleting an absent key is not
// an error.
func (a *Access[E, K]) Delete(ctx context.Context, key K) error {
	err := a.uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		if _, execErr := q.Exec(ctx, a.desc.deleteSQL, a.desc.KeyArg(key)); execErr != nil {
			return oops.Code("ENTITY_DELETE_FAILED").
				With("table", a.desc.Table).
				Wrap(execErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	recordOp(a.desc.Table, "delete")
	return nil
}

// fetchOne reads one row by key and loads the given relations. Absence is
// reported through found, not an error.
func (a *Access[E, K]) fetchOne(ctx context.Context, q store.Querier, key K, rels []Relation[E]) (E, bool, error) {
	var zero E
	row := q.QueryRow(ctx, a.desc.keyedSQL, a.desc.KeyArg(key))
	e, err := a.desc.ScanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, oops.Code("ENTITY_FETCH_FAILED").
			With("table", a.desc.Table).
			Wrap(err)
	}
	if err := a.loadRelations(ctx, q, e, rels); err != nil {
		return zero, false, err
	}
	e.MarkPersisted()
	return e, true, nil
}

// insertOne writes the entity and its owned relation sets inside an already
// open unit of work. A key or uniqueness collision surfaces as ErrConflict.
func (a *Access[E, K]) insertOne(ctx context.Context, q store.Querier, e E) error {
	if _, err := q.Exec(ctx, a.desc.insertSQL, a.desc.Args(e)...); err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ENTITY_CONFLICT").
				With("table", a.desc.Table).
				Wrap(ErrConflict)
		}
		return oops.Code("ENTITY_INSERT_FAILED").
			With("table", a.desc.Table).
			Wrap(err)
	}
	for _, rel := range a.desc.defaultRelations {
		if rel.Save == nil {
			continue
		}
		if err := rel.Save(ctx, q, e); err != nil {
			return oops.Code("ENTITY_RELATION_SAVE_FAILED").
				With("table", a.desc.Table).
				With("relation", rel.Name).
				Wrap(err)
		}
	}
	e.MarkPersisted()
	return nil
}

// persist writes the fresh copy's columns and mirrors its owned relation
// sets inside the current unit of work.
func (a *Access[E, K]) persist(ctx context.Context, q store.Querier, e E) error {
	if _, err := q.Exec(ctx, a.desc.updateSQL, a.desc.updateArgs(e)...); err != nil {
		return oops.Code("ENTITY_UPDATE_FAILED").
			With("table", a.desc.Table).
			Wrap(err)
	}
	for _, rel := range a.desc.defaultRelations {
		if rel.Save == nil {
			continue
		}
		if err := rel.Save(ctx, q, e); err != nil {
			return oops.Code("ENTITY_RELATION_SAVE_FAILED").
				With("table", a.desc.Table).
				With("relation", rel.Name).
				Wrap(err)
		}
	}
	return nil
}

func (a *Access[E, K]) loadRelations(ctx context.Context, q store.Querier, e E, rels []Relation[E]) error {
	for _, rel := range rels {
		if err := rel.Load(ctx, q, e); err != nil {
			return oops.Code("ENTITY_RELATION_LOAD_FAILED").
				With("table", a.desc.Table).
				With("relation", rel.Name).
				Wrap(err)
		}
	}
	return nil
}

func (a *Access[E, K]) resolveRelations(names []string) ([]Relation[E], error) {
	if len(names) == 0 {
		return nil, nil
	}
	rels := make([]Relation[E], 0, len(names))
	for _, name := range names {
		rel, ok := a.desc.relationsByName[name]
		if !ok {
			return nil, oops.Code("ENTITY_RELATION_UNKNOWN").
				With("table", a.desc.Table).
				With("relation", name).
				Errorf("relation is not declared for this entity")
		}
		rels = append(rels, rel)
	}
	return rels, nil
}
