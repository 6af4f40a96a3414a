// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package entity

import (
	"context"

	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/store"
)

// Attachable is a reference bound to its Access, usable with AttachInsert.
// Build one with Access.Ref.
type Attachable interface {
	persisted() bool
	insert(ctx context.Context, q store.Querier) error
}

type ref[E Entity[K], K comparable] struct {
	access *Access[E, K]
	e      E
}

func (r ref[E, K]) persisted() bool { return r.e.Persisted() }

func (r ref[E, K]) insert(ctx context.Context, q store.Querier) error {
	return r.access.insertOne(ctx, q, r.e)
}

// Ref binds an entity to this Access for use as an AttachInsert argument.
func (a *Access[E, K]) Ref(e E) Attachable {
	return ref[E, K]{access: a, e: e}
}

// AttachInsert persists one new entity together with a set of references
// that may or may not already be persisted, in one unit of work. References
// already persisted are attached: their keys are referenced and no row is
// written. Unpersisted references are inserted before the primary entity,
// which is always inserted. Everything commits together.
//
// An unpersisted reference whose key collides with an existing row is
// rejected with ErrConflict; the caller's "is persisted" state is the only
// thing consulted, never an implicit match by key.
func AttachInsert(ctx context.Context, uow UnitOfWork, primary Attachable, refs ...Attachable) error {
	if uow == nil {
		return oops.Code("ENTITY_ACCESS_INVALID").Errorf("unit-of-work factory is required")
	}
	if primary == nil {
		return oops.Code("ENTITY_ACCESS_INVALID").Errorf("primary entity is required")
	}

	return uow.InTransaction(ctx, func(ctx context.Context, q store.Querier) error {
		for _, r := range refs {
			if r == nil || r.persisted() {
				continue
			}
			if err := r.insert(ctx, q); err != nil {
				return err
			}
		}
		return primary.insert(ctx, q)
	})
}
