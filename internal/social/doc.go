// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package social holds the domain model (accounts, posts, sessions) and
// the services built on the generic entity access layer.
//
// Entities embed entity.Tracked and are registered once, at package init,
// through descriptors that describe their columns and relation sets.
// Services never issue SQL of their own beyond the predicates they pass
// to the access layer; every mutation runs against a fresh copy inside
// one unit of work.
package social
