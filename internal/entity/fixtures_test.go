// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package entity_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/entity"
	"github.com/driftline/driftline/internal/store"
)

// widget is the test entity: one owned relation set (tags) that is
// loaded by default and mirrored back on save.
type widget struct {
	entity.Tracked
	ID   string
	Name string
	Tags []string
}

func (w *widget) Key() string { return w.ID }

// gizmo is a second entity type for pair mutations.
type gizmo struct {
	entity.Tracked
	ID    string
	Label string
}

func (g *gizmo) Key() string { return g.ID }

var widgets = entity.MustRegister(&entity.Descriptor[*widget, string]{
	Table: "widgets",
	Fields: []entity.Field{
		{Column: "id", Key: true},
		{Column: "name"},
	},
	ScanRow: func(row pgx.Row) (*widget, error) {
		var w widget
		if err := row.Scan(&w.ID, &w.Name); err != nil {
			return nil, err
		}
		return &w, nil
	},
	Args: func(w *widget) []any { return []any{w.ID, w.Name} },
	Relations: []entity.Relation[*widget]{
		{
			Name: "tags",
			Load: func(ctx context.Context, q store.Querier, w *widget) error {
				rows, err := q.Query(ctx, "SELECT tag FROM widget_tags WHERE widget_id = $1", w.ID)
				if err != nil {
					return err
				}
				defer rows.Close()
				w.Tags = nil
				for rows.Next() {
					var tag string
					if err := rows.Scan(&tag); err != nil {
						return err
					}
					w.Tags = append(w.Tags, tag)
				}
				return rows.Err()
			},
			Save: func(ctx context.Context, q store.Querier, w *widget) error {
				if _, err := q.Exec(ctx, "DELETE FROM widget_tags WHERE widget_id = $1", w.ID); err != nil {
					return err
				}
				for _, tag := range w.Tags {
					if _, err := q.Exec(ctx,
						"INSERT INTO widget_tags (widget_id, tag) VALUES ($1, $2)", w.ID, tag); err != nil {
						return err
					}
				}
				return nil
			},
		},
	},
	DefaultRelations: []string{"tags"},
})

var gizmos = entity.MustRegister(&entity.Descriptor[*gizmo, string]{
	Table: "gizmos",
	Fields: []entity.Field{
		{Column: "id", Key: true},
		{Column: "label"},
	},
	ScanRow: func(row pgx.Row) (*gizmo, error) {
		var g gizmo
		if err := row.Scan(&g.ID, &g.Label); err != nil {
			return nil, err
		}
		return &g, nil
	},
	Args: func(g *gizmo) []any { return []any{g.ID, g.Label} },
})

// newFixture wires both Access values over one mock pool.
func newFixture(t *testing.T) (pgxmock.PgxPoolIface, *entity.Access[*widget, string], *entity.Access[*gizmo, string]) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	tr, err := store.NewTransactor(mock)
	require.NoError(t, err)

	wa, err := entity.NewAccess(widgets, tr)
	require.NoError(t, err)
	ga, err := entity.NewAccess(gizmos, tr)
	require.NoError(t, err)

	return mock, wa, ga
}

func widgetRows(pairs ...string) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "name"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	return rows
}

func tagRows(tags ...string) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"tag"})
	for _, tag := range tags {
		rows.AddRow(tag)
	}
	return rows
}
