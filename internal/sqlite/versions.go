package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/codec"
	"github.com/mesh-intelligence/strata/internal/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

var _ store.RowStore = (*Backend)(nil)

// storable adapts an encoded value to SQLite. Non-finite reals become text
// because SQLite stores NaN as NULL.
func storable(v any) any {
	if codec.NonFinite(v) {
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	}
	return v
}

// InsertRow persists value as a new version. The ID comes from the
// AUTOINCREMENT sequence, so IDs of committed versions are never reused.
// The journal line is written before commit; a failed append rolls the
// insert back and a failed commit truncates the line away.
func (b *Backend) InsertRow(ctx context.Context, prop *types.Property, subjectID uuid.UUID, value any) (row store.Row, err error) {
	start := time.Now()
	defer func() { b.observe("create_version", prop.Name, start, 1, err) }()

	c, err := codec.For(prop.Kind)
	if err != nil {
		return store.Row{}, err
	}
	encoded, err := c.Encode(value)
	if err != nil {
		return store.Row{}, err
	}
	absent := c.Absent(value)
	decoded, err := c.Decode(encoded, absent)
	if err != nil {
		return store.Row{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return store.Row{}, types.ErrBackendDetached
	}

	addedAt := b.now()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Row{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO versions (property, subject_id, added_at, absent, value) VALUES (?, ?, ?, ?, ?)`,
		prop.Name, subjectID.String(), addedAt.UnixNano(), absent, storable(encoded),
	)
	if err != nil {
		return store.Row{}, fmt.Errorf("inserting version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return store.Row{}, err
	}

	row = store.Row{ID: id, SubjectID: subjectID, AddedAt: addedAt, Value: decoded}
	if !b.config.Journal {
		if err := b.commit(tx); err != nil {
			return store.Row{}, err
		}
		return row, nil
	}

	offset, err := appendVersionJournal(b.config.DataDir, newVersionRecord(prop, c, row, absent))
	if err != nil {
		return store.Row{}, err
	}
	if err := b.commit(tx); err != nil {
		if jerr := unappendVersionJournal(b.config.DataDir, offset); jerr != nil {
			b.log.Error().Err(jerr).Int64("id", id).Msg("journal line of failed commit not removed")
		}
		return store.Row{}, err
	}
	return row, nil
}

// orderClauses maps each Order to its ORDER BY clause.
var orderClauses = map[types.Order]string{
	types.OrderNone:      "id",
	types.OrderAddedAsc:  "added_at, id",
	types.OrderAddedDesc: "added_at DESC, id DESC",
}

// SelectRows reads the versions of subjectID under prop.
func (b *Backend) SelectRows(ctx context.Context, prop *types.Property, subjectID uuid.UUID, order types.Order) (out []store.Row, err error) {
	start := time.Now()
	defer func() { b.observe("get_versions", prop.Name, start, len(out), err) }()

	clause, ok := orderClauses[order]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidOrder, order)
	}
	c, err := codec.For(prop.Kind)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	rows, err := b.db.QueryContext(ctx,
		`SELECT id, added_at, absent, value FROM versions WHERE property = ? AND subject_id = ? ORDER BY `+clause,
		prop.Name, subjectID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	out = []store.Row{}
	for rows.Next() {
		var (
			id      int64
			addedAt int64
			absent  bool
			raw     any
		)
		if err := rows.Scan(&id, &addedAt, &absent, &raw); err != nil {
			return nil, err
		}
		value, err := c.Decode(raw, absent)
		if err != nil {
			return nil, fmt.Errorf("version %d: %w", id, err)
		}
		out = append(out, store.Row{
			ID:        id,
			SubjectID: subjectID,
			AddedAt:   time.Unix(0, addedAt).UTC(),
			Value:     value,
		})
	}
	return out, rows.Err()
}
