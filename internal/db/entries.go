package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"maps"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/store"
)

// baseColumns are record keys stored in dedicated columns.
// Every other writable key goes to details_json.
var baseColumns = map[string]bool{
	"id": true, "type": true, "name": true, "description": true, "tags": true,
	"is_hidden": true, "markdown_content": true, "created_at": true, "updated_at": true,
}

const entryColumns = `id, type, name, description, tags_json, is_hidden,
	markdown_content, details_json, created_at, updated_at`

// entryRow is the column-level form of an entry.
type entryRow struct {
	ID              string
	Type            string
	Name            string
	Description     sql.NullString
	TagsJSON        sql.NullString
	Hidden          sql.NullInt64
	MarkdownContent sql.NullString
	DetailsJSON     sql.NullString
	CreatedAt       int64
	UpdatedAt       int64
}

// ListEntities returns every entry of typ ordered by name.
func (s *Store) ListEntities(ctx context.Context, typ string) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE type = ? ORDER BY name COLLATE NOCASE, id`, typ)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		row, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		rec, err := row.record()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// CreateEntity inserts a new entry and returns the stored record.
func (s *Store) CreateEntity(ctx context.Context, typ string, fields store.Record) (store.Record, error) {
	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := s.now().Unix()

	row := entryRow{ID: id, Type: typ, CreatedAt: now, UpdatedAt: now}
	if err := row.apply(fields); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Type, row.Name, row.Description, row.TagsJSON, row.Hidden,
		row.MarkdownContent, row.DetailsJSON, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return row.record()
}

// UpdateEntity overwrites the given fields of an existing entry.
// Keys absent from fields keep their stored values. The type never changes.
func (s *Store) UpdateEntity(ctx context.Context, id, typ string, fields store.Record) (store.Record, error) {
	row, err := s.getEntry(ctx, id, typ)
	if err != nil {
		return nil, err
	}
	if err := row.apply(fields); err != nil {
		return nil, err
	}
	row.UpdatedAt = s.now().Unix()

	_, err = s.db.ExecContext(ctx, `
		UPDATE entries SET
			name = ?, description = ?, tags_json = ?, is_hidden = ?,
			markdown_content = ?, details_json = ?, updated_at = ?
		WHERE id = ? AND type = ?`,
		row.Name, row.Description, row.TagsJSON, row.Hidden,
		row.MarkdownContent, row.DetailsJSON, row.UpdatedAt,
		row.ID, row.Type,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return row.record()
}

// DeleteEntity removes an entry permanently.
func (s *Store) DeleteEntity(ctx context.Context, id, typ string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND type = ?`, id, typ)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("entry", id)
	}
	return nil
}

func (s *Store) getEntry(ctx context.Context, id, typ string) (*entryRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ? AND type = ?`, id, typ)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("entry", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*entryRow, error) {
	var r entryRow
	err := sc.Scan(&r.ID, &r.Type, &r.Name, &r.Description, &r.TagsJSON, &r.Hidden,
		&r.MarkdownContent, &r.DetailsJSON, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// apply merges record fields into the row's columns.
func (r *entryRow) apply(fields store.Record) error {
	if _, ok := fields["name"]; ok {
		name, _ := fields.String("name")
		r.Name = name
	}
	if r.Name == "" {
		return errors.NewInvalidRequest("name is required")
	}
	if _, ok := fields["description"]; ok {
		r.Description = toNullString(fields.OptString("description"))
	}
	if _, ok := fields["tags"]; ok {
		tags := fields.Strings("tags")
		js, err := marshalNullJSON(tags, len(tags) == 0)
		if err != nil {
			return errors.NewInternal(err)
		}
		r.TagsJSON = js
	}
	if _, ok := fields["is_hidden"]; ok {
		if b, ok := fields.Bool("is_hidden"); ok {
			r.Hidden = toNullBool(&b)
		} else {
			r.Hidden = sql.NullInt64{}
		}
	}
	if _, ok := fields["markdown_content"]; ok {
		r.MarkdownContent = toNullString(fields.OptString("markdown_content"))
	}

	details := map[string]any{}
	if r.DetailsJSON.Valid {
		if err := json.Unmarshal([]byte(r.DetailsJSON.String), &details); err != nil {
			return errors.NewInternal(err)
		}
	}
	for k, v := range fields {
		if baseColumns[k] {
			continue
		}
		if v == nil {
			delete(details, k)
			continue
		}
		details[k] = v
	}
	js, err := marshalNullJSON(details, len(details) == 0)
	if err != nil {
		return errors.NewInternal(err)
	}
	r.DetailsJSON = js
	return nil
}

// record converts the row back into the Backend's record shape.
func (r *entryRow) record() (store.Record, error) {
	rec := store.Record{}
	if r.DetailsJSON.Valid {
		if err := json.Unmarshal([]byte(r.DetailsJSON.String), &rec); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	tags := []string{}
	if r.TagsJSON.Valid {
		if err := json.Unmarshal([]byte(r.TagsJSON.String), &tags); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	maps.Copy(rec, store.Record{
		"id":         r.ID,
		"type":       r.Type,
		"name":       r.Name,
		"tags":       tags,
		"created_at": r.CreatedAt,
		"updated_at": r.UpdatedAt,
	})
	if d := fromNullString(r.Description); d != nil {
		rec["description"] = *d
	}
	if b := fromNullBool(r.Hidden); b != nil {
		rec["is_hidden"] = *b
	}
	if m := fromNullString(r.MarkdownContent); m != nil {
		rec["markdown_content"] = *m
	}
	return rec, nil
}
