package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/tags"
)

const tagColumns = `id, code, name_en, name_fr, category, is_hidden, created_at, updated_at`

// ListTagDefinitions returns every definition ordered by code.
func (s *Store) ListTagDefinitions(ctx context.Context) ([]tags.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tag_definitions ORDER BY code`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []tags.Definition
	for rows.Next() {
		d, err := scanTag(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// GetTagDefinitionByCode returns (nil, nil) when code is unknown.
func (s *Store) GetTagDefinitionByCode(ctx context.Context, code string) (*tags.Definition, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tag_definitions WHERE code = ?`, code)
	d, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return d, nil
}

// CreateTagDefinition inserts def with a fresh id and timestamps.
func (s *Store) CreateTagDefinition(ctx context.Context, def tags.Definition) (tags.Definition, error) {
	id, err := generateULID()
	if err != nil {
		return tags.Definition{}, errors.NewInternal(err)
	}
	now := s.now().Unix()
	def.ID = id
	def.CreatedAt, def.UpdatedAt = now, now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tag_definitions (`+tagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.Code, def.NameEN, def.NameFR, toNullString(def.Category),
		toNullBool(def.Hidden), def.CreatedAt, def.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return tags.Definition{}, errors.NewCodeAlreadyExists(def.Code)
		}
		return tags.Definition{}, errors.NewInternal(err)
	}
	return def, nil
}

// UpdateTagDefinition replaces the definition stored under id.
func (s *Store) UpdateTagDefinition(ctx context.Context, id string, def tags.Definition) (tags.Definition, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tag_definitions WHERE id = ?`, id)
	prev, err := scanTag(row)
	if err == sql.ErrNoRows {
		return tags.Definition{}, errors.NewNotFound("tag definition", id)
	}
	if err != nil {
		return tags.Definition{}, errors.NewInternal(err)
	}

	def.ID = id
	def.CreatedAt = prev.CreatedAt
	def.UpdatedAt = s.now().Unix()

	_, err = s.db.ExecContext(ctx, `
		UPDATE tag_definitions SET
			code = ?, name_en = ?, name_fr = ?, category = ?, is_hidden = ?, updated_at = ?
		WHERE id = ?`,
		def.Code, def.NameEN, def.NameFR, toNullString(def.Category),
		toNullBool(def.Hidden), def.UpdatedAt, id,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return tags.Definition{}, errors.NewCodeAlreadyExists(def.Code)
		}
		return tags.Definition{}, errors.NewInternal(err)
	}
	return def, nil
}

// DeleteTagDefinition removes a definition permanently.
func (s *Store) DeleteTagDefinition(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tag_definitions WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("tag definition", id)
	}
	return nil
}

func scanTag(sc scanner) (*tags.Definition, error) {
	var (
		d        tags.Definition
		category sql.NullString
		hidden   sql.NullInt64
	)
	if err := sc.Scan(&d.ID, &d.Code, &d.NameEN, &d.NameFR, &category, &hidden, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Category = fromNullString(category)
	d.Hidden = fromNullBool(hidden)
	return &d, nil
}
