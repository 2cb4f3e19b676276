package pads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/dbx"
	"github.com/dsmirnov/padkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, pad *models.Pad) (*models.Pad, error) {
	if err := pad.Validate(); err != nil {
		return nil, err
	}
	if pad.ID == "" {
		pad.ID = uuid.New().String()
	}

	users, err := json.Marshal(orEmpty(pad.Users))
	if err != nil {
		return nil, fmt.Errorf("marshal users: %w", err)
	}

	query :=
		`INSERT INTO pads (id, group_id, name, visibility, secret_hash, readonly, users)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err = r.db.ExecContext(ctx, query,
		pad.ID, pad.GroupID, pad.Name, string(pad.Visibility), pad.SecretHash, readonlyValue(pad.ReadOnly), users)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return pad, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Pad, error) {
	query :=
		`SELECT id, group_id, name, visibility, secret_hash, readonly, users
		 FROM pads
		 WHERE id = $1
		 `

	pad, err := scanPad(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return pad, nil
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Pad, error) {
	query :=
		`SELECT id, group_id, name, visibility, secret_hash, readonly, users
		 FROM pads
		 WHERE group_id = $1
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Pad
	for rows.Next() {
		pad, err := scanPad(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, pad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, pad *models.Pad) error {
	if err := pad.Validate(); err != nil {
		return err
	}

	users, err := json.Marshal(orEmpty(pad.Users))
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}

	query :=
		`UPDATE pads
		 SET group_id = $2, name = $3, visibility = $4, secret_hash = $5, readonly = $6, users = $7
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		pad.ID, pad.GroupID, pad.Name, string(pad.Visibility), pad.SecretHash, readonlyValue(pad.ReadOnly), users)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPad(row rowScanner) (*models.Pad, error) {
	pad := &models.Pad{}
	var visibility string
	var readonly sql.NullBool
	var users []byte

	if err := row.Scan(&pad.ID, &pad.GroupID, &pad.Name, &visibility, &pad.SecretHash, &readonly, &users); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	pad.Visibility = models.Visibility(visibility)
	if readonly.Valid {
		pad.ReadOnly = &readonly.Bool
	}
	if err := json.Unmarshal(users, &pad.Users); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}

	return pad, nil
}

// readonlyValue converts the tri-state read-only flag for storage: nil
// means "inherit from group" and becomes SQL NULL.
func readonlyValue(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
