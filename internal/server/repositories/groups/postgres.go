package groups

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

// idList marshals a string slice for a JSONB column, normalizing nil to [].
func idList(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

func (r *PostgresRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if group.ID == "" {
		group.ID = uuid.New().String()
	}

	admins, err := idList(group.Admins)
	if err != nil {
		return nil, fmt.Errorf("marshal admins: %w", err)
	}
	users, err := idList(group.Users)
	if err != nil {
		return nil, fmt.Errorf("marshal users: %w", err)
	}
	pads, err := idList(group.Pads)
	if err != nil {
		return nil, fmt.Errorf("marshal pads: %w", err)
	}

	query :=
		`INSERT INTO groups (id, name, visibility, secret_hash, readonly, admins, users, pads)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err = r.db.ExecContext(ctx, query,
		group.ID, group.Name, string(group.Visibility), group.SecretHash, group.ReadOnly,
		admins, users, pads)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return group, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Group, error) {
	query :=
		`SELECT id, name, visibility, secret_hash, readonly, admins, users, pads
		 FROM groups
		 WHERE id = $1
		 `

	group := &models.Group{}
	var visibility string
	var admins, users, pads []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID, &group.Name, &visibility, &group.SecretHash, &group.ReadOnly,
		&admins, &users, &pads)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	group.Visibility = models.Visibility(visibility)
	if err := json.Unmarshal(admins, &group.Admins); err != nil {
		return nil, fmt.Errorf("unmarshal admins: %w", err)
	}
	if err := json.Unmarshal(users, &group.Users); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	if err := json.Unmarshal(pads, &group.Pads); err != nil {
		return nil, fmt.Errorf("unmarshal pads: %w", err)
	}

	return group, nil
}

func (r *PostgresRepository) Update(ctx context.Context, group *models.Group) error {
	if err := group.Validate(); err != nil {
		return err
	}

	admins, err := idList(group.Admins)
	if err != nil {
		return fmt.Errorf("marshal admins: %w", err)
	}
	users, err := idList(group.Users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	pads, err := idList(group.Pads)
	if err != nil {
		return fmt.Errorf("marshal pads: %w", err)
	}

	query :=
		`UPDATE groups
		 SET name = $2, visibility = $3, secret_hash = $4, readonly = $5, admins = $6, users = $7, pads = $8
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, string(group.Visibility), group.SecretHash, group.ReadOnly,
		admins, users, pads)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
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
