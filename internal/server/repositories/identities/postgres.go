package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/dbx"
	"github.com/dsmirnov/padkeeper/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint hits.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const identityColumns = `id, login, email, password_hash, active, firstname, lastname, use_login_and_color, pad_nickname, color`

func (r *PostgresRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}

	query :=
		`INSERT INTO identities (id, login, email, password_hash, active, firstname, lastname, use_login_and_color, pad_nickname, color)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err := r.db.ExecContext(ctx, query,
		identity.ID, identity.Login, identity.Email, identity.PasswordHash, identity.Active,
		identity.Firstname, identity.Lastname, identity.UseLoginAndColor, identity.PadNickname, identity.Color)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Identity, error) {
	return r.getBy(ctx, "login", login)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM identities WHERE %s = $1`, identityColumns, column)

	identity := &models.Identity{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&identity.ID, &identity.Login, &identity.Email, &identity.PasswordHash, &identity.Active,
		&identity.Firstname, &identity.Lastname, &identity.UseLoginAndColor, &identity.PadNickname, &identity.Color)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *PostgresRepository) Update(ctx context.Context, identity *models.Identity) error {
	query :=
		`UPDATE identities
		 SET email = $2, password_hash = $3, active = $4, firstname = $5, lastname = $6,
		     use_login_and_color = $7, pad_nickname = $8, color = $9
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		identity.ID, identity.Email, identity.PasswordHash, identity.Active,
		identity.Firstname, identity.Lastname, identity.UseLoginAndColor, identity.PadNickname, identity.Color)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorAlreadyExists
		}
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, id)
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
