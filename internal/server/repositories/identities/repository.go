package identities

import (
	"context"

	"github.com/dsmirnov/padkeeper/internal/server/models"
)

// Repository persists identity records. Lookups by login and email serve
// the credential verifier; both columns are unique-indexed.
type Repository interface {
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetByLogin(ctx context.Context, login string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	Update(ctx context.Context, identity *models.Identity) error
	Delete(ctx context.Context, id string) error
}
