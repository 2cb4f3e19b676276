package groups

import (
	"context"

	"github.com/dsmirnov/padkeeper/internal/server/models"
)

// Repository persists groups. Create and Update run the model validation
// first, so an invariant-violating group (private without secret, empty
// admin list) never reaches storage.
type Repository interface {
	Create(ctx context.Context, group *models.Group) (*models.Group, error)
	Get(ctx context.Context, id string) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}
