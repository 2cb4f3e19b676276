package pads

import (
	"context"

	"github.com/dsmirnov/padkeeper/internal/server/models"
)

// Repository persists pads. Create and Update run the model validation
// first; a private pad without its own secret hash never reaches storage.
type Repository interface {
	Create(ctx context.Context, pad *models.Pad) (*models.Pad, error)
	Get(ctx context.Context, id string) (*models.Pad, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Pad, error)
	Update(ctx context.Context, pad *models.Pad) error
	Delete(ctx context.Context, id string) error
}
