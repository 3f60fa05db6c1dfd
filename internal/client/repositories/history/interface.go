package history

import (
	"context"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

type Repository interface {
	// Add stores rec and trims the table to the limit most recent records,
	// returning the evicted ones oldest first.
	Add(ctx context.Context, rec models.ConversionRecord, limit int) ([]models.ConversionRecord, error)
	List(ctx context.Context) ([]models.ConversionRecord, error)
	Get(ctx context.Context, id int64) (*models.ConversionRecord, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}
