// Package uploads keeps bookkeeping for files submitted while signed out.
package uploads

import (
	"context"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

type Repository interface {
	Add(ctx context.Context, f models.UploadedFile) error
	List(ctx context.Context) ([]models.UploadedFile, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}
