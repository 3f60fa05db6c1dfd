package uploads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, f models.UploadedFile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO uploaded_files (id, name, size, type, mime, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Size, f.Type, f.MimeType, f.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert uploaded file: %w", err)
	}
	return nil
}

// List returns the most recent upload first.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.UploadedFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, size, type, mime, created_at FROM uploaded_files ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded files: %w", err)
	}
	defer rows.Close()

	result := []models.UploadedFile{}
	for rows.Next() {
		var f models.UploadedFile
		var createdAt int64
		if err := rows.Scan(&f.ID, &f.Name, &f.Size, &f.Type, &f.MimeType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan uploaded file: %w", err)
		}
		f.CreatedAt = time.UnixMilli(createdAt).UTC()
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploaded files: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploaded_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete uploaded file %d: %w", id, err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrorNotFound
		}
		return err
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM uploaded_files`); err != nil {
		return fmt.Errorf("failed to clear uploaded files: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
