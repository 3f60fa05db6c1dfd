package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/dbx"
)

const columns = `id, original_name, original_type, original_size, pdf_name, pdf_size, pdf_ref, created_at, converted_with`

// SQLiteRepository implements Repository over a DBTX. Add issues several
// statements; run it inside dbx.WithTx to make eviction atomic.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, rec models.ConversionRecord, limit int) ([]models.ConversionRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid history limit %d", limit)
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO conversion_history (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OriginalName, rec.OriginalType, rec.OriginalSize, rec.PDFName, rec.PDFSize, rec.PDFRef,
		rec.CreatedAt.UnixMilli(), rec.ConvertedWith)
	if err != nil {
		return nil, fmt.Errorf("failed to insert history record: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM conversion_history
		WHERE seq NOT IN (SELECT seq FROM conversion_history ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select evicted records: %w", err)
	}
	evicted, err := scanAll(rows)
	if err != nil {
		return nil, err
	}
	if len(evicted) == 0 {
		return nil, nil
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM conversion_history
		WHERE seq NOT IN (SELECT seq FROM conversion_history ORDER BY seq DESC LIMIT ?)`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to evict history records: %w", err)
	}
	return evicted, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.ConversionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM conversion_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return scanAll(rows)
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.ConversionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM conversion_history WHERE id = ?`, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history record %d: %w", id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversion_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history record %d: %w", id, err)
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
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversion_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.ConversionRecord, error) {
	var rec models.ConversionRecord
	var createdAt int64
	err := s.Scan(&rec.ID, &rec.OriginalName, &rec.OriginalType, &rec.OriginalSize,
		&rec.PDFName, &rec.PDFSize, &rec.PDFRef, &createdAt, &rec.ConvertedWith)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &rec, nil
}

func scanAll(rows *sql.Rows) ([]models.ConversionRecord, error) {
	defer rows.Close()

	result := []models.ConversionRecord{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return result, nil
}
