package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *FileRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	content_type TEXT,
	pages INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);
CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, file *domain.SourceFile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO files (
	id, filename, mime_type, storage_path, content_type, pages, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		file.ID, file.Filename, file.MimeType, file.StoragePath, file.ContentType,
		file.Pages, string(file.Status), file.Error, file.CreatedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.SourceFile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, content_type, pages, status, error_message, created_at, updated_at
FROM files
WHERE id = $1
`, id)

	var file domain.SourceFile
	var status string

	err := row.Scan(
		&file.ID, &file.Filename, &file.MimeType, &file.StoragePath, &file.ContentType,
		&file.Pages, &status, &file.Error, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFileNotFound, "get file by id", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}

	file.Status = domain.FileStatus(status)
	return &file, nil
}

func (r *FileRepository) UpdateStatus(ctx context.Context, id string, status domain.FileStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE files
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update file status: %w", err)
	}
	return requireRowAffected(res, "update file status", id)
}

func (r *FileRepository) SaveExtractionResult(ctx context.Context, id, contentType string, pages int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE files
SET content_type = $2, pages = $3, updated_at = $4
WHERE id = $1
`, id, contentType, pages, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction result: %w", err)
	}
	return requireRowAffected(res, "save extraction result", id)
}

func requireRowAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrFileNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
