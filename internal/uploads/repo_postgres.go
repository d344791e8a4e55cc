package uploads

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo stores document metadata in Postgres via database/sql with
// the pgx stdlib driver.
//
// Expected schema:
//
//	CREATE TABLE documents (
//	    id           TEXT PRIMARY KEY,
//	    workspace_id TEXT NOT NULL,
//	    file_name    TEXT NOT NULL,
//	    file_size    BIGINT NOT NULL,
//	    content_type TEXT NOT NULL DEFAULT '',
//	    status       TEXT NOT NULL,
//	    uploaded_by  TEXT NOT NULL DEFAULT '',
//	    uploaded_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX documents_workspace_idx ON documents (workspace_id, uploaded_at DESC);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, d Document) error {
	if d.ID == "" || d.WorkspaceID == "" {
		return ErrInvalidRequest
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, workspace_id, file_name, file_size, content_type, status, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.WorkspaceID, d.FileName, d.FileSize, d.ContentType, d.Status, d.UploadedBy, d.UploadedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, workspaceID, id string) (Document, error) {
	if workspaceID == "" || id == "" {
		return Document{}, ErrInvalidRequest
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, file_name, file_size, content_type, status, uploaded_by, uploaded_at
		FROM documents
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	var d Document
	err := row.Scan(&d.ID, &d.WorkspaceID, &d.FileName, &d.FileSize, &d.ContentType, &d.Status, &d.UploadedBy, &d.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return d, nil
}

func (r *PostgresRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]Document, error) {
	if workspaceID == "" {
		return nil, ErrInvalidRequest
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, file_name, file_size, content_type, status, uploaded_by, uploaded_at
		FROM documents
		WHERE workspace_id = $1
		ORDER BY uploaded_at DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.WorkspaceID, &d.FileName, &d.FileSize, &d.ContentType, &d.Status, &d.UploadedBy, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, workspaceID, id string) error {
	if workspaceID == "" || id == "" {
		return ErrInvalidRequest
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
