package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workspace-admin/apiserver/types"
)

// WorkspaceRepository handles persistence for workspaces.
type WorkspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, workspace types.Workspace) (types.Workspace, error) {
	workspace.ID = uuid.NewString()
	workspace.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO workspaces (id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		workspace.ID,
		workspace.Name,
		workspace.CreatedBy,
		workspace.CreatedAt,
	); err != nil {
		return types.Workspace{}, fmt.Errorf("create workspace: %w", err)
	}
	return workspace, nil
}
