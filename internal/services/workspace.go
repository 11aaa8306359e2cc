package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/workspace-admin/apiserver/types"
	"go.uber.org/zap"
)

// WorkspaceRepository defines persistence operations for workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace types.Workspace) (types.Workspace, error)
}

// Publisher sends a message to a named channel. *mq.MQ satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// WorkspaceService encapsulates workspace use-cases.
type WorkspaceService struct {
	repo      WorkspaceRepository
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewWorkspaceService builds the service. publisher may be nil, in which
// case no events are emitted.
func NewWorkspaceService(repo WorkspaceRepository, publisher Publisher, logger *zap.Logger) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a workspace and announces it on the workspace.created
// channel. A failed publish is logged; the workspace is still returned.
func (s *WorkspaceService) Create(ctx context.Context, name, createdBy string) (types.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Workspace{}, ErrMissingFields
	}

	ws, err := s.repo.Create(ctx, types.Workspace{
		Name:      name,
		CreatedBy: strings.TrimSpace(createdBy),
	})
	if err != nil {
		return types.Workspace{}, err
	}

	s.publishCreated(ctx, ws)
	return ws, nil
}

func (s *WorkspaceService) publishCreated(ctx context.Context, ws types.Workspace) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(types.WorkspaceEvent{
		Type:       types.WorkspaceEventCreated,
		Workspace:  ws,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("encode workspace event", zap.Error(err))
		return
	}

	attrs := map[string]string{
		"type":         types.WorkspaceEventCreated,
		"workspace_id": ws.ID,
	}
	if _, err := s.publisher.Publish(ctx, types.WorkspaceEventCreated, data, attrs); err != nil {
		s.logger.Warn("publish workspace event",
			zap.String("workspace_id", ws.ID),
			zap.Error(err),
		)
	}
}
