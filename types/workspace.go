package types

import "time"

// Workspace is a named container created by a panel user.
type Workspace struct {
	// ID is the unique identifier of the workspace (a UUID).
	ID string `json:"id" db:"id"`

	// Name is the human-readable name of the workspace.
	Name string `json:"name" db:"name"`

	// CreatedBy identifies whoever requested the workspace. It is stored
	// as given by the client.
	CreatedBy string `json:"createdBy" db:"created_by"`

	// CreatedAt is the timestamp at which the workspace was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WorkspaceEventCreated is the channel workspace creations are published to.
const WorkspaceEventCreated = "workspace.created"

// WorkspaceEvent is the message body published when a workspace changes.
type WorkspaceEvent struct {
	Type       string    `json:"type"`
	Workspace  Workspace `json:"workspace"`
	OccurredAt time.Time `json:"occurred_at"`
}
