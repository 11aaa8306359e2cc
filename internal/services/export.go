package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/workspace-admin/apiserver/types"
)

const exportContentType = "application/json"

// ObjectStore is the slice of object storage the exporter needs.
// *storage.Storage satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// UserExport is the document written to object storage.
type UserExport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Count       int          `json:"count"`
	Users       []types.User `json:"users"`
}

// ExportService snapshots the user list into object storage.
type ExportService struct {
	users UserRepository
	store ObjectStore
	now   func() time.Time
}

// NewExportService builds the exporter. With a nil store every export
// fails with ErrExportUnavailable.
func NewExportService(users UserRepository, store ObjectStore) *ExportService {
	return &ExportService{users: users, store: store, now: time.Now}
}

// Export uploads the current user list and returns the object key and the
// number of users written. Password hashes are never included.
func (s *ExportService) Export(ctx context.Context) (string, int, error) {
	if s.store == nil {
		return "", 0, ErrExportUnavailable
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return "", 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}

	generated := s.now().UTC()
	data, err := json.Marshal(UserExport{
		GeneratedAt: generated,
		Count:       len(users),
		Users:       users,
	})
	if err != nil {
		return "", 0, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/users-%s.json", generated.Format("20060102T150405Z"))
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), exportContentType); err != nil {
		return "", 0, fmt.Errorf("upload export: %w", err)
	}
	return key, len(users), nil
}
