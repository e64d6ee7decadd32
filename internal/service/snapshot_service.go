package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	"github.com/google/uuid"
)

const snapshotKeyTimeFormat = "20060102T150405Z"

// ArchivedSnapshot describes a stored report snapshot
type ArchivedSnapshot struct {
	Key         string `json:"key"`
	WorkspaceID int32  `json:"workspaceId"`
	Size        int    `json:"size"`
}

// SnapshotService archives report snapshots to object storage
type SnapshotService struct {
	analytics *AnalyticsService
	repo      domain.SnapshotRepository
	publisher websocket.EventPublisher
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(analytics *AnalyticsService, repo domain.SnapshotRepository, publisher websocket.EventPublisher) *SnapshotService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &SnapshotService{
		analytics: analytics,
		repo:      repo,
		publisher: publisher,
	}
}

// Archive builds the workspace's current report snapshot and stores it as JSON
func (s *SnapshotService) Archive(ctx context.Context, workspaceID int32) (*ArchivedSnapshot, error) {
	snapshot, err := s.analytics.BuildSnapshot(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := SnapshotKey(workspaceID, snapshot)
	if err := s.repo.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	archived := &ArchivedSnapshot{Key: key, WorkspaceID: workspaceID, Size: len(data)}
	s.publisher.Publish(workspaceID, websocket.SnapshotArchived(archived))
	return archived, nil
}

// Get loads a stored snapshot. Keys outside the workspace's prefix are reported as not found.
func (s *SnapshotService) Get(ctx context.Context, workspaceID int32, key string) (*domain.ReportSnapshot, error) {
	if !strings.HasPrefix(key, snapshotPrefix(workspaceID)) {
		return nil, domain.ErrSnapshotNotFound
	}

	data, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var snapshot domain.ReportSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// SnapshotKey returns the object key for a snapshot: workspaces/{id}/snapshots/{time}-{uuid}.json
func SnapshotKey(workspaceID int32, snapshot *domain.ReportSnapshot) string {
	return fmt.Sprintf("%s%s-%s.json", snapshotPrefix(workspaceID), snapshot.GeneratedAt.UTC().Format(snapshotKeyTimeFormat), uuid.New().String())
}

func snapshotPrefix(workspaceID int32) string {
	return fmt.Sprintf("workspaces/%d/snapshots/", workspaceID)
}
