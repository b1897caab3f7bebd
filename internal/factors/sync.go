package factors

import (
	"context"
	"time"

	"ghgreport/internal/config"
	"ghgreport/internal/storage"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// Sync replaces the stored factor table with the registry's current
// dataset revision.
func (s *SyncService) Sync(ctx context.Context) (int, error) {
	list, revision, err := s.client.GetDataset(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.ReplaceFactors(list); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("factors.last_sync", time.Now().UTC().Format(time.RFC3339))
	if revision != "" {
		_ = s.db.SetMetadata("factors.revision", revision)
	}
	return len(list), nil
}
