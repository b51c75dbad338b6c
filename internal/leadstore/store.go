// Package leadstore provides lead persistence and retrieval backends:
// Postgres, SQLite, and a read-only Notion database source.
package leadstore

import (
	"context"

	"github.com/carnance/leadsync/internal/model"
)

// Source is the read side consumed by the sync pipeline. List returns leads
// in stable creation order; GetByLeadID returns nil without error when the
// lead does not exist.
type Source interface {
	List(ctx context.Context, skip, limit int) ([]model.Lead, error)
	GetByLeadID(ctx context.Context, leadID string) (*model.Lead, error)
}

// Store is a writable lead backend. Insert upserts on lead_id, preserving
// the original creation time.
type Store interface {
	Source
	Insert(ctx context.Context, lead model.Lead) error
	Migrate(ctx context.Context) error
	Close() error
}
