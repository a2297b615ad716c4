package connector

import (
	"context"

	"github.com/tieubaoca/rag-be/types"
)

// Connector is implemented by document sources. FetchAllDocuments never
// fails for partition-level errors; those are logged and skipped so that one
// bad space cannot sink a sync run.
type Connector interface {
	Connect(ctx context.Context) error
	FetchAllDocuments(ctx context.Context) ([]types.Document, error)
	SourceName() string
}
