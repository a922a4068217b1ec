package viewer

import (
	"context"

	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

type snapshotFetcher interface {
	FetchSnapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error)
}

// ProcessorSource reads snapshots from the processor service instead of the database.
type ProcessorSource struct {
	fetcher snapshotFetcher
}

func NewProcessorSource(fetcher snapshotFetcher) *ProcessorSource {
	return &ProcessorSource{fetcher: fetcher}
}

func (p *ProcessorSource) Snapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error) {
	return p.fetcher.FetchSnapshot(ctx, telegramID, businessName)
}
