package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Blackfireoff/Incident-Factory/internal/core/ports"
)

// ReindexUseCase rebuilds the search index from the relational store: the
// index is recreated from scratch so mapping changes take effect, every
// enriched event row is indexed with its aggregate full-text field, and the
// index is refreshed once at the end.
type ReindexUseCase struct {
	events ports.EventStore
	index  ports.SearchIndexer
}

func NewReindexUseCase(events ports.EventStore, index ports.SearchIndexer) *ReindexUseCase {
	return &ReindexUseCase{
		events: events,
		index:  index,
	}
}

func (uc *ReindexUseCase) Reindex(ctx context.Context) (int, error) {
	docs, err := uc.events.ListEventDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list event documents: %w", err)
	}

	if err := uc.index.RecreateIndex(ctx); err != nil {
		return 0, fmt.Errorf("recreate index: %w", err)
	}

	indexed := 0
	for _, doc := range docs {
		doc.FullText = doc.BuildFullText()
		if err := uc.index.IndexEvent(ctx, doc); err != nil {
			slog.Warn("index_event_failed", "event_id", doc.EventID, "error", err)
			continue
		}
		indexed++
	}

	if err := uc.index.Refresh(ctx); err != nil {
		return indexed, fmt.Errorf("refresh index: %w", err)
	}
	return indexed, nil
}
