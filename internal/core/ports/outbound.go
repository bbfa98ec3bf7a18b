package ports

import (
	"context"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

// EventStore reads aggregate and reindex data from the relational store.
// All queries are read-only; the incident schema is owned upstream.
type EventStore interface {
	CountByTypeAndClassification(ctx context.Context, typeFilter string, classifications []string, ouPatterns []string) (int, []domain.TypeCount, error)
	TopClassifications(ctx context.Context, limit int, ouPatterns []string) ([]domain.StatRow, error)
	ListEventDocuments(ctx context.Context) ([]domain.EventDocument, error)
}

// SearchEngine runs relevance queries against the incident index.
type SearchEngine interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error)
	SearchRecent(ctx context.Context, size int) ([]domain.SearchHit, error)
}

// SearchIndexer manages the index lifecycle during reindexing. The index,
// unlike the relational schema, is owned by this system.
type SearchIndexer interface {
	RecreateIndex(ctx context.Context) error
	IndexEvent(ctx context.Context, doc domain.EventDocument) error
	Refresh(ctx context.Context) error
	CountDocuments(ctx context.Context) (int, error)
}

// Completer is the language model: system instruction plus user content in,
// one completion string out. No state is carried across calls.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts domain.CompletionOptions) (string, error)
}

// ReindexQueue carries reindex requests from the API to the worker.
type ReindexQueue interface {
	PublishReindexRequested(ctx context.Context) error
	SubscribeReindexRequested(ctx context.Context, handler func(context.Context) error) error
}
