package ports

import (
	"context"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

// QuestionAnswerer is the single caller-facing operation of the core.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question, orgUnitHint string) (*domain.AskResult, error)
}

// EventReindexer rebuilds the search index from the relational store.
type EventReindexer interface {
	Reindex(ctx context.Context) (int, error)
}
