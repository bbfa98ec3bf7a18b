package bootstrap

import (
	"context"
	"fmt"

	"github.com/Blackfireoff/Incident-Factory/internal/config"
	"github.com/Blackfireoff/Incident-Factory/internal/core/usecase"
	"github.com/Blackfireoff/Incident-Factory/internal/infrastructure/llm/ollama"
	natsqueue "github.com/Blackfireoff/Incident-Factory/internal/infrastructure/queue/nats"
	"github.com/Blackfireoff/Incident-Factory/internal/infrastructure/repository/postgres"
	"github.com/Blackfireoff/Incident-Factory/internal/infrastructure/resilience"
	"github.com/Blackfireoff/Incident-Factory/internal/infrastructure/search/opensearch"
)

// App wires every collaborator once; cmd/api and cmd/worker share it and
// pick the pieces they need.
type App struct {
	Config config.Config

	Events *postgres.EventRepository
	Search *opensearch.Client
	Queue  *natsqueue.Queue

	AskUC     *usecase.AskUseCase
	ReindexUC *usecase.ReindexUseCase

	closeFn func()
}

func New(_ context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	events := postgres.NewEventRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	search := opensearch.NewClient(opensearch.Config{
		BaseURL:     cfg.OpenSearchURL,
		Index:       cfg.OpenSearchIndex,
		Username:    cfg.OpenSearchUser,
		Password:    cfg.OpenSearchPassword,
		InsecureTLS: cfg.OpenSearchInsecureTLS,
	})

	llm := ollama.NewClient(ollama.Config{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
	}, executor)

	askUC := usecase.NewAskUseCase(events, search, llm, cfg.RAGContextLimit, cfg.RAGMaxTokens)
	reindexUC := usecase.NewReindexUseCase(events, search)

	return &App{
		Config: cfg,

		Events: events,
		Search: search,
		Queue:  queue,

		AskUC:     askUC,
		ReindexUC: reindexUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
