package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Blackfireoff/Incident-Factory/internal/core/analyze"
	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
	"github.com/Blackfireoff/Incident-Factory/internal/core/ports"
)

const (
	defaultContextLimit = 10
	topClassifications  = 10
	answerMaxTokens     = 400
)

// AskUseCase routes a question to the aggregate path or the retrieval path
// and produces a grounded answer either way.
type AskUseCase struct {
	events       ports.EventStore
	search       ports.SearchEngine
	llm          ports.Completer
	contextLimit int
	maxTokens    int
}

func NewAskUseCase(
	events ports.EventStore,
	search ports.SearchEngine,
	llm ports.Completer,
	contextLimit int,
	maxTokens int,
) *AskUseCase {
	if contextLimit <= 0 {
		contextLimit = defaultContextLimit
	}
	if maxTokens <= 0 {
		maxTokens = answerMaxTokens
	}
	return &AskUseCase{
		events:       events,
		search:       search,
		llm:          llm,
		contextLimit: contextLimit,
		maxTokens:    maxTokens,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, question, orgUnitHint string) (*domain.AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question text is required"))
	}

	if analyze.Classify(question) == analyze.KindDistribution {
		return uc.answerDistribution(ctx, question, orgUnitHint)
	}
	return uc.answerLookup(ctx, question)
}

// answerDistribution serves count/ranking questions from the relational
// store; the language model is never invoked on this path.
func (uc *AskUseCase) answerDistribution(ctx context.Context, question, orgUnitHint string) (*domain.AskResult, error) {
	var ouPatterns []string
	if strings.TrimSpace(orgUnitHint) != "" {
		ouPatterns = []string{"%" + strings.TrimSpace(orgUnitHint) + "%"}
	} else {
		ouPatterns = analyze.OrgUnitPatterns(question)
	}

	typeFilter, classifications := analyze.TypeAndClassifications(question)
	if typeFilter != "" || len(classifications) > 0 {
		total, rows, err := uc.events.CountByTypeAndClassification(ctx, typeFilter, classifications, ouPatterns)
		if err != nil {
			return nil, fmt.Errorf("count incidents: %w", err)
		}
		return &domain.AskResult{
			Status:     "success",
			Question:   question,
			Answer:     FormatFilteredCountAnswer(typeFilter, classifications, total, rows),
			Source:     domain.SourceAnalytics,
			StatsCount: &total,
		}, nil
	}

	stats, err := uc.events.TopClassifications(ctx, topClassifications, ouPatterns)
	if err != nil {
		return nil, fmt.Errorf("top classifications: %w", err)
	}
	count := len(stats)
	return &domain.AskResult{
		Status:     "success",
		Question:   question,
		Answer:     FormatStatsAnswer(stats),
		Source:     domain.SourceAnalytics,
		StatsCount: &count,
	}, nil
}

// answerLookup runs the retrieval path: signal extraction, layered context
// assembly, model completion, then policy enforcement.
func (uc *AskUseCase) answerLookup(ctx context.Context, question string) (*domain.AskResult, error) {
	signals := analyze.Signals(question)
	filters := BuildFilterSet(signals)

	fragments, err := uc.assembleContext(ctx, question, signals, filters)
	if err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}

	system, user := buildPrompts(question, fragments)
	raw, err := uc.llm.Complete(ctx, system, user, domain.CompletionOptions{
		Temperature: 0.0,
		MaxTokens:   uc.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("complete answer: %w", err)
	}

	answer, valid := EnforceAnswerPolicy(raw, fragments)
	if !valid {
		answer = BuildFallbackAnswer(fragments, fallbackMaxPoints)
	}

	count := len(fragments)
	return &domain.AskResult{
		Status:         "success",
		Question:       question,
		Answer:         answer,
		Source:         domain.SourceRAG,
		ContextCount:   &count,
		PolicyFallback: !valid,
	}, nil
}
