package domain

// NoContextReply is the fixed reply used whenever no grounded answer can be
// produced. The policy enforcer also recognizes it verbatim in model output.
const NoContextReply = "Je ne sais pas sur la base du contexte fourni."

// CompletionOptions are the generation parameters passed to the language
// model collaborator.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// AskResult is the caller-facing outcome of one question. Exactly one of
// StatsCount or ContextCount is set, depending on the execution path.
type AskResult struct {
	Status       string `json:"status"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Source       string `json:"source"`
	StatsCount   *int   `json:"stats_count,omitempty"`
	ContextCount *int   `json:"context_count,omitempty"`

	// PolicyFallback marks answers where the model output was rejected by
	// the citation policy. Observability only, never serialized.
	PolicyFallback bool `json:"-"`
}

const (
	SourceAnalytics = "analytics"
	SourceRAG       = "rag"
)
