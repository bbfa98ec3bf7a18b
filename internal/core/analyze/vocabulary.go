package analyze

import (
	"regexp"
	"sync"
)

// Fixed bilingual domain vocabulary. The lists are tuned to the incident
// corpus (chemical names, equipment areas, organizational terms); they make
// no claim of linguistic completeness, only of being deterministic and
// debuggable.

// phraseRule maps a surface pattern to one or more canonical must-phrases,
// so a solvent synonym collapses to a single phrase regardless of spelling.
type phraseRule struct {
	re      *regexp.Regexp
	phrases []string
}

var chemicalRules = []phraseRule{
	{regexp.MustCompile(`(?i)\bacetone\b`), []string{"acetone"}},
	{regexp.MustCompile(`(?i)\bac[ée]tone\b`), []string{"acetone"}},
	{regexp.MustCompile(`(?i)\bhydraulic oil\b`), []string{"hydraulic oil"}},
	{regexp.MustCompile(`(?i)\bhuile hydraulique\b`), []string{"hydraulic oil"}},
	{regexp.MustCompile(`(?i)\bsolvent\b`), []string{"solvent"}},
	{regexp.MustCompile(`(?i)\bsolvants?\b`), []string{"solvent"}},
	{regexp.MustCompile(`(?i)\bproduits?\s+chimiques?\b`), []string{"produits chimiques", "chemical"}},
	{regexp.MustCompile(`(?i)\bchemicals?\b`), []string{"produits chimiques", "chemical"}},
}

// Structured unit codes are matched case-sensitively: UNIT-042 is an
// identifier, "unit" is not.
var unitCodePattern = regexp.MustCompile(`\bUNIT-\d{3}\b`)

var areaRules = []phraseRule{
	{regexp.MustCompile(`(?i)Hazardous Waste Management`), []string{"Hazardous Waste Management"}},
	{regexp.MustCompile(`(?i)Chemical Storage`), []string{"Chemical Storage"}},
	{regexp.MustCompile(`(?i)Mixing facility`), []string{"Mixing facility"}},
}

// wordPattern tokenizes on ASCII plus the Latin-1 accented range so French
// words survive as single tokens.
var wordPattern = regexp.MustCompile(`[a-zA-Z0-9À-ÖØ-öø-ÿ-]+`)

var stopwords = []string{
	"les", "des", "dans", "avec", "pour", "par", "sur", "quoi",
	"quel", "quels", "quelle", "quelles", "une", "lors", "est",
	"sont", "un", "de", "et", "ou", "aux", "qui", "où",
	"the", "what", "were", "was", "when", "how", "why", "a", "an",
}

// normalizedStopwords is derived once from the fixed list; recomputation
// would be idempotent, so lazy first access is safe under concurrency.
var normalizedStopwords = sync.OnceValue(func() map[string]struct{} {
	set := make(map[string]struct{}, len(stopwords))
	for _, sw := range stopwords {
		set[Normalize(sw)] = struct{}{}
	}
	return set
})

// tokenSynonyms maps common misspellings and inflections to their canonical
// forms. Values are added alongside the original token, never instead of it.
var tokenSynonyms = map[string][]string{
	"incidant":    {"incident"},
	"incidants":   {"incident", "incidents"},
	"incidents":   {"incident"},
	"produits":    {"produit"},
	"produit":     {"product"},
	"chimiques":   {"chimique", "chemical", "chemicals"},
	"chimique":    {"chemical"},
	"recement":    {"recent", "recentement"},
	"recentement": {"recent"},
	"recemment":   {"recent"},
}

// recentHints are checked as substrings of the normalized question.
var recentHints = []string{
	"recent", "recente", "recentes", "recents", "recemment",
}

// actionHints flag sentences describing a response measure; used when
// selecting description excerpts as context fragments.
var actionHints = []string{
	"mesure", "action", "immédiate", "immediate", "contain", "évac",
	"neutralis", "isoler", "isolation", "fermeture", "secure",
}
