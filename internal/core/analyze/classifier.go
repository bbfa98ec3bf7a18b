package analyze

import "regexp"

// QuestionKind is the classifier's binary outcome.
type QuestionKind int

const (
	// KindLookup is an open-ended question answered through retrieval and
	// language-model synthesis.
	KindLookup QuestionKind = iota
	// KindDistribution is a count/ranking/breakdown question answered by
	// direct aggregation, without invoking the language model.
	KindDistribution
)

// classifierRules is an ordered tagged-pattern table; the first matching
// rule decides. Kept as data rather than control flow so the patterns can
// be enumerated and extended independently of the dispatch.
var classifierRules = []struct {
	re   *regexp.Regexp
	kind QuestionKind
}{
	{regexp.MustCompile(`(?i)(principaux|top|plus\s+(fr[ée]quents?|courants?)|r[ée]partition|classement|types?\s+d[' ]incident)`), KindDistribution},
	{regexp.MustCompile(`(?i)(combien|nombre)\s+d[' ]?incidents?`), KindDistribution},
}

// Classify decides the execution strategy for a question.
func Classify(question string) QuestionKind {
	for _, rule := range classifierRules {
		if rule.re.MatchString(question) {
			return rule.kind
		}
	}
	return KindLookup
}

var uppercaseTokenPattern = regexp.MustCompile(`[A-Z]{2,}(?:_[A-Z]+)?`)

// TypeAndClassifications extracts an explicit type/classification filter
// from uppercase tokens in the raw question: with two or more tokens the
// first is the type and the rest are classifications; a single token is
// treated as classification-only.
func TypeAndClassifications(question string) (string, []string) {
	tokens := uppercaseTokenPattern.FindAllString(question, -1)
	if len(tokens) == 0 {
		return "", nil
	}
	if len(tokens) == 1 {
		return "", tokens
	}
	return tokens[0], tokens[1:]
}

var orgUnitRules = []struct {
	re       *regexp.Regexp
	patterns []string
}{
	{regexp.MustCompile(`(?i)ateliers?`), []string{"%atelier%"}},
	{regexp.MustCompile(`(?i)(production|prod\b)`), []string{"%production%", "%prod%"}},
	{regexp.MustCompile(`(?i)(usine|manufactur|ligne)`), []string{"%usine%", "%manufactur%", "%ligne%"}},
}

// OrgUnitPatterns derives organizational-unit name patterns (ILIKE form)
// from workshop/production/plant vocabulary in the question. Nil when no
// hint is present.
func OrgUnitPatterns(question string) []string {
	var patterns []string
	for _, rule := range orgUnitRules {
		if rule.re.MatchString(question) {
			patterns = append(patterns, rule.patterns...)
		}
	}
	return patterns
}
