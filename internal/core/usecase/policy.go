package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

const fallbackMaxPoints = 6

var citationPattern = regexp.MustCompile(`(?i)event_id\s*[:=]\s*(\d+)`)

// EnforceAnswerPolicy validates a raw model answer against the assembled
// context. It returns the answer to use and whether the raw answer was
// acceptable; callers substitute the deterministic fallback when it is not.
//
// The policy is zero-tolerance: an answer is accepted only when every
// identifier it cites has fragments in the context AND it cites at least
// one identifier. An uncited answer, however plausible, is rejected.
func EnforceAnswerPolicy(answer string, ctx []domain.ContextFragment) (string, bool) {
	if !hasAnyFragments(ctx) {
		return domain.NoContextReply, true
	}

	stripped := strings.TrimSpace(answer)
	if strings.HasPrefix(stripped, domain.NoContextReply) {
		return domain.NoContextReply, true
	}

	allowed := make(map[int64]struct{}, len(ctx))
	for _, c := range ctx {
		if len(c.Fragments) > 0 {
			allowed[c.EventID] = struct{}{}
		}
	}

	cited := make(map[int64]struct{})
	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		cited[id] = struct{}{}
	}

	if len(cited) == 0 {
		return "", false
	}
	for id := range cited {
		if _, ok := allowed[id]; !ok {
			return "", false
		}
	}
	return answer, true
}

// BuildFallbackAnswer renders a deterministic answer straight from context
// fragments: one bullet per record plus a trailing citations line that
// preserves first-seen order.
func BuildFallbackAnswer(ctx []domain.ContextFragment, maxPoints int) string {
	usable := make([]domain.ContextFragment, 0, len(ctx))
	for _, c := range ctx {
		if len(c.Fragments) > 0 {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return domain.NoContextReply
	}
	if len(usable) > maxPoints {
		usable = usable[:maxPoints]
	}

	lines := make([]string, 0, len(usable)+1)
	citations := make([]string, 0, len(usable))
	seenCitations := make(map[string]struct{})

	for _, c := range usable {
		citation := fmt.Sprintf("event_id:%d", c.EventID)
		if _, dup := seenCitations[citation]; !dup {
			seenCitations[citation] = struct{}{}
			citations = append(citations, citation)
		}

		start := c.Start
		if start == "" {
			start = "?"
		}
		label := c.Type
		if label == "" {
			label = "Incident"
		}
		if c.Classification != "" {
			label += " / " + c.Classification
		}
		lines = append(lines, fmt.Sprintf("- %s (%s) : %q [%s]", label, start, c.Fragments[0], citation))
	}

	lines = append(lines, fmt.Sprintf("Citations: [%s]", strings.Join(citations, ", ")))
	return strings.Join(lines, "\n")
}

func hasAnyFragments(ctx []domain.ContextFragment) bool {
	for _, c := range ctx {
		if len(c.Fragments) > 0 {
			return true
		}
	}
	return false
}
