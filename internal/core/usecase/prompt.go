package usecase

import (
	"fmt"
	"strings"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

const extractiveSystemPrompt = "Tu es un assistant EXTRACTIF. Tu DOIS répondre uniquement avec des informations présentes " +
	"dans le CONTEXTE (fragments) fourni ci-dessous. " +
	"Chaque puce doit correspondre à une information explicite du contexte. " +
	"Interdictions: ne pas inventer, ne pas fusionner des éléments de fragments sans lien, " +
	"ne pas extrapoler à partir d'autres incidents. " +
	"Si le contexte ne contient pas la réponse, réponds exactement: " +
	"\"" + domain.NoContextReply + "\" sans ajouter d'autre texte. " +
	"Ajoute une courte citation entre guillemets après chaque puce, et cite les event_id utilisés."

// buildPrompts renders the system instruction and the user content handed
// to the language model: the question plus one provenance-prefixed line per
// context fragment.
func buildPrompts(question string, ctx []domain.ContextFragment) (string, string) {
	contextText := "(aucun contexte trouvé)"
	if len(ctx) > 0 {
		var blocks []string
		for _, c := range ctx {
			start := c.Start
			if start == "" {
				start = "?"
			}
			end := c.End
			if end == "" {
				end = "?"
			}
			prefix := fmt.Sprintf("[event_id=%d; start=%s; end=%s]", c.EventID, start, end)
			for _, frag := range c.Fragments {
				blocks = append(blocks, prefix+" "+frag)
			}
		}
		contextText = strings.Join(blocks, "\n")
	}

	user := fmt.Sprintf(
		"Question: %s\n\n"+
			"CONTEXT FRAGMENTS:\n%s\n\n"+
			"Consignes de sortie:\n"+
			"- Réponds en puces, 3 à 6 points maximum.\n"+
			"- Chaque puce = une mesure/action/constat présent dans un fragment, avec une mini-citation exacte entre guillemets.\n"+
			"- Termine par: Citations: [event_id:...]\n"+
			"- Si le contexte ne permet pas de répondre, réponds exactement \"%s\" sans ajouter aucun autre texte (pas de proverbes, pas de conclusion).\n",
		question, contextText, domain.NoContextReply,
	)
	return extractiveSystemPrompt, user
}
