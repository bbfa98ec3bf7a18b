package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

// PercentagesSummingTo100 converts counts into integer percentages that sum
// to exactly 100, using the largest-remainder method: floor every exact
// share, then hand the leftover points to the rows with the biggest
// fractional remainder, ties broken by original order.
func PercentagesSummingTo100(counts []int) []int {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		total = 1
	}

	raw := make([]float64, len(counts))
	floors := make([]int, len(counts))
	floorSum := 0
	for i, c := range counts {
		raw[i] = float64(c) * 100.0 / float64(total)
		floors[i] = int(raw[i])
		floorSum += floors[i]
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return raw[order[a]]-float64(floors[order[a]]) > raw[order[b]]-float64(floors[order[b]])
	})

	for i := 0; i < 100-floorSum && i < len(order); i++ {
		floors[order[i]]++
	}
	return floors
}

// FormatStatsAnswer renders the generic top-classification ranking.
func FormatStatsAnswer(stats []domain.StatRow) string {
	if len(stats) == 0 {
		return domain.NoContextReply
	}

	counts := make([]int, len(stats))
	for i, row := range stats {
		counts[i] = row.Count
	}
	percentages := PercentagesSummingTo100(counts)

	lines := make([]string, len(stats))
	for i, row := range stats {
		lines[i] = fmt.Sprintf("%d. %s (%d) - %d%%", i+1, row.Label, row.Count, percentages[i])
	}
	return "Les principaux types d'incidents sont :\n\n" + strings.Join(lines, "\n")
}

// FormatFilteredCountAnswer renders the parametrized count answer: a header
// naming the active filters and total, then one line per group. Zero rows
// produce an explicit "no incidents found" sentence instead of an empty
// table.
func FormatFilteredCountAnswer(typeFilter string, classifications []string, total int, rows []domain.TypeCount) string {
	if len(rows) == 0 {
		target := "toutes classes"
		if len(classifications) > 0 {
			target = strings.Join(classifications, ", ")
		}
		if typeFilter != "" {
			return fmt.Sprintf("Aucun incident trouvé pour le type %s et les classifications %s.", typeFilter, target)
		}
		return fmt.Sprintf("Aucun incident trouvé pour les classifications %s.", target)
	}

	var header string
	switch {
	case typeFilter != "" && len(classifications) > 0:
		header = fmt.Sprintf("Nombre d'incidents pour le type %s et les classifications %s : %d",
			typeFilter, strings.Join(classifications, ", "), total)
	case typeFilter != "":
		header = fmt.Sprintf("Nombre d'incidents pour le type %s : %d", typeFilter, total)
	default:
		header = fmt.Sprintf("Nombre d'incidents pour les classifications %s : %d",
			strings.Join(classifications, ", "), total)
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, header)
	for _, row := range rows {
		typ := row.Type
		if typ == "" {
			typ = "N/A"
		}
		cls := row.Classification
		if cls == "" {
			cls = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- %s / %s : %d", typ, cls, row.Count))
	}
	return strings.Join(lines, "\n")
}
