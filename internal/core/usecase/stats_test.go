package usecase

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

func TestPercentagesSumToExactlyOneHundred(t *testing.T) {
	cases := [][]int{
		{1, 1, 1},
		{3, 3, 3},
		{7, 2, 1},
		{33, 33, 34},
		{1, 1, 1, 1, 1, 1, 1},
		{999, 1},
		{50, 50},
		{5},
	}
	for _, counts := range cases {
		got := PercentagesSummingTo100(counts)
		if len(got) != len(counts) {
			t.Fatalf("PercentagesSummingTo100(%v) has length %d", counts, len(got))
		}

		sum := 0
		total := 0
		for _, c := range counts {
			total += c
		}
		for i, p := range got {
			if p < 0 {
				t.Errorf("negative percentage %d for %v", p, counts)
			}
			exact := float64(counts[i]) * 100.0 / float64(total)
			if math.Abs(float64(p)-exact) >= 1.0+1e-9 {
				t.Errorf("percentage %d for count %d deviates more than 1 from exact %.3f", p, counts[i], exact)
			}
			sum += p
		}
		if sum != 100 {
			t.Errorf("PercentagesSummingTo100(%v) = %v, sums to %d", counts, got, sum)
		}
	}
}

func TestPercentagesZeroTotalDoesNotPanic(t *testing.T) {
	got := PercentagesSummingTo100([]int{0, 0})
	if len(got) != 2 {
		t.Fatalf("unexpected length %d", len(got))
	}
	for _, p := range got {
		if p < 0 {
			t.Errorf("negative percentage in %v", got)
		}
	}
}

func TestPercentagesLargestRemainderTiesGoToEarlierRows(t *testing.T) {
	// Equal thirds floor to 33 each; the single leftover point goes to the
	// first row because remainders tie.
	got := PercentagesSummingTo100([]int{1, 1, 1})
	if !reflect.DeepEqual(got, []int{34, 33, 33}) {
		t.Errorf("PercentagesSummingTo100([1 1 1]) = %v, want [34 33 33]", got)
	}

	// 1/6 floors to 16 with remainder 0.67, 5/6 floors to 83 with remainder
	// 0.33: the larger remainder wins the leftover point.
	got = PercentagesSummingTo100([]int{1, 5})
	if !reflect.DeepEqual(got, []int{17, 83}) {
		t.Errorf("PercentagesSummingTo100([1 5]) = %v, want [17 83]", got)
	}
}

func TestFormatStatsAnswer(t *testing.T) {
	answer := FormatStatsAnswer([]domain.StatRow{
		{Label: "CRITICAL", Count: 6},
		{Label: "MAJOR", Count: 3},
		{Label: "MINOR", Count: 1},
	})

	if !strings.HasPrefix(answer, "Les principaux types d'incidents sont :") {
		t.Errorf("missing header: %q", answer)
	}
	for _, line := range []string{"1. CRITICAL (6) - 60%", "2. MAJOR (3) - 30%", "3. MINOR (1) - 10%"} {
		if !strings.Contains(answer, line) {
			t.Errorf("answer missing line %q:\n%s", line, answer)
		}
	}
}

func TestFormatStatsAnswerEmpty(t *testing.T) {
	if got := FormatStatsAnswer(nil); got != domain.NoContextReply {
		t.Errorf("empty stats should yield the fixed reply, got %q", got)
	}
}

func TestFormatFilteredCountAnswer(t *testing.T) {
	answer := FormatFilteredCountAnswer("FIRE", []string{"CRITICAL"}, 10, []domain.TypeCount{
		{Type: "FIRE", Classification: "CRITICAL", Count: 10},
	})

	if !strings.Contains(answer, "FIRE") || !strings.Contains(answer, "CRITICAL") {
		t.Errorf("header must name the active filters: %q", answer)
	}
	if !strings.Contains(answer, ": 10") {
		t.Errorf("header must carry the literal total: %q", answer)
	}
	if !strings.Contains(answer, "- FIRE / CRITICAL : 10") {
		t.Errorf("missing group line: %q", answer)
	}
}

func TestFormatFilteredCountAnswerZeroRows(t *testing.T) {
	answer := FormatFilteredCountAnswer("FIRE", []string{"CRITICAL"}, 0, nil)
	if !strings.HasPrefix(answer, "Aucun incident trouvé") {
		t.Errorf("zero rows must produce an explicit sentence, got %q", answer)
	}
	if !strings.Contains(answer, "FIRE") || !strings.Contains(answer, "CRITICAL") {
		t.Errorf("zero-row sentence must still name the filters: %q", answer)
	}
}

func TestFormatFilteredCountAnswerNullGroups(t *testing.T) {
	answer := FormatFilteredCountAnswer("", []string{"CRITICAL"}, 3, []domain.TypeCount{
		{Type: "", Classification: "CRITICAL", Count: 3},
	})
	if !strings.Contains(answer, "- N/A / CRITICAL : 3") {
		t.Errorf("NULL type should render as N/A: %q", answer)
	}
}
