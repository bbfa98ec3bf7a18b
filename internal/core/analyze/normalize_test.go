package analyze

import "testing"

func TestNormalizeStripsAccentsAndCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Événement", "evenement"},
		{"DÉVERSEMENT d'Acétone", "deversement d'acetone"},
		{"déjà vu", "deja vu"},
		{"plain ascii", "plain ascii"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Événement", "huile hydraulique", "ACÉTONE", "mixte-Déjà"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeEquatesAccentedVariants(t *testing.T) {
	if Normalize("Événement") != Normalize("evenement") {
		t.Error("accented and plain variants should normalize identically")
	}
	if Normalize("acétone") != Normalize("ACETONE") {
		t.Error("case and accents should both be ignored")
	}
}
