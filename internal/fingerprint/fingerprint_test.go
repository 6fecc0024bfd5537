package fingerprint

import "testing"

func TestHash_Deterministic(t *testing.T) {
	texts := []string{
		"",
		"We collect personal data to provide our services.",
		"We collect personal data to provide our services.\n\nWe may share data with partners.",
	}

	for _, text := range texts {
		first := Hash(text)
		second := Hash(text)

		if first != second {
			t.Errorf("Hash(%q) not deterministic: %s vs %s", text, first, second)
		}

		if len(first) != 64 {
			t.Errorf("Hash(%q) length: expected 64 hex chars, got %d", text, len(first))
		}
	}
}

func TestHash_DistinctInputs(t *testing.T) {
	a := Hash("We do not sell your personal data.")
	b := Hash("We do not sell your personal data. ")

	if a == b {
		t.Error("expected distinct digests for texts differing by one byte")
	}
}

func TestHash_KnownVector(t *testing.T) {
	// SHA-256 of the empty string
	expected := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := Hash(""); got != expected {
		t.Errorf("Hash(\"\"): expected %s, got %s", expected, got)
	}
}
