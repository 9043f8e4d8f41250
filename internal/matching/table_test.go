package matching

import "testing"

func TestLoadCompatibilityTable(t *testing.T) {
	table, err := LoadCompatibilityTable()
	if err != nil {
		t.Fatalf("LoadCompatibilityTable: %v", err)
	}
	if table.Types() != 16 {
		t.Errorf("grid has %d types, want 16", table.Types())
	}
}

func TestCompatibilityScoreSymmetry(t *testing.T) {
	table, err := LoadCompatibilityTable()
	if err != nil {
		t.Fatalf("LoadCompatibilityTable: %v", err)
	}
	types := []string{
		"INTJ", "INTP", "ENTJ", "ENTP", "INFJ", "INFP", "ENFJ", "ENFP",
		"ISTJ", "ISFJ", "ESTJ", "ESFJ", "ISTP", "ISFP", "ESTP", "ESFP",
	}
	for _, a := range types {
		for _, b := range types {
			ab, okAB := table.Score(a, b)
			ba, okBA := table.Score(b, a)
			if !okAB || !okBA {
				t.Fatalf("Score(%s,%s) missing", a, b)
			}
			if ab != ba {
				t.Errorf("Score(%s,%s)=%d but Score(%s,%s)=%d", a, b, ab, b, a, ba)
			}
			if ab < 0 || ab > 100 {
				t.Errorf("Score(%s,%s)=%d, out of [0,100]", a, b, ab)
			}
		}
	}
}

func TestCompatibilityScoreUnknownType(t *testing.T) {
	table, err := LoadCompatibilityTable()
	if err != nil {
		t.Fatalf("LoadCompatibilityTable: %v", err)
	}
	if _, ok := table.Score("", "INTJ"); ok {
		t.Error("empty type should not score")
	}
	if _, ok := table.Score("INTJ", ""); ok {
		t.Error("empty type should not score")
	}
	if _, ok := table.Score("XXXX", "INTJ"); ok {
		t.Error("unknown type should not score")
	}
}

func TestParseCompatibilityTableRejectsAsymmetry(t *testing.T) {
	bad := []byte(`
tiers:
  good: 70
  bad: 30
grid:
  AA:
    AA: good
    BB: good
  BB:
    AA: bad
    BB: good
`)
	if _, err := ParseCompatibilityTable(bad); err == nil {
		t.Error("asymmetric grid should not parse")
	}
}

func TestParseCompatibilityTableRejectsUnknownTier(t *testing.T) {
	bad := []byte(`
tiers:
  good: 70
grid:
  AA:
    AA: stellar
`)
	if _, err := ParseCompatibilityTable(bad); err == nil {
		t.Error("unknown tier should not parse")
	}
}
