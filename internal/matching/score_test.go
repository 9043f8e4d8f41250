package matching

import "testing"

func baseProfile() Profile {
	return Profile{
		UserID:   "1",
		Sex:      "female",
		Age:      28,
		Height:   165,
		Hometown: "Hanoi",
		Language: "vi",
	}
}

func baseCriteria() Criteria {
	return Criteria{
		UserID:    "2",
		Sex:       "female",
		AgeMin:    25,
		AgeMax:    35,
		HeightMin: 150,
		HeightMax: 175,
		Hometown:  "Hanoi",
		Language:  "vi",
	}
}

func TestCriteriaScoreWeights(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile, *Criteria)
		want   int
	}{
		{"all dimensions satisfied", func(p *Profile, c *Criteria) {}, 100},
		{"sex mismatch", func(p *Profile, c *Criteria) { p.Sex = "male" }, 60},
		{"age below range", func(p *Profile, c *Criteria) { p.Age = 24 }, 80},
		{"age at lower bound", func(p *Profile, c *Criteria) { p.Age = 25 }, 100},
		{"age at upper bound", func(p *Profile, c *Criteria) { p.Age = 35 }, 100},
		{"height above range", func(p *Profile, c *Criteria) { p.Height = 180 }, 85},
		{"hometown mismatch", func(p *Profile, c *Criteria) { p.Hometown = "Da Nang" }, 85},
		{"language mismatch", func(p *Profile, c *Criteria) { c.Language = "en" }, 90},
		{"nothing satisfied", func(p *Profile, c *Criteria) {
			p.Sex = "male"
			p.Age = 50
			p.Height = 200
			p.Hometown = "Hue"
			p.Language = "fr"
		}, 0},
		{"sex and age only", func(p *Profile, c *Criteria) {
			p.Height = 200
			p.Hometown = "Hue"
			p.Language = "fr"
		}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c := baseProfile(), baseCriteria()
			tt.mutate(&p, &c)
			got := CriteriaScore(p, c)
			if got != tt.want {
				t.Errorf("CriteriaScore() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("CriteriaScore() = %d, out of [0,100]", got)
			}
		})
	}
}

func TestCriteriaScoreIsDirectional(t *testing.T) {
	// A satisfying B's criteria says nothing about B satisfying A's.
	a := Profile{Sex: "male", Age: 30, Height: 178, Hometown: "Hanoi", Language: "vi"}
	bWants := Criteria{Sex: "male", AgeMin: 25, AgeMax: 40, HeightMin: 170, HeightMax: 190, Hometown: "Hanoi", Language: "vi"}

	b := Profile{Sex: "female", Age: 28, Height: 160, Hometown: "Hue", Language: "en"}
	aWants := Criteria{Sex: "female", AgeMin: 20, AgeMax: 25, HeightMin: 150, HeightMax: 155, Hometown: "Hanoi", Language: "vi"}

	if got := CriteriaScore(a, bWants); got != 100 {
		t.Errorf("a vs b's criteria = %d, want 100", got)
	}
	if got := CriteriaScore(b, aWants); got != 40 {
		t.Errorf("b vs a's criteria = %d, want 40", got)
	}
}
