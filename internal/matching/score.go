package matching

// Weights per criteria dimension. They sum to 100 and there is no partial
// credit within a dimension.
const (
	weightSex      = 40
	weightAge      = 20
	weightHeight   = 15
	weightHometown = 15
	weightLanguage = 10
)

// DefaultPassThreshold is the minimum directional score a pair must reach
// in both directions to be eligible for a match.
const DefaultPassThreshold = 70

// CriteriaScore reports how well a profile satisfies the other party's
// declared criteria, in [0,100].
func CriteriaScore(p Profile, c Criteria) int {
	score := 0
	if p.Sex == c.Sex {
		score += weightSex
	}
	if p.Age >= c.AgeMin && p.Age <= c.AgeMax {
		score += weightAge
	}
	if p.Height >= c.HeightMin && p.Height <= c.HeightMax {
		score += weightHeight
	}
	if p.Hometown == c.Hometown {
		score += weightHometown
	}
	if p.Language == c.Language {
		score += weightLanguage
	}
	return score
}
