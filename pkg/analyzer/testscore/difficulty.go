package testscore

// Difficulty is the informational band for a test score total.
type Difficulty string

const (
	DifficultyTrivial   Difficulty = "Trivial"
	DifficultySimple    Difficulty = "Simple"
	DifficultyModerate  Difficulty = "Moderate"
	DifficultyComplex   Difficulty = "Complex"
	DifficultyDifficult Difficulty = "Difficult"
	DifficultyVeryHard  Difficulty = "VeryHard"
)

// DifficultyFor bands a total: <=10 Trivial, then one band per 10 points up to VeryHard above 50.
func DifficultyFor(total int) Difficulty {
	switch {
	case total <= 10:
		return DifficultyTrivial
	case total <= 20:
		return DifficultySimple
	case total <= 30:
		return DifficultyModerate
	case total <= 40:
		return DifficultyComplex
	case total <= 50:
		return DifficultyDifficult
	default:
		return DifficultyVeryHard
	}
}

// Automation describes how much human input test generation needs at this band.
func (d Difficulty) Automation() string {
	switch d {
	case DifficultyTrivial:
		return "Fully automatable"
	case DifficultySimple:
		return "Automated with minimal metadata"
	case DifficultyModerate:
		return "Needs good documentation"
	case DifficultyComplex:
		return "Requires detailed specifications"
	case DifficultyDifficult:
		return "May need manual test design"
	default:
		return "Extensive manual effort needed"
	}
}

// Difficulty returns the band for b.Total.
func (b Breakdown) Difficulty() Difficulty {
	return DifficultyFor(b.Total)
}
