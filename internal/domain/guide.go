package domain

import "strconv"

// ScoreBand is one row of the public health score guide.
type ScoreBand struct {
	Min     int    `json:"min"`
	Max     int    `json:"max,omitempty"` // 0 means open-ended
	Grade   Grade  `json:"grade"`
	Meaning string `json:"meaning"`
}

// Label renders the band's range, e.g. "0-13" or "28 or higher".
func (b ScoreBand) Label() string {
	if b.Max == 0 {
		return strconv.Itoa(b.Min) + " or higher"
	}
	return strconv.Itoa(b.Min) + "-" + strconv.Itoa(b.Max)
}

var scoreGuide = []ScoreBand{
	{Min: 0, Max: 13, Grade: GradeA, Meaning: "Very good"},
	{Min: 14, Max: 27, Grade: GradeB, Meaning: "Okay but some problems"},
	{Min: 28, Grade: GradeC, Meaning: "Poor or have some issues"},
}

// ScoreGuide returns a copy of the score-to-grade guide.
func ScoreGuide() []ScoreBand {
	out := make([]ScoreBand, len(scoreGuide))
	copy(out, scoreGuide)
	return out
}

// GradeForScore maps a score onto the guide. Negative scores have no grade.
// Informational only: a record's reported grade is never replaced by this.
func GradeForScore(score float64) Grade {
	switch {
	case score < 0:
		return ""
	case score < 14:
		return GradeA
	case score < 28:
		return GradeB
	default:
		return GradeC
	}
}
