package domain

import "sort"

// GradeDistribution counts records per letter grade. Absent grades are not
// counted in any bucket.
type GradeDistribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
}

// Total returns the number of graded records.
func (d GradeDistribution) Total() int {
	return d.A + d.B + d.C
}

// ScoreAverage is the mean health score over Count scored records.
// Count == 0 means the average is not computable and Value is meaningless.
type ScoreAverage struct {
	Value float64
	Count int
}

// Computable reports whether at least one record had a score.
func (a ScoreAverage) Computable() bool {
	return a.Count > 0
}

// ZipCount is the number of records sharing a zipcode.
type ZipCount struct {
	Zipcode string `json:"zipcode"`
	Count   int    `json:"count"`
}

// Summary bundles the aggregate statistics of one collection.
type Summary struct {
	Total   int
	Grades  GradeDistribution
	Average ScoreAverage
	TopZips []ZipCount
}

// CountGrades tallies A, B and C grades.
func CountGrades(records []Record) GradeDistribution {
	var d GradeDistribution
	for _, r := range records {
		switch r.grade {
		case GradeA:
			d.A++
		case GradeB:
			d.B++
		case GradeC:
			d.C++
		}
	}
	return d
}

// AverageScore averages the present health scores.
func AverageScore(records []Record) ScoreAverage {
	var (
		sum float64
		n   int
	)
	for _, r := range records {
		if r.hasScore {
			sum += r.score
			n++
		}
	}
	if n == 0 {
		return ScoreAverage{}
	}
	return ScoreAverage{Value: sum / float64(n), Count: n}
}

// TopZipCodes groups records by zipcode and returns the n largest groups,
// largest first. Records without a zipcode are skipped. Groups with equal
// counts keep the order in which their zipcode was first encountered; the
// zipcode value itself is never used as a tie breaker.
func TopZipCodes(records []Record, n int) []ZipCount {
	if n <= 0 {
		return []ZipCount{}
	}

	index := make(map[string]int)
	groups := make([]ZipCount, 0)
	for _, r := range records {
		if r.zipcode == "" {
			continue
		}
		i, ok := index[r.zipcode]
		if !ok {
			i = len(groups)
			index[r.zipcode] = i
			groups = append(groups, ZipCount{Zipcode: r.zipcode})
		}
		groups[i].Count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})

	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// Summarize computes every aggregate used by the list view.
func Summarize(records []Record) Summary {
	return Summary{
		Total:   len(records),
		Grades:  CountGrades(records),
		Average: AverageScore(records),
		TopZips: TopZipCodes(records, TopZipLimit),
	}
}
