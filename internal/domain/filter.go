package domain

import "strings"

// Filter returns the records whose name contains searchTerm
// (case-insensitive) and whose grade equals gradeFilter. An empty
// gradeFilter matches every grade, including absent. A record without a
// name never matches. Input order is preserved.
func Filter(records []Record, searchTerm string, gradeFilter Grade) []Record {
	term := strings.ToLower(searchTerm)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matchesName(r, term) && matchesGrade(r, gradeFilter) {
			out = append(out, r)
		}
	}
	return out
}

func matchesName(r Record, lowerTerm string) bool {
	if r.name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(r.name), lowerTerm)
}

func matchesGrade(r Record, gradeFilter Grade) bool {
	return gradeFilter == "" || r.grade == gradeFilter
}

// SelectView picks the records to display. With an active search or grade
// filter it returns filtered as-is. Otherwise it returns the first
// DefaultViewSize grade-A records of all, in collection order. This is a
// display default, not a ranking: no score or recency ordering is applied.
func SelectView(all, filtered []Record, searchTerm string, gradeFilter Grade) []Record {
	if searchTerm != "" || gradeFilter != "" {
		return filtered
	}

	out := make([]Record, 0, DefaultViewSize)
	for _, r := range all {
		if len(out) == DefaultViewSize {
			break
		}
		if r.grade == GradeA {
			out = append(out, r)
		}
	}
	return out
}

// ViewState is the user's current search box and grade selector.
type ViewState struct {
	SearchTerm  string
	GradeFilter Grade
}

// Active reports whether any filter is set.
func (s ViewState) Active() bool {
	return s.SearchTerm != "" || s.GradeFilter != ""
}

// Apply runs Filter and SelectView for the state.
func (s ViewState) Apply(all []Record) []Record {
	filtered := Filter(all, s.SearchTerm, s.GradeFilter)
	return SelectView(all, filtered, s.SearchTerm, s.GradeFilter)
}

// Resolve returns the first record whose name equals name exactly. The
// boolean is false when nothing matches. Establishments sharing a name are
// indistinguishable here; the earliest in collection order wins.
func Resolve(records []Record, name string) (Record, bool) {
	for _, r := range records {
		if r.name != "" && r.name == name {
			return r, true
		}
	}
	return Record{}, false
}
