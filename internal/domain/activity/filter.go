package activity

import (
	"strings"

	"gymportal/internal/domain/enrollment"
)

// Criteria narrows the activity list. The zero value matches everything.
// Criteria is replaced wholesale on every edit; it has no identity.
type Criteria struct {
	Query        string // matched against title or description
	Category     string // substring of category
	Weekday      string // exact weekday, case-insensitive
	OnlyEnrolled bool
}

// IsZero reports whether c imposes no constraint.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Filter returns the activities matching every non-empty criterion.
// PRE: none
// POST: Returns the ordered subsequence of activities satisfying all predicates
// INVARIANT: Relative order of activities is preserved; inputs are not mutated
func Filter(activities []Activity, enrollments []enrollment.Enrollment, c Criteria) []Activity {
	query := strings.ToLower(c.Query)
	category := strings.ToLower(c.Category)

	var enrolled map[int]bool
	if c.OnlyEnrolled {
		enrolled = enrollment.ActiveActivityIDs(enrollments)
	}

	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Title), query) &&
			!strings.Contains(strings.ToLower(a.Description), query) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(a.Category), category) {
			continue
		}
		if c.Weekday != "" && !strings.EqualFold(a.Weekday, c.Weekday) {
			continue
		}
		if c.OnlyEnrolled && !enrolled[a.ID] {
			continue
		}
		out = append(out, a)
	}
	return out
}
