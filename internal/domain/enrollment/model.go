package enrollment

// Enrollment is a user's registration against an activity.
// Only enrollments with Active set represent a current enrollment; the backend
// keeps at most one active enrollment per user and activity.
type Enrollment struct {
	UserID     int
	ActivityID int
	EnrolledAt string // as sent by the backend, not parsed
	Active     bool
}

// ActiveActivityIDs returns the set of activity IDs with an active enrollment.
// PRE: none
// POST: Returns a non-nil set; inactive enrollments are ignored
func ActiveActivityIDs(list []Enrollment) map[int]bool {
	ids := make(map[int]bool, len(list))
	for _, e := range list {
		if e.Active {
			ids[e.ActivityID] = true
		}
	}
	return ids
}

// IsEnrolled reports whether some active enrollment references activityID.
// INVARIANT: list is not mutated
func IsEnrolled(list []Enrollment, activityID int) bool {
	for _, e := range list {
		if e.Active && e.ActivityID == activityID {
			return true
		}
	}
	return false
}

// OnlyActive returns the active subset of list, preserving order.
func OnlyActive(list []Enrollment) []Enrollment {
	out := make([]Enrollment, 0, len(list))
	for _, e := range list {
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}
