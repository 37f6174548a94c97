package attendance

const (
	sessionOpenedSubject   = "rollcall.sessions.opened"
	sessionClosedSubject   = "rollcall.sessions.closed"
	checkinRecordedSubject = "rollcall.checkins.recorded"
)

func sessionEvent(s Session) map[string]any {
	return map[string]any{
		"session_id": s.ID,
		"course_id":  s.CourseID,
		"day":        s.Day.Format(dayFormat),
		"is_active":  s.IsActive,
		"ended_at":   s.EndedAt,
	}
}
