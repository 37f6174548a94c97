package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"rollcall/pkg/bus"
	"rollcall/pkg/db"
)

const dayFormat = "2006-01-02"

// SessionManager owns the per-(course, day) session lifecycle:
// NoSession -> Open -> Closed. Sessions are created lazily by the first
// check-in of the day or explicitly by a lecturer action; both paths go
// through OpenOrGetToday.
type SessionManager struct {
	pool *pgxpool.Pool
	orm  *gorm.DB
	bus  *bus.Bus
	now  func() time.Time
}

// NewSessionManager creates a SessionManager bound to the store.
func NewSessionManager(store *Store) (*SessionManager, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.DB == nil {
		return nil, errors.New("store DB is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}

	return &SessionManager{
		pool: store.DB,
		orm:  store.ORM,
		bus:  store.Bus,
		now:  time.Now,
	}, nil
}

type sessionRow struct {
	ID          uuid.UUID  `db:"id"`
	CourseID    uuid.UUID  `db:"course_id"`
	Day         time.Time  `db:"day"`
	LecturerLat *float64   `db:"lecturer_lat"`
	LecturerLon *float64   `db:"lecturer_lon"`
	IsActive    bool       `db:"is_active"`
	OpenedAt    time.Time  `db:"opened_at"`
	EndedAt     *time.Time `db:"ended_at"`
}

func (r sessionRow) toSession() Session {
	return Session{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Day:         r.Day,
		LecturerLat: r.LecturerLat,
		LecturerLon: r.LecturerLon,
		IsActive:    r.IsActive,
		OpenedAt:    r.OpenedAt,
		EndedAt:     r.EndedAt,
	}
}

// OpenOrGetToday returns today's session for the course, creating it if
// absent. Creation is an atomic insert guarded by the (course_id, day)
// unique constraint, so concurrent first check-ins race safely. The
// lecturer's last reported location is snapshotted onto the new session,
// and the denormalized courses.is_active projection is raised.
func (m *SessionManager) OpenOrGetToday(ctx context.Context, courseID uuid.UUID) (Session, error) {
	if courseID == uuid.Nil {
		return Session{}, ErrCourseNotFound
	}

	day := DayOf(m.now()).Format(dayFormat)

	tag, err := db.Exec(ctx, m.pool, `
INSERT INTO sessions (id, course_id, day, lecturer_lat, lecturer_lon, is_active, opened_at)
SELECT $1, c.id, $2::date, l.latitude, l.longitude, TRUE, $3
FROM courses c
LEFT JOIN lecturers l ON l.id = c.lecturer_id
WHERE c.id = $4
ON CONFLICT (course_id, day) DO NOTHING
`, uuid.New(), day, m.now().UTC(), courseID)
	if err != nil {
		return Session{}, err
	}

	var row sessionRow
	err = db.Get(ctx, m.pool, &row, `
SELECT id, course_id, day, lecturer_lat, lecturer_lon, is_active, opened_at, ended_at
FROM sessions
WHERE course_id = $1 AND day = $2::date
`, courseID, day)
	if err != nil {
		if pgxscan.NotFound(err) {
			// Insert matched no course row either.
			return Session{}, ErrCourseNotFound
		}
		return Session{}, err
	}

	session := row.toSession()

	if tag.RowsAffected() == 1 {
		if _, err := db.Exec(ctx, m.pool,
			`UPDATE courses SET is_active = TRUE, updated_at = $2 WHERE id = $1`,
			courseID, m.now().UTC()); err != nil {
			return Session{}, err
		}
		m.publish(ctx, sessionOpenedSubject, sessionEvent(session))
	}

	return session, nil
}

// ActiveForCourse returns the most recent open session for the course.
// A session whose ended_at has quietly passed counts as closed even if
// its stored flag says otherwise.
func (m *SessionManager) ActiveForCourse(ctx context.Context, courseID uuid.UUID) (Session, error) {
	var model sessionModel
	err := m.orm.WithContext(ctx).
		Where("course_id = ? AND is_active = ?", courseID, true).
		Order("day DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, ErrNoActiveSession
		}
		return Session{}, err
	}

	session := model.toSession()
	if !session.IsOpen(m.now()) {
		return Session{}, ErrNoActiveSession
	}
	return session, nil
}

// Close ends the course's most recent active session. Closing is terminal
// for that (course, day) pair; reopening the same date is not supported.
func (m *SessionManager) Close(ctx context.Context, courseID uuid.UUID) (Session, error) {
	session, err := m.ActiveForCourse(ctx, courseID)
	if err != nil {
		return Session{}, err
	}

	endedAt := m.now().UTC()
	err = m.orm.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ?", session.ID).
		Updates(map[string]any{
			"is_active": false,
			"ended_at":  endedAt,
		}).Error
	if err != nil {
		return Session{}, err
	}

	session.IsActive = false
	session.EndedAt = &endedAt

	m.publish(ctx, sessionClosedSubject, sessionEvent(session))

	return session, nil
}

// AddPresence records a student in the session's present-set. The insert
// is guarded by a unique (session_id, student_id) constraint, making
// concurrent and repeated submissions a no-op instead of a duplicate.
func (m *SessionManager) AddPresence(ctx context.Context, sessionID, studentID uuid.UUID) error {
	tag, err := db.Exec(ctx, m.pool, `
INSERT INTO session_presences (session_id, student_id, recorded_at)
VALUES ($1, $2, $3)
ON CONFLICT (session_id, student_id) DO NOTHING
`, sessionID, studentID, m.now().UTC())
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 1 {
		m.publish(ctx, checkinRecordedSubject, map[string]any{
			"session_id": sessionID,
			"student_id": studentID,
		})
	}

	return nil
}

func (m *SessionManager) publish(ctx context.Context, subject string, payload any) {
	if m.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = m.bus.Publish(ctx, subject, payload)
}
