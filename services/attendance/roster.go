package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"rollcall/pkg/db"
	"rollcall/pkg/geo"
)

// RosterStore reads lecturers, students, courses and enrollments. It is
// the lookup surface check-in validation runs against.
type RosterStore struct {
	orm  *gorm.DB
	pool *pgxpool.Pool
}

func NewRosterStore(store *Store) *RosterStore {
	return &RosterStore{orm: store.ORM, pool: store.DB}
}

func (r *RosterStore) CourseByID(ctx context.Context, id uuid.UUID) (Course, error) {
	var m courseModel
	err := r.orm.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Course{}, ErrCourseNotFound
	}
	if err != nil {
		return Course{}, fmt.Errorf("load course %s: %w", id, err)
	}
	return m.toCourse(), nil
}

func (r *RosterStore) CourseByCode(ctx context.Context, code string) (Course, error) {
	var m courseModel
	err := r.orm.WithContext(ctx).Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Course{}, ErrCourseNotFound
	}
	if err != nil {
		return Course{}, fmt.Errorf("load course %q: %w", code, err)
	}
	return m.toCourse(), nil
}

func (r *RosterStore) StudentByCode(ctx context.Context, code string) (Student, error) {
	var m studentModel
	err := r.orm.WithContext(ctx).Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Student{}, ErrStudentNotFound
	}
	if err != nil {
		return Student{}, fmt.Errorf("load student %q: %w", code, err)
	}
	return m.toStudent(), nil
}

func (r *RosterStore) IsEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	var n int64
	err := r.orm.WithContext(ctx).
		Model(&enrollmentModel{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return n > 0, nil
}

// UpdateLecturerLocation records where the lecturer of a course currently
// is. Sessions for the course fence around this point when the course has
// no fixed center of its own.
func (r *RosterStore) UpdateLecturerLocation(ctx context.Context, courseID uuid.UUID, lat, lon float64) error {
	if err := geo.CheckCoordinate(lat, lon); err != nil {
		return &CheckInError{Kind: KindValidation, Distance: MissingLocationDistance, Err: err}
	}

	course, err := r.CourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.LecturerID == uuid.Nil {
		return ErrLecturerLocationUnset
	}

	res := r.orm.WithContext(ctx).
		Model(&lecturerModel{}).
		Where("id = ?", course.LecturerID).
		Updates(map[string]any{"latitude": lat, "longitude": lon})
	if res.Error != nil {
		return fmt.Errorf("update lecturer location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLecturerLocationUnset
	}
	return nil
}

// LecturerLocation resolves the coordinates check-ins for a course are
// measured against when the course itself has no fixed center.
func (r *RosterStore) LecturerLocation(ctx context.Context, courseID uuid.UUID) (lat, lon float64, err error) {
	course, err := r.CourseByID(ctx, courseID)
	if err != nil {
		return 0, 0, err
	}
	if course.LecturerID == uuid.Nil {
		return 0, 0, ErrLecturerLocationUnset
	}

	var m lecturerModel
	lerr := r.orm.WithContext(ctx).Where("id = ?", course.LecturerID).First(&m).Error
	if errors.Is(lerr, gorm.ErrRecordNotFound) {
		return 0, 0, ErrLecturerLocationUnset
	}
	if lerr != nil {
		return 0, 0, fmt.Errorf("load lecturer %s: %w", course.LecturerID, lerr)
	}
	if m.Latitude == nil || m.Longitude == nil {
		return 0, 0, ErrLecturerLocationUnset
	}
	return *m.Latitude, *m.Longitude, nil
}

// CourseAttendance is one course's slice of a student's attendance
// history: every day the student was marked present.
type CourseAttendance struct {
	CourseCode string   `json:"course_code"`
	CourseName string   `json:"course_name"`
	Days       []string `json:"days"`
}

type historyRow struct {
	CourseCode string    `db:"course_code"`
	CourseName string    `db:"course_name"`
	Day        time.Time `db:"day"`
}

// StudentHistory lists, per course, the days a student was recorded
// present. Courses are ordered by code and days oldest first.
func (r *RosterStore) StudentHistory(ctx context.Context, studentCode string) ([]CourseAttendance, error) {
	if _, err := r.StudentByCode(ctx, studentCode); err != nil {
		return nil, err
	}

	var rows []historyRow
	err := db.Select(ctx, r.pool, &rows, `
		SELECT c.code AS course_code, c.name AS course_name, s.day AS day
		FROM session_presences p
		JOIN sessions s ON s.id = p.session_id
		JOIN courses c ON c.id = s.course_id
		JOIN students st ON st.id = p.student_id
		WHERE st.code = $1
		ORDER BY c.code, s.day`, studentCode)
	if err != nil {
		return nil, fmt.Errorf("load history for %q: %w", studentCode, err)
	}

	history := make([]CourseAttendance, 0, len(rows))
	for _, row := range rows {
		day := row.Day.Format(dayFormat)
		if n := len(history); n > 0 && history[n-1].CourseCode == row.CourseCode {
			history[n-1].Days = append(history[n-1].Days, day)
			continue
		}
		history = append(history, CourseAttendance{
			CourseCode: row.CourseCode,
			CourseName: row.CourseName,
			Days:       []string{day},
		})
	}
	return history, nil
}
