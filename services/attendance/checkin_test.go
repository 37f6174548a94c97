package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeTokens struct {
	tokens map[string]Token
	errs   map[string]error
}

func (f *fakeTokens) Resolve(_ context.Context, value string) (Token, error) {
	if err, ok := f.errs[value]; ok {
		return Token{}, err
	}
	token, ok := f.tokens[value]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	return token, nil
}

type fakeRoster struct {
	students map[string]Student
	courses  map[uuid.UUID]Course
	enrolled map[uuid.UUID]map[uuid.UUID]bool
}

func (f *fakeRoster) StudentByCode(_ context.Context, code string) (Student, error) {
	s, ok := f.students[code]
	if !ok {
		return Student{}, ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeRoster) CourseByID(_ context.Context, id uuid.UUID) (Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeRoster) IsEnrolled(_ context.Context, courseID, studentID uuid.UUID) (bool, error) {
	return f.enrolled[courseID][studentID], nil
}

type fakeSessions struct {
	active    map[uuid.UUID]Session
	presences map[uuid.UUID]map[uuid.UUID]bool
	opened    int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		active:    make(map[uuid.UUID]Session),
		presences: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeSessions) OpenOrGetToday(_ context.Context, courseID uuid.UUID) (Session, error) {
	if s, ok := f.active[courseID]; ok {
		return s, nil
	}
	s := Session{
		ID:       uuid.New(),
		CourseID: courseID,
		Day:      DayOf(time.Now()),
		IsActive: true,
		OpenedAt: time.Now(),
	}
	f.active[courseID] = s
	f.opened++
	return s, nil
}

func (f *fakeSessions) ActiveForCourse(_ context.Context, courseID uuid.UUID) (Session, error) {
	s, ok := f.active[courseID]
	if !ok {
		return Session{}, ErrNoActiveSession
	}
	return s, nil
}

func (f *fakeSessions) AddPresence(_ context.Context, sessionID, studentID uuid.UUID) error {
	if f.presences[sessionID] == nil {
		f.presences[sessionID] = make(map[uuid.UUID]bool)
	}
	f.presences[sessionID][studentID] = true
	return nil
}

func (f *fakeSessions) presentCount(sessionID uuid.UUID) int {
	return len(f.presences[sessionID])
}

type checkInFixture struct {
	tokens    *fakeTokens
	roster    *fakeRoster
	sessions  *fakeSessions
	processor *Processor
	course    Course
	student   Student
}

func newCheckInFixture(t *testing.T) *checkInFixture {
	t.Helper()

	course := Course{
		ID:   uuid.New(),
		Code: "CS101",
		Name: "Intro to Computing",
		Fence: Geofence{
			Lat:          fptr(5.6037),
			Lon:          fptr(-0.1870),
			RadiusMeters: 100,
		},
	}
	student := Student{ID: uuid.New(), Code: "ST-001", Name: "Ama"}

	tokens := &fakeTokens{
		tokens: map[string]Token{
			"ABC123": {
				ID:        uuid.New(),
				CourseID:  course.ID,
				Value:     "ABC123",
				ExpiresAt: time.Now().Add(time.Hour),
				IsActive:  true,
			},
		},
		errs: map[string]error{"EXPIRED1": ErrTokenExpired},
	}
	roster := &fakeRoster{
		students: map[string]Student{student.Code: student},
		courses:  map[uuid.UUID]Course{course.ID: course},
		enrolled: map[uuid.UUID]map[uuid.UUID]bool{
			course.ID: {student.ID: true},
		},
	}
	sessions := newFakeSessions()

	processor, err := NewProcessor(tokens, roster, sessions)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	return &checkInFixture{
		tokens:    tokens,
		roster:    roster,
		sessions:  sessions,
		processor: processor,
		course:    course,
		student:   student,
	}
}

func TestCheckInSuccess(t *testing.T) {
	fix := newCheckInFixture(t)
	ctx := context.Background()

	result, err := fix.processor.CheckIn(ctx, "ST-001", "ABC123", fptr(5.60415), fptr(-0.1870))
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if result.SessionID == uuid.Nil {
		t.Fatal("CheckIn() returned zero session id")
	}
	if result.Distance <= 0 || result.Distance > 100 {
		t.Fatalf("CheckIn() distance = %v, want within (0, 100]", result.Distance)
	}
	if got := fix.sessions.presentCount(result.SessionID); got != 1 {
		t.Fatalf("present count = %d, want 1", got)
	}
}

func TestCheckInIdempotent(t *testing.T) {
	fix := newCheckInFixture(t)
	ctx := context.Background()

	first, err := fix.processor.CheckIn(ctx, "ST-001", "ABC123", fptr(5.6037), fptr(-0.1870))
	if err != nil {
		t.Fatalf("first CheckIn() error = %v", err)
	}
	second, err := fix.processor.CheckIn(ctx, "ST-001", "ABC123", fptr(5.6037), fptr(-0.1870))
	if err != nil {
		t.Fatalf("second CheckIn() error = %v", err)
	}
	if first.SessionID != second.SessionID {
		t.Fatalf("sessions differ across retries: %s vs %s", first.SessionID, second.SessionID)
	}
	if got := fix.sessions.presentCount(first.SessionID); got != 1 {
		t.Fatalf("present count = %d, want 1 after duplicate check-in", got)
	}
	if fix.sessions.opened != 1 {
		t.Fatalf("opened %d sessions, want 1", fix.sessions.opened)
	}
}

func TestCheckInFailureOrder(t *testing.T) {
	tests := []struct {
		name     string
		student  string
		token    string
		lat, lon *float64
		wantKind Kind
	}{
		{
			name:     "unknown token",
			student:  "ST-001",
			token:    "NOPE",
			lat:      fptr(5.6037),
			lon:      fptr(-0.1870),
			wantKind: KindInvalidToken,
		},
		{
			name:     "expired token",
			student:  "ST-001",
			token:    "EXPIRED1",
			lat:      fptr(5.6037),
			lon:      fptr(-0.1870),
			wantKind: KindInvalidToken,
		},
		{
			name:     "unknown student",
			student:  "ST-404",
			token:    "ABC123",
			lat:      fptr(5.6037),
			lon:      fptr(-0.1870),
			wantKind: KindValidation,
		},
		{
			name:     "not enrolled",
			student:  "ST-002",
			token:    "ABC123",
			lat:      fptr(5.6037),
			lon:      fptr(-0.1870),
			wantKind: KindNotEnrolled,
		},
		{
			name:     "location missing",
			student:  "ST-001",
			token:    "ABC123",
			wantKind: KindLocationRequired,
		},
		{
			name:     "out of range",
			student:  "ST-001",
			token:    "ABC123",
			lat:      fptr(5.7000),
			lon:      fptr(-0.1870),
			wantKind: KindOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := newCheckInFixture(t)
			fix.roster.students["ST-002"] = Student{ID: uuid.New(), Code: "ST-002", Name: "Kofi"}

			_, err := fix.processor.CheckIn(context.Background(), tt.student, tt.token, tt.lat, tt.lon)
			var failure *CheckInError
			if !errors.As(err, &failure) {
				t.Fatalf("CheckIn() error = %v, want *CheckInError", err)
			}
			if failure.Kind != tt.wantKind {
				t.Fatalf("CheckIn() kind = %s, want %s", failure.Kind, tt.wantKind)
			}
			if fix.sessions.opened != 0 {
				t.Fatalf("validation failure opened %d sessions, want 0", fix.sessions.opened)
			}
		})
	}
}

func TestCheckInFailureDistances(t *testing.T) {
	fix := newCheckInFixture(t)
	ctx := context.Background()

	_, err := fix.processor.CheckIn(ctx, "ST-001", "ABC123", nil, nil)
	var failure *CheckInError
	if !errors.As(err, &failure) {
		t.Fatalf("CheckIn() error = %v, want *CheckInError", err)
	}
	if failure.Distance != MissingLocationDistance {
		t.Fatalf("missing location distance = %v, want %v", failure.Distance, MissingLocationDistance)
	}

	_, err = fix.processor.CheckIn(ctx, "ST-001", "ABC123", fptr(5.7000), fptr(-0.1870))
	if !errors.As(err, &failure) {
		t.Fatalf("CheckIn() error = %v, want *CheckInError", err)
	}
	if failure.Distance <= 0 {
		t.Fatalf("out of range distance = %v, want > 0", failure.Distance)
	}
}
