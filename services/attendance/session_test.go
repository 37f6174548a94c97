package attendance

import (
	"testing"
	"time"
)

func TestSessionIsOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{
			name:    "active without end",
			session: Session{IsActive: true},
			want:    true,
		},
		{
			name:    "active with future end",
			session: Session{IsActive: true, EndedAt: &later},
			want:    true,
		},
		{
			name:    "active with past end",
			session: Session{IsActive: true, EndedAt: &earlier},
			want:    false,
		},
		{
			name:    "inactive",
			session: Session{IsActive: false},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.IsOpen(now); got != tt.want {
				t.Fatalf("IsOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)

	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			name:  "truncates time of day",
			input: time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC),
			want:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "converts to UTC before truncating",
			input: time.Date(2026, 3, 11, 0, 30, 0, 0, lagos),
			want:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOf(tt.input); !got.Equal(tt.want) {
				t.Fatalf("DayOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
