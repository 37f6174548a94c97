package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PendingStore is the parked-record surface the reconciler drains.
// *PendingQueue satisfies it.
type PendingStore interface {
	HasRecent(ctx context.Context, studentCode string, courseID uuid.UUID, token string, ts time.Time) (bool, error)
	Create(ctx context.Context, rec PendingCheckIn) (PendingCheckIn, error)
	Unsynced(ctx context.Context) ([]PendingCheckIn, error)
	MarkSynced(ctx context.Context, id int64, at time.Time) error
}

// RawCheckIn is one offline check-in as submitted by a client sync batch.
type RawCheckIn struct {
	StudentCode string         `json:"student_id"`
	CourseID    uuid.UUID      `json:"course_id"`
	Token       string         `json:"token"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Timestamp   time.Time      `json:"timestamp"`
	DeviceID    string         `json:"device_id"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// BatchError reports one record's terminal failure inside a sync batch.
type BatchError struct {
	Index     int    `json:"index"`
	StudentID string `json:"student_id"`
	Error     string `json:"error"`
}

// BatchResult summarizes a sync batch. Skipped duplicates count toward
// Total but neither Synced nor Pending.
type BatchResult struct {
	Synced  int          `json:"synced"`
	Pending int          `json:"pending"`
	Total   int          `json:"total"`
	Errors  []BatchError `json:"errors,omitempty"`
}

// PendingResult summarizes a replay pass over parked records.
type PendingResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// Reconciler merges offline check-ins into live sessions. Records that
// reference tokens or sessions the server has not seen yet are parked and
// replayed on demand.
type Reconciler struct {
	tokens   TokenDirectory
	roster   Roster
	sessions SessionStore
	pending  PendingStore
	now      func() time.Time
}

func NewReconciler(tokens TokenDirectory, roster Roster, sessions SessionStore, pending PendingStore) (*Reconciler, error) {
	if tokens == nil || roster == nil || sessions == nil || pending == nil {
		return nil, fmt.Errorf("attendance: reconciler requires token, roster, session and pending stores")
	}
	return &Reconciler{
		tokens:   tokens,
		roster:   roster,
		sessions: sessions,
		pending:  pending,
		now:      time.Now,
	}, nil
}

// SyncBatch processes each record independently: duplicates within the
// dedup window are skipped, resolvable records land in today's session,
// the rest are parked as pending. One bad record never aborts the batch.
func (r *Reconciler) SyncBatch(ctx context.Context, records []RawCheckIn) (BatchResult, error) {
	result := BatchResult{Total: len(records)}
	now := r.now()

	for i, rec := range records {
		if rec.StudentCode == "" || rec.Token == "" || rec.CourseID == uuid.Nil {
			syncRecordsTotal.WithLabelValues("error").Inc()
			result.Errors = append(result.Errors, BatchError{
				Index:     i,
				StudentID: rec.StudentCode,
				Error:     "student_id, course_id and token are required",
			})
			continue
		}

		dup, err := r.pending.HasRecent(ctx, rec.StudentCode, rec.CourseID, rec.Token, now)
		if err != nil {
			syncRecordsTotal.WithLabelValues("error").Inc()
			result.Errors = append(result.Errors, BatchError{Index: i, StudentID: rec.StudentCode, Error: err.Error()})
			continue
		}
		if dup {
			syncRecordsTotal.WithLabelValues("duplicate").Inc()
			continue
		}

		err = r.attempt(ctx, rec)
		switch {
		case err == nil:
			syncRecordsTotal.WithLabelValues("synced").Inc()
			result.Synced++
		case unresolvable(err):
			if _, perr := r.pending.Create(ctx, PendingCheckIn{
				StudentCode:     rec.StudentCode,
				CourseID:        rec.CourseID,
				Token:           rec.Token,
				Latitude:        rec.Latitude,
				Longitude:       rec.Longitude,
				ClientTimestamp: rec.Timestamp,
				DeviceID:        rec.DeviceID,
				Meta:            rec.Meta,
			}); perr != nil {
				syncRecordsTotal.WithLabelValues("error").Inc()
				result.Errors = append(result.Errors, BatchError{Index: i, StudentID: rec.StudentCode, Error: perr.Error()})
				continue
			}
			syncRecordsTotal.WithLabelValues("pending").Inc()
			result.Pending++
		default:
			syncRecordsTotal.WithLabelValues("error").Inc()
			result.Errors = append(result.Errors, BatchError{Index: i, StudentID: rec.StudentCode, Error: err.Error()})
		}
	}
	return result, nil
}

// ProcessPending replays every unsynced record against current server
// state. Successes are flagged synced; failures stay parked for the next
// pass. Nothing is deleted.
func (r *Reconciler) ProcessPending(ctx context.Context) (PendingResult, error) {
	parked, err := r.pending.Unsynced(ctx)
	if err != nil {
		return PendingResult{}, err
	}

	result := PendingResult{Total: len(parked)}
	for _, rec := range parked {
		err := r.attempt(ctx, RawCheckIn{
			StudentCode: rec.StudentCode,
			CourseID:    rec.CourseID,
			Token:       rec.Token,
			Latitude:    rec.Latitude,
			Longitude:   rec.Longitude,
			Timestamp:   rec.ClientTimestamp,
			DeviceID:    rec.DeviceID,
			Meta:        rec.Meta,
		})
		if err != nil {
			pendingReplaysTotal.WithLabelValues("failed").Inc()
			result.Failed++
			continue
		}
		if err := r.pending.MarkSynced(ctx, rec.ID, r.now()); err != nil {
			pendingReplaysTotal.WithLabelValues("failed").Inc()
			result.Failed++
			continue
		}
		pendingReplaysTotal.WithLabelValues("processed").Inc()
		result.Processed++
	}
	return result, nil
}

// attempt merges a single offline record: the token must be active and
// belong to the claimed course, the student known, and the course's
// session currently open. A token issued for a different course is
// indistinguishable from an unknown token on purpose.
func (r *Reconciler) attempt(ctx context.Context, rec RawCheckIn) error {
	token, err := r.tokens.Resolve(ctx, rec.Token)
	if err != nil {
		return err
	}
	if token.CourseID != rec.CourseID {
		return ErrTokenNotFound
	}

	student, err := r.roster.StudentByCode(ctx, rec.StudentCode)
	if err != nil {
		return err
	}

	session, err := r.sessions.ActiveForCourse(ctx, rec.CourseID)
	if err != nil {
		return err
	}
	if !session.IsOpen(r.now()) {
		return ErrNoActiveSession
	}

	return r.sessions.AddPresence(ctx, session.ID, student.ID)
}
