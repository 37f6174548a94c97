package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakePending struct {
	records []PendingCheckIn
	nextID  int64
}

func (f *fakePending) HasRecent(_ context.Context, studentCode string, courseID uuid.UUID, token string, ts time.Time) (bool, error) {
	for _, rec := range f.records {
		if rec.StudentCode != studentCode || rec.CourseID != courseID || rec.Token != token {
			continue
		}
		delta := rec.ClientTimestamp.Sub(ts)
		if delta < 0 {
			delta = -delta
		}
		if delta <= DedupWindow {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePending) Create(_ context.Context, rec PendingCheckIn) (PendingCheckIn, error) {
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = time.Now()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakePending) Unsynced(_ context.Context) ([]PendingCheckIn, error) {
	var out []PendingCheckIn
	for _, rec := range f.records {
		if !rec.Synced {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakePending) MarkSynced(_ context.Context, id int64, at time.Time) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Synced = true
			f.records[i].SyncedAt = &at
			return nil
		}
	}
	return errors.New("record missing")
}

type reconcileFixture struct {
	*checkInFixture
	pending    *fakePending
	reconciler *Reconciler
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()

	base := newCheckInFixture(t)
	pending := &fakePending{}
	reconciler, err := NewReconciler(base.tokens, base.roster, base.sessions, pending)
	if err != nil {
		t.Fatalf("NewReconciler() error = %v", err)
	}
	return &reconcileFixture{checkInFixture: base, pending: pending, reconciler: reconciler}
}

func (fix *reconcileFixture) openSession(t *testing.T) Session {
	t.Helper()
	session, err := fix.sessions.OpenOrGetToday(context.Background(), fix.course.ID)
	if err != nil {
		t.Fatalf("OpenOrGetToday() error = %v", err)
	}
	return session
}

func rawRecord(fix *reconcileFixture, token string) RawCheckIn {
	return RawCheckIn{
		StudentCode: fix.student.Code,
		CourseID:    fix.course.ID,
		Token:       token,
		Latitude:    fptr(5.6037),
		Longitude:   fptr(-0.1870),
		Timestamp:   time.Now(),
		DeviceID:    "device-1",
	}
}

func TestSyncBatchRecordsResolvable(t *testing.T) {
	fix := newReconcileFixture(t)
	session := fix.openSession(t)

	result, err := fix.reconciler.SyncBatch(context.Background(), []RawCheckIn{rawRecord(fix, "ABC123")})
	if err != nil {
		t.Fatalf("SyncBatch() error = %v", err)
	}
	if result.Synced != 1 || result.Pending != 0 || result.Total != 1 {
		t.Fatalf("SyncBatch() = %+v, want 1 synced of 1", result)
	}
	if got := fix.sessions.presentCount(session.ID); got != 1 {
		t.Fatalf("present count = %d, want 1", got)
	}
}

func TestSyncBatchParksUnresolvable(t *testing.T) {
	fix := newReconcileFixture(t)

	// No session opened yet: the record references state the server does
	// not have, so it must be parked rather than rejected.
	result, err := fix.reconciler.SyncBatch(context.Background(), []RawCheckIn{rawRecord(fix, "ABC123")})
	if err != nil {
		t.Fatalf("SyncBatch() error = %v", err)
	}
	if result.Synced != 0 || result.Pending != 1 {
		t.Fatalf("SyncBatch() = %+v, want 1 pending", result)
	}
	if len(fix.pending.records) != 1 {
		t.Fatalf("parked %d records, want 1", len(fix.pending.records))
	}
	if fix.pending.records[0].Synced {
		t.Fatal("parked record marked synced")
	}
}

func TestSyncBatchSkipsDuplicates(t *testing.T) {
	fix := newReconcileFixture(t)
	ctx := context.Background()
	rec := rawRecord(fix, "ABC123")

	first, err := fix.reconciler.SyncBatch(ctx, []RawCheckIn{rec})
	if err != nil {
		t.Fatalf("first SyncBatch() error = %v", err)
	}
	if first.Pending != 1 {
		t.Fatalf("first SyncBatch() = %+v, want 1 pending", first)
	}

	second, err := fix.reconciler.SyncBatch(ctx, []RawCheckIn{rec})
	if err != nil {
		t.Fatalf("second SyncBatch() error = %v", err)
	}
	if second.Synced != 0 || second.Pending != 0 || second.Total != 1 {
		t.Fatalf("second SyncBatch() = %+v, want duplicate skipped", second)
	}
	if len(fix.pending.records) != 1 {
		t.Fatalf("parked %d records, want 1 after duplicate retransmission", len(fix.pending.records))
	}
}

func TestSyncBatchWrongCourseParked(t *testing.T) {
	fix := newReconcileFixture(t)
	fix.openSession(t)

	rec := rawRecord(fix, "ABC123")
	rec.CourseID = uuid.New()

	result, err := fix.reconciler.SyncBatch(context.Background(), []RawCheckIn{rec})
	if err != nil {
		t.Fatalf("SyncBatch() error = %v", err)
	}
	if result.Pending != 1 || result.Synced != 0 {
		t.Fatalf("SyncBatch() = %+v, want token/course mismatch parked", result)
	}
}

func TestSyncBatchIsolatesBadRecords(t *testing.T) {
	fix := newReconcileFixture(t)
	fix.openSession(t)

	records := []RawCheckIn{
		{StudentCode: "", CourseID: fix.course.ID, Token: "ABC123", Timestamp: time.Now()},
		rawRecord(fix, "ABC123"),
	}

	result, err := fix.reconciler.SyncBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("SyncBatch() error = %v", err)
	}
	if result.Synced != 1 {
		t.Fatalf("SyncBatch() = %+v, want good record synced despite bad sibling", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 0 {
		t.Fatalf("SyncBatch() errors = %+v, want one error at index 0", result.Errors)
	}
}

func TestProcessPendingReplays(t *testing.T) {
	fix := newReconcileFixture(t)
	ctx := context.Background()

	parked, err := fix.reconciler.SyncBatch(ctx, []RawCheckIn{rawRecord(fix, "ABC123")})
	if err != nil {
		t.Fatalf("SyncBatch() error = %v", err)
	}
	if parked.Pending != 1 {
		t.Fatalf("SyncBatch() = %+v, want 1 pending", parked)
	}

	// First replay fails: still no session.
	result, err := fix.reconciler.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if result.Processed != 0 || result.Failed != 1 || result.Total != 1 {
		t.Fatalf("ProcessPending() = %+v, want 1 failed", result)
	}
	if unsynced, _ := fix.pending.Unsynced(ctx); len(unsynced) != 1 {
		t.Fatalf("failed replay removed the record, %d unsynced left", len(unsynced))
	}

	// The lecturer opens the session, the next replay succeeds.
	session := fix.openSession(t)
	result, err = fix.reconciler.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if result.Processed != 1 || result.Failed != 0 {
		t.Fatalf("ProcessPending() = %+v, want 1 processed", result)
	}
	if got := fix.sessions.presentCount(session.ID); got != 1 {
		t.Fatalf("present count = %d, want 1", got)
	}

	if unsynced, _ := fix.pending.Unsynced(ctx); len(unsynced) != 0 {
		t.Fatalf("%d records still unsynced after successful replay", len(unsynced))
	}
	if !fix.pending.records[0].Synced || fix.pending.records[0].SyncedAt == nil {
		t.Fatal("replayed record not flagged synced")
	}

	// A third pass has nothing to do.
	result, err = fix.reconciler.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("ProcessPending() = %+v, want empty pass", result)
	}
}
