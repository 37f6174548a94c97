package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PendingQueue persists offline check-ins that could not resolve at sync
// time. It is append-and-flag: replay marks records synced, nothing is
// ever deleted.
type PendingQueue struct {
	orm *gorm.DB
}

func NewPendingQueue(store *Store) *PendingQueue {
	return &PendingQueue{orm: store.ORM}
}

// HasRecent reports whether an unexpired duplicate of the given record
// already exists: same student, course and token, with a client timestamp
// within the dedup window around ts. Both synced and unsynced records
// count, so a replayed batch cannot double-park a check-in.
func (q *PendingQueue) HasRecent(ctx context.Context, studentCode string, courseID uuid.UUID, token string, ts time.Time) (bool, error) {
	var n int64
	err := q.orm.WithContext(ctx).
		Model(&pendingCheckinModel{}).
		Where("student_code = ? AND course_id = ? AND token = ?", studentCode, courseID, token).
		Where("client_timestamp BETWEEN ? AND ?", ts.Add(-DedupWindow), ts.Add(DedupWindow)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check pending duplicates: %w", err)
	}
	return n > 0, nil
}

func (q *PendingQueue) Create(ctx context.Context, rec PendingCheckIn) (PendingCheckIn, error) {
	m := pendingCheckinModel{
		StudentCode:     rec.StudentCode,
		CourseID:        rec.CourseID,
		Token:           rec.Token,
		Latitude:        rec.Latitude,
		Longitude:       rec.Longitude,
		ClientTimestamp: rec.ClientTimestamp,
		DeviceID:        rec.DeviceID,
		ClientMeta:      datatypes.JSONMap(rec.Meta),
	}
	if err := q.orm.WithContext(ctx).Create(&m).Error; err != nil {
		return PendingCheckIn{}, fmt.Errorf("park pending check-in: %w", err)
	}
	return m.toPendingCheckIn(), nil
}

// Unsynced lists every record still waiting for a successful replay,
// oldest first.
func (q *PendingQueue) Unsynced(ctx context.Context) ([]PendingCheckIn, error) {
	var models []pendingCheckinModel
	err := q.orm.WithContext(ctx).
		Where("synced = ?", false).
		Order("client_timestamp ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list unsynced check-ins: %w", err)
	}
	out := make([]PendingCheckIn, 0, len(models))
	for _, m := range models {
		out = append(out, m.toPendingCheckIn())
	}
	return out, nil
}

func (q *PendingQueue) MarkSynced(ctx context.Context, id int64, at time.Time) error {
	res := q.orm.WithContext(ctx).
		Model(&pendingCheckinModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"synced": true, "synced_at": at})
	if res.Error != nil {
		return fmt.Errorf("mark pending %d synced: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark pending %d synced: record missing", id)
	}
	return nil
}
