package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type Lecturer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffID   string    `gorm:"type:text;uniqueIndex;not null"`
	Name      string    `gorm:"type:text;not null"`
	Latitude  *float64  `gorm:"type:double precision"`
	Longitude *float64  `gorm:"type:double precision"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Student struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:text;uniqueIndex;not null"`
	Name      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code         string     `gorm:"type:text;uniqueIndex;not null"`
	Name         string     `gorm:"type:text;not null"`
	LecturerID   *uuid.UUID `gorm:"type:uuid;index"`
	IsActive     bool       `gorm:"type:boolean;not null;default:false"`
	Latitude     *float64   `gorm:"type:double precision"`
	Longitude    *float64   `gorm:"type:double precision"`
	RadiusMeters float64    `gorm:"type:double precision;not null;default:100"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Lecturer     Lecturer   `gorm:"foreignKey:LecturerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

type Enrollment struct {
	ID         int64     `gorm:"type:bigserial;primaryKey"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_course_student"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_course_student"`
	EnrolledAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Course     Course    `gorm:"foreignKey:CourseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Student    Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Session struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourseID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_sessions_course_day"`
	Day          time.Time  `gorm:"type:date;not null;uniqueIndex:uq_sessions_course_day"`
	LecturerLat  *float64   `gorm:"type:double precision"`
	LecturerLon  *float64   `gorm:"type:double precision"`
	IsActive     bool       `gorm:"type:boolean;not null;default:true"`
	OpenedAt     time.Time  `gorm:"type:timestamptz;not null;default:now()"`
	EndedAt      *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Course       Course     `gorm:"foreignKey:CourseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type SessionPresence struct {
	ID         int64     `gorm:"type:bigserial;primaryKey"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_presences_session_student"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_presences_session_student"`
	RecordedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Session    Session   `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Student    Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Token struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Value       string    `gorm:"type:text;uniqueIndex;not null"`
	GeneratedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	ExpiresAt   time.Time `gorm:"type:timestamptz;not null"`
	IsActive    bool      `gorm:"type:boolean;not null;default:true"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Course      Course    `gorm:"foreignKey:CourseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type PendingCheckin struct {
	ID              int64             `gorm:"type:bigserial;primaryKey"`
	StudentCode     string            `gorm:"type:text;not null;index"`
	CourseID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Token           string            `gorm:"type:text;not null"`
	Latitude        *float64          `gorm:"type:double precision"`
	Longitude       *float64          `gorm:"type:double precision"`
	ClientTimestamp time.Time         `gorm:"type:timestamptz;not null"`
	DeviceID        string            `gorm:"type:text;not null;default:''"`
	ClientMeta      datatypes.JSONMap `gorm:"type:jsonb"`
	Synced          bool              `gorm:"type:boolean;not null;default:false;index"`
	SyncedAt        *time.Time        `gorm:"type:timestamptz"`
	CreatedAt       time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func openTx(ctx context.Context, tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(ctx, tx)
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&Lecturer{},
		&Student{},
		&Course{},
		&Enrollment{},
		&Session{},
		&SessionPresence{},
		&Token{},
		&PendingCheckin{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&Course{}, "Lecturer"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Enrollment{}, "Course"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Enrollment{}, "Student"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Session{}, "Course"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&SessionPresence{}, "Session"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&SessionPresence{}, "Student"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Token{}, "Course"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(ctx, tx)
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&PendingCheckin{},
		&Token{},
		&SessionPresence{},
		&Session{},
		&Enrollment{},
		&Course{},
		&Student{},
		&Lecturer{},
	); err != nil {
		return err
	}

	return nil
}
