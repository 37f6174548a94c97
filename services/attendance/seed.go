package attendance

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RosterFile is the YAML shape rollcallctl seeds lecturers, students and
// courses from.
type RosterFile struct {
	Lecturers []SeedLecturer `yaml:"lecturers"`
	Students  []SeedStudent  `yaml:"students"`
	Courses   []SeedCourse   `yaml:"courses"`
}

type SeedLecturer struct {
	StaffID   string   `yaml:"staff_id"`
	Name      string   `yaml:"name"`
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
}

type SeedStudent struct {
	Code string `yaml:"student_id"`
	Name string `yaml:"name"`
}

type SeedCourse struct {
	Code         string   `yaml:"code"`
	Name         string   `yaml:"name"`
	LecturerID   string   `yaml:"staff_id,omitempty"`
	Latitude     *float64 `yaml:"latitude,omitempty"`
	Longitude    *float64 `yaml:"longitude,omitempty"`
	RadiusMeters float64  `yaml:"radius_meters,omitempty"`
	Enrolled     []string `yaml:"enrolled,omitempty"`
}

// LoadRosterFile parses a roster YAML file.
func LoadRosterFile(path string) (RosterFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RosterFile{}, fmt.Errorf("read roster file: %w", err)
	}
	var roster RosterFile
	if err := yaml.Unmarshal(raw, &roster); err != nil {
		return RosterFile{}, fmt.Errorf("parse roster file: %w", err)
	}
	return roster, nil
}

// SeedRoster upserts the roster into the database. Records are matched on
// their natural keys (staff_id, student_id, course code), so re-running a
// seed is safe.
func SeedRoster(ctx context.Context, orm *gorm.DB, roster RosterFile) error {
	return orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lecturers := make(map[string]uuid.UUID, len(roster.Lecturers))
		for _, l := range roster.Lecturers {
			if l.StaffID == "" {
				return fmt.Errorf("lecturer %q: staff_id is required", l.Name)
			}
			m := lecturerModel{
				ID:        uuid.New(),
				StaffID:   l.StaffID,
				Name:      l.Name,
				Latitude:  l.Latitude,
				Longitude: l.Longitude,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "staff_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "latitude", "longitude"}),
			}).Create(&m).Error
			if err != nil {
				return fmt.Errorf("seed lecturer %q: %w", l.StaffID, err)
			}

			var saved lecturerModel
			if err := tx.Where("staff_id = ?", l.StaffID).First(&saved).Error; err != nil {
				return fmt.Errorf("reload lecturer %q: %w", l.StaffID, err)
			}
			lecturers[l.StaffID] = saved.ID
		}

		students := make(map[string]uuid.UUID, len(roster.Students))
		for _, s := range roster.Students {
			if s.Code == "" {
				return fmt.Errorf("student %q: student_id is required", s.Name)
			}
			m := studentModel{ID: uuid.New(), Code: s.Code, Name: s.Name}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"name"}),
			}).Create(&m).Error
			if err != nil {
				return fmt.Errorf("seed student %q: %w", s.Code, err)
			}

			var saved studentModel
			if err := tx.Where("code = ?", s.Code).First(&saved).Error; err != nil {
				return fmt.Errorf("reload student %q: %w", s.Code, err)
			}
			students[s.Code] = saved.ID
		}

		for _, c := range roster.Courses {
			if c.Code == "" {
				return fmt.Errorf("course %q: code is required", c.Name)
			}
			radius := c.RadiusMeters
			if radius <= 0 {
				radius = DefaultRadiusMeters
			}
			m := courseModel{
				ID:           uuid.New(),
				Code:         c.Code,
				Name:         c.Name,
				Latitude:     c.Latitude,
				Longitude:    c.Longitude,
				RadiusMeters: radius,
			}
			if c.LecturerID != "" {
				id, ok := lecturers[c.LecturerID]
				if !ok {
					var saved lecturerModel
					if err := tx.Where("staff_id = ?", c.LecturerID).First(&saved).Error; err != nil {
						return fmt.Errorf("course %q: unknown lecturer %q", c.Code, c.LecturerID)
					}
					id = saved.ID
				}
				m.LecturerID = &id
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "lecturer_id", "latitude", "longitude", "radius_meters"}),
			}).Create(&m).Error
			if err != nil {
				return fmt.Errorf("seed course %q: %w", c.Code, err)
			}

			var saved courseModel
			if err := tx.Where("code = ?", c.Code).First(&saved).Error; err != nil {
				return fmt.Errorf("reload course %q: %w", c.Code, err)
			}

			for _, code := range c.Enrolled {
				studentID, ok := students[code]
				if !ok {
					var s studentModel
					if err := tx.Where("code = ?", code).First(&s).Error; err != nil {
						return fmt.Errorf("course %q: unknown student %q", c.Code, code)
					}
					studentID = s.ID
				}
				e := enrollmentModel{CourseID: saved.ID, StudentID: studentID}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
					DoNothing: true,
				}).Create(&e).Error
				if err != nil {
					return fmt.Errorf("enroll %q in %q: %w", code, c.Code, err)
				}
			}
		}
		return nil
	})
}
