package devserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// SeedReport counts the records a Seed call created.
type SeedReport struct {
	Users     int
	Subjects  int
	Schedules int
	Grades    int
}

func (r SeedReport) Total() int {
	return r.Users + r.Subjects + r.Schedules + r.Grades
}

type seedUser struct {
	Email    string
	Username string
	FullName string
}

type seedSubject struct {
	Code        string
	Name        string
	Credits     int
	Description string
}

type seedSchedule struct {
	SubjectCode string
	Day         string
	StartTime   string
	EndTime     string
	Classroom   string
}

type seedGrade struct {
	StudentEmail   string
	SubjectCode    string
	Value          float64
	Weight         float64
	EvaluationName string
	EvaluationDate time.Time
}

var demoUsers = []seedUser{
	{Email: "student@ufro.cl", Username: "student1", FullName: "Juan Perez"},
	{Email: "ana@ufro.cl", Username: "student2", FullName: "Ana Garcia"},
}

var demoSubjects = []seedSubject{
	{Code: "MAT101", Name: "Álgebra Lineal", Credits: 5, Description: "Introducción al álgebra lineal y matrices."},
	{Code: "FIS101", Name: "Física Mecánica", Credits: 4, Description: "Leyes de Newton y movimiento."},
	{Code: "INF101", Name: "Programación I", Credits: 6, Description: "Introducción a Python y algoritmos."},
}

var demoSchedules = []seedSchedule{
	{SubjectCode: "MAT101", Day: "Monday", StartTime: "08:30:00", EndTime: "10:00:00", Classroom: "A-101"},
	{SubjectCode: "MAT101", Day: "Wednesday", StartTime: "08:30:00", EndTime: "10:00:00", Classroom: "A-101"},
	{SubjectCode: "FIS101", Day: "Tuesday", StartTime: "14:30:00", EndTime: "16:00:00", Classroom: "Lab-2"},
	{SubjectCode: "INF101", Day: "Friday", StartTime: "10:15:00", EndTime: "13:00:00", Classroom: "Lab-Computacion"},
}

// Only the first student has grades, so the second one sees an empty dashboard.
var demoGrades = []seedGrade{
	{StudentEmail: "student@ufro.cl", SubjectCode: "MAT101", Value: 5.5, Weight: 0.3, EvaluationName: "Certamen 1", EvaluationDate: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
	{StudentEmail: "student@ufro.cl", SubjectCode: "MAT101", Value: 6.2, Weight: 0.3, EvaluationName: "Certamen 2", EvaluationDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
	{StudentEmail: "student@ufro.cl", SubjectCode: "INF101", Value: 7.0, Weight: 0.2, EvaluationName: "Tarea 1", EvaluationDate: time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC)},
	{StudentEmail: "student@ufro.cl", SubjectCode: "INF101", Value: 6.8, Weight: 0.4, EvaluationName: "Proyecto Semestral", EvaluationDate: time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)},
}

// Seed inserts the demo accounts and academic records. Records that already
// exist are left alone, so running it twice creates nothing the second time.
func (s *Store) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	hashed, err := HashPassword(DemoPassword)
	if err != nil {
		return report, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		students := make(map[string]string, len(demoUsers))
		for _, demo := range demoUsers {
			username := demo.Username
			record := userRecord{
				ID:             uuid.NewString(),
				Email:          demo.Email,
				Username:       &username,
				FullName:       demo.FullName,
				HashedPassword: hashed,
				Role:           string(models.RoleStudent),
				IsActive:       true,
			}
			created, id, err := firstOrCreate(tx, &record, "email = ?", demo.Email)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", demo.Email, err)
			}
			if created {
				report.Users++
			}
			students[demo.Email] = id
		}

		subjects := make(map[string]string, len(demoSubjects))
		for _, demo := range demoSubjects {
			description := demo.Description
			record := subjectRecord{
				ID:          uuid.NewString(),
				Code:        demo.Code,
				Name:        demo.Name,
				Credits:     demo.Credits,
				Description: &description,
			}
			created, id, err := firstOrCreate(tx, &record, "code = ?", demo.Code)
			if err != nil {
				return fmt.Errorf("seed subject %s: %w", demo.Code, err)
			}
			if created {
				report.Subjects++
			}
			subjects[demo.Code] = id
		}

		for _, demo := range demoSchedules {
			subjectID := subjects[demo.SubjectCode]
			record := scheduleRecord{
				ID:        uuid.NewString(),
				SubjectID: subjectID,
				Day:       demo.Day,
				StartTime: demo.StartTime,
				EndTime:   demo.EndTime,
				Classroom: demo.Classroom,
			}
			created, _, err := firstOrCreate(tx, &record,
				"subject_id = ? AND day = ? AND start_time = ?", subjectID, demo.Day, demo.StartTime)
			if err != nil {
				return fmt.Errorf("seed schedule %s %s: %w", demo.SubjectCode, demo.Day, err)
			}
			if created {
				report.Schedules++
			}
		}

		for _, demo := range demoGrades {
			studentID := students[demo.StudentEmail]
			subjectID := subjects[demo.SubjectCode]
			date := demo.EvaluationDate
			record := gradeRecord{
				ID:             uuid.NewString(),
				StudentID:      studentID,
				SubjectID:      subjectID,
				Value:          demo.Value,
				Weight:         demo.Weight,
				EvaluationName: demo.EvaluationName,
				EvaluationDate: &date,
			}
			created, _, err := firstOrCreate(tx, &record,
				"student_id = ? AND subject_id = ? AND evaluation_name = ?", studentID, subjectID, demo.EvaluationName)
			if err != nil {
				return fmt.Errorf("seed grade %s: %w", demo.EvaluationName, err)
			}
			if created {
				report.Grades++
			}
		}

		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}

	logrus.WithFields(logrus.Fields{
		"users":     report.Users,
		"subjects":  report.Subjects,
		"schedules": report.Schedules,
		"grades":    report.Grades,
	}).Infoln("Seeded development data")

	return report, nil
}

// identified lists the record types Seed writes.
type identified interface {
	userRecord | subjectRecord | scheduleRecord | gradeRecord
}

// firstOrCreate inserts record unless a row matching the query exists. It
// returns whether a row was created and the id of the stored row.
func firstOrCreate[T identified](tx *gorm.DB, record *T, query string, args ...any) (bool, string, error) {
	var existing T
	err := tx.Where(query, args...).First(&existing).Error
	if err == nil {
		return false, recordID(&existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", err
	}
	if err := tx.Create(record).Error; err != nil {
		return false, "", err
	}
	return true, recordID(record), nil
}

func recordID(record any) string {
	switch r := record.(type) {
	case *userRecord:
		return r.ID
	case *subjectRecord:
		return r.ID
	case *scheduleRecord:
		return r.ID
	case *gradeRecord:
		return r.ID
	}
	return ""
}
