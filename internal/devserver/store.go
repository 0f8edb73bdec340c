package devserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type userRecord struct {
	ID             string  `gorm:"primaryKey;size:36"`
	Email          string  `gorm:"uniqueIndex;not null"`
	Username       *string `gorm:"uniqueIndex"`
	FullName       string
	HashedPassword string `gorm:"not null"`
	Role           string `gorm:"not null"`
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

func (u userRecord) toModel() *models.User {
	user := &models.User{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     models.Role(u.Role),
		IsActive: u.IsActive,
	}
	if u.Username != nil {
		user.Username = *u.Username
	}
	return user
}

type subjectRecord struct {
	ID          string `gorm:"primaryKey;size:36"`
	Code        string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Credits     int
	Description *string
}

func (subjectRecord) TableName() string { return "subjects" }

type gradeRecord struct {
	ID             string  `gorm:"primaryKey;size:36"`
	StudentID      string  `gorm:"index;not null"`
	SubjectID      string  `gorm:"index;not null"`
	Value          float64 `gorm:"not null"`
	Weight         float64
	EvaluationName string `gorm:"not null"`
	EvaluationDate *time.Time
	Subject        subjectRecord `gorm:"foreignKey:SubjectID"`
}

func (gradeRecord) TableName() string { return "grades" }

type scheduleRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	SubjectID string `gorm:"index;not null"`
	Day       string `gorm:"not null"`
	StartTime string `gorm:"not null"`
	EndTime   string `gorm:"not null"`
	Classroom string
	Subject   subjectRecord `gorm:"foreignKey:SubjectID"`
}

func (scheduleRecord) TableName() string { return "schedules" }

// Store persists the development server's users and academic records.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (and migrates) the SQLite database at dsn. A plain path
// has its parent directory created.
func OpenStore(dsn string) (*Store, error) {
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dsn, err)
	}

	if err := db.AutoMigrate(&userRecord{}, &subjectRecord{}, &gradeRecord{}, &scheduleRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"database": dsn,
	}).Debugln("Development database ready")

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewUser describes an account to create. Password is already hashed.
type NewUser struct {
	Email          string
	Username       string
	FullName       string
	HashedPassword string
	Role           models.Role
}

func (s *Store) CreateUser(ctx context.Context, user NewUser) (*models.User, error) {
	record := userRecord{
		ID:             uuid.NewString(),
		Email:          strings.ToLower(strings.TrimSpace(user.Email)),
		FullName:       strings.TrimSpace(user.FullName),
		HashedPassword: user.HashedPassword,
		Role:           string(user.Role),
		IsActive:       true,
	}
	if len(record.Role) == 0 {
		record.Role = string(models.RoleStudent)
	}
	if username := strings.TrimSpace(user.Username); len(username) > 0 {
		record.Username = &username
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		query := tx.Model(&userRecord{}).Where("email = ?", record.Email)
		if record.Username != nil {
			query = query.Or("username = ?", *record.Username)
		}
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	return record.toModel(), nil
}

func (s *Store) userWhere(ctx context.Context, query string, args ...any) (*userRecord, error) {
	var record userRecord
	err := s.db.WithContext(ctx).Where(query, args...).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	record, err := s.userWhere(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

// Credentials returns the user and password hash for a login identifier,
// which may be the username or the email.
func (s *Store) Credentials(ctx context.Context, identifier string) (*models.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	record, err := s.userWhere(ctx, "email = ? OR username = ?", strings.ToLower(identifier), identifier)
	if err != nil {
		return nil, "", err
	}
	return record.toModel(), record.HashedPassword, nil
}

// UserUpdate holds the changed fields of a user. Nil fields are untouched.
type UserUpdate struct {
	FullName       *string
	Email          *string
	HashedPassword *string
	IsActive       *bool
}

func (s *Store) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	var updated *userRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record userRecord
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		changes := map[string]any{}
		if update.FullName != nil {
			changes["full_name"] = strings.TrimSpace(*update.FullName)
		}
		if update.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*update.Email))
			var count int64
			if err := tx.Model(&userRecord{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrUserExists
			}
			changes["email"] = email
		}
		if update.HashedPassword != nil {
			changes["hashed_password"] = *update.HashedPassword
		}
		if update.IsActive != nil {
			changes["is_active"] = *update.IsActive
		}

		if len(changes) > 0 {
			if err := tx.Model(&record).Updates(changes).Error; err != nil {
				return err
			}
		}

		updated = &record
		return tx.Where("id = ?", id).First(updated).Error
	})
	if err != nil {
		return nil, err
	}

	return updated.toModel(), nil
}

// enrolledSubjectIDs selects the subjects the student has at least one grade in.
func (s *Store) enrolledSubjectIDs(ctx context.Context, studentID string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&gradeRecord{}).
		Distinct("subject_id").
		Where("student_id = ?", studentID)
}

func (s *Store) SubjectsForStudent(ctx context.Context, studentID string) ([]models.Subject, error) {
	var records []subjectRecord
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.enrolledSubjectIDs(ctx, studentID)).
		Order("code").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	subjects := make([]models.Subject, 0, len(records))
	for _, record := range records {
		subjects = append(subjects, models.Subject{
			ID:          record.ID,
			Code:        record.Code,
			Name:        record.Name,
			Credits:     record.Credits,
			Description: record.Description,
		})
	}
	return subjects, nil
}

func (s *Store) GradesForStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	var records []gradeRecord
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("student_id = ?", studentID).
		Order("evaluation_date").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	grades := make([]models.Grade, 0, len(records))
	for _, record := range records {
		grade := models.Grade{
			ID:             record.ID,
			Value:          record.Value,
			Weight:         record.Weight,
			EvaluationName: record.EvaluationName,
			SubjectName:    record.Subject.Name,
			SubjectCode:    record.Subject.Code,
		}
		if record.EvaluationDate != nil {
			grade.EvaluationDate = models.NewTimestamp(*record.EvaluationDate)
		}
		grades = append(grades, grade)
	}
	return grades, nil
}

func (s *Store) ScheduleForStudent(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	var records []scheduleRecord
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("subject_id IN (?)", s.enrolledSubjectIDs(ctx, studentID)).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	entries := make([]models.ScheduleEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, models.ScheduleEntry{
			ID:          record.ID,
			Day:         record.Day,
			StartTime:   record.StartTime,
			EndTime:     record.EndTime,
			Classroom:   record.Classroom,
			SubjectName: record.Subject.Name,
			SubjectCode: record.Subject.Code,
		})
	}

	slices.SortStableFunc(entries, func(a, b models.ScheduleEntry) int {
		if diff := weekdayIndex(a.Day) - weekdayIndex(b.Day); diff != 0 {
			return diff
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})

	return entries, nil
}

func weekdayIndex(day string) int {
	for i, weekday := range models.Weekdays {
		if strings.EqualFold(weekday, day) {
			return i
		}
	}
	return len(models.Weekdays)
}
