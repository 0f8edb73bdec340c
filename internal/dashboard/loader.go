package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
)

// Source is the read side of the portal API used by the dashboard.
type Source interface {
	Subjects(ctx context.Context, token string) ([]models.Subject, error)
	Grades(ctx context.Context, token string) ([]models.Grade, error)
	Schedule(ctx context.Context, token string) ([]models.ScheduleEntry, error)
}

// Collection is the outcome of one dashboard read. Items is empty when Err
// is set.
type Collection[T any] struct {
	Items []T
	Err   error
}

func (c Collection[T]) Failed() bool {
	return c.Err != nil
}

func (c Collection[T]) IsEmpty() bool {
	return len(c.Items) == 0
}

type Dashboard struct {
	Subjects Collection[models.Subject]
	Grades   Collection[models.Grade]
	Schedule Collection[models.ScheduleEntry]
	LoadedAt time.Time
}

// Loaded reports whether every collection was read successfully.
func (d Dashboard) Loaded() bool {
	return !d.Subjects.Failed() && !d.Grades.Failed() && !d.Schedule.Failed()
}

// Err joins the failures of every collection, or returns nil.
func (d Dashboard) Err() error {
	var errs []error
	if d.Subjects.Failed() {
		errs = append(errs, fmt.Errorf("loading subjects: %w", d.Subjects.Err))
	}
	if d.Grades.Failed() {
		errs = append(errs, fmt.Errorf("loading grades: %w", d.Grades.Err))
	}
	if d.Schedule.Failed() {
		errs = append(errs, fmt.Errorf("loading schedule: %w", d.Schedule.Err))
	}
	return errors.Join(errs...)
}

type Loader struct {
	source Source
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load reads the three collections concurrently and waits for all of them.
// A failed read never cancels or hides the others.
func (l *Loader) Load(ctx context.Context, token string) Dashboard {
	var wg sync.WaitGroup
	var board Dashboard

	// Each goroutine writes a distinct field so no lock is needed
	wg.Go(func() {
		board.Subjects = fetch(ctx, "subjects", token, l.source.Subjects)
	})

	wg.Go(func() {
		board.Grades = fetch(ctx, "grades", token, l.source.Grades)
	})

	wg.Go(func() {
		board.Schedule = fetch(ctx, "schedule", token, l.source.Schedule)
	})

	// Wait for all goroutines to complete
	wg.Wait()

	board.LoadedAt = time.Now()
	return board
}

func fetch[T any](
	ctx context.Context,
	name string,
	token string,
	read func(context.Context, string) ([]T, error),
) Collection[T] {
	items, err := read(ctx, token)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"collection": name,
		}).Warnln("Failed to load dashboard collection")
		return Collection[T]{Items: []T{}, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	logrus.WithFields(logrus.Fields{
		"collection": name,
		"count":      len(items),
	}).Debugln("Loaded dashboard collection")
	return Collection[T]{Items: items}
}
