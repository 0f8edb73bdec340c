package views

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/miportal/portal/internal/api"
	"github.com/miportal/portal/internal/dashboard"
	"github.com/miportal/portal/internal/models"
	"github.com/miportal/portal/internal/sessions"
	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	user := &models.User{Username: "ana"}

	tests := []struct {
		name  string
		state sessions.State
		want  Screen
	}{
		{name: "restoring", state: sessions.State{Loading: true}, want: ScreenLoading},
		{name: "restoring with user", state: sessions.State{Loading: true, User: user}, want: ScreenLoading},
		{name: "signed out", state: sessions.State{}, want: ScreenLogin},
		{name: "signed in", state: sessions.State{User: user}, want: ScreenDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.state))
		})
	}

	assert.Equal(t, "dashboard", ScreenDashboard.String())
}

func TestLoginErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "no error", err: nil, want: ""},
		{
			name: "detail from api",
			err:  &api.Error{Op: "authenticate", Kind: api.KindAuthFailed, Status: http.StatusBadRequest, Detail: "Incorrect email or password", Err: errors.New("unexpected status 400")},
			want: "Incorrect email or password",
		},
		{
			name: "401 without detail",
			err:  &api.Error{Op: "authenticate", Kind: api.KindAuthFailed, Status: http.StatusUnauthorized, Err: errors.New("unexpected status 401")},
			want: FallbackLoginError,
		},
		{name: "network error", err: errors.New("connection refused"), want: FallbackLoginError},
		{
			name: "wrapped detail",
			err:  fmt.Errorf("login: %w", &api.Error{Op: "authenticate", Detail: "Inactive user"}),
			want: "Inactive user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoginErrorMessage(tt.err))
		})
	}
}

func TestRegisterErrorMessage(t *testing.T) {
	assert.Empty(t, RegisterErrorMessage(nil))
	assert.Equal(t, FallbackRegisterError, RegisterErrorMessage(errors.New("boom")))
	assert.Equal(t,
		"The user with email ana@example.edu already exists in the system",
		RegisterErrorMessage(&api.Error{Kind: api.KindValidation, Detail: "The user with email ana@example.edu already exists in the system"}),
	)
}

func emptyBoard() dashboard.Dashboard {
	return dashboard.Dashboard{
		Subjects: dashboard.Collection[models.Subject]{Items: []models.Subject{}},
		Grades:   dashboard.Collection[models.Grade]{Items: []models.Grade{}},
		Schedule: dashboard.Collection[models.ScheduleEntry]{Items: []models.ScheduleEntry{}},
	}
}

func TestRenderDashboard_EmptyCollections(t *testing.T) {
	out := RenderDashboard(&models.User{Username: "ana"}, emptyBoard())

	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "0 total")
	assert.Contains(t, out, EmptySubjectsMessage)
	assert.Contains(t, out, EmptyScheduleMessage)
	assert.Contains(t, out, EmptyGradesMessage)

	// three distinct messages, each exactly once
	for _, msg := range []string{EmptySubjectsMessage, EmptyScheduleMessage, EmptyGradesMessage} {
		assert.Equal(t, 1, strings.Count(out, msg), msg)
	}
	assert.NotContains(t, out, "█")
	assert.NotContains(t, out, "Could not load")
}

func TestRenderDashboard_Items(t *testing.T) {
	board := dashboard.Dashboard{
		Subjects: dashboard.Collection[models.Subject]{Items: []models.Subject{
			{ID: "s1", Code: "MAT101", Name: "Algebra", Credits: 6},
			{ID: "s2", Code: "FIS100", Name: "Fisica", Credits: 5},
		}},
		Grades: dashboard.Collection[models.Grade]{Items: []models.Grade{
			{ID: "g1", Value: 7.0, Weight: 1, EvaluationName: "Certamen 1", SubjectName: "Algebra"},
			{ID: "g2", Value: 3.25, Weight: 1, EvaluationName: "Lab 1", SubjectName: "Fisica"},
		}},
		Schedule: dashboard.Collection[models.ScheduleEntry]{Items: []models.ScheduleEntry{
			{ID: "c1", Day: "Wednesday", StartTime: "08:30:00", EndTime: "10:00:00", Classroom: "A-101", SubjectName: "Algebra"},
		}},
	}

	out := RenderDashboard(&models.User{Username: "ana"}, board)

	assert.Contains(t, out, "2 total")
	assert.Contains(t, out, "ALGEBRA")
	assert.Contains(t, out, "MAT101")
	assert.Contains(t, out, "WED")
	assert.Contains(t, out, "08:30:00 - 10:00:00")
	assert.Contains(t, out, "7.0")
	assert.Contains(t, out, "3.2")
	assert.Contains(t, out, strings.Repeat("█", gradeBarWidth))
	assert.Contains(t, out, "avg 5.1")

	for _, msg := range []string{EmptySubjectsMessage, EmptyScheduleMessage, EmptyGradesMessage} {
		assert.NotContains(t, out, msg)
	}
}

func TestRenderDashboard_FailedCollection(t *testing.T) {
	board := emptyBoard()
	board.Subjects.Items = []models.Subject{{ID: "s1", Code: "MAT101", Name: "Algebra"}}
	board.Grades.Err = errors.New("grades: unexpected status 502")

	out := RenderDashboard(&models.User{Username: "ana"}, board)

	assert.Contains(t, out, "Could not load grades.")
	assert.NotContains(t, out, EmptyGradesMessage)
	assert.Contains(t, out, "ALGEBRA")
	assert.Contains(t, out, EmptyScheduleMessage)
}

func TestDisplayUsername(t *testing.T) {
	assert.Equal(t, "Student", DisplayUsername(nil))
	assert.Equal(t, "Student", DisplayUsername(&models.User{Email: "ana@example.edu"}))
	assert.Equal(t, "ana", DisplayUsername(&models.User{Username: "ana"}))
}

func TestGradeBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", gradeBarWidth), gradeBar(models.Grade{Value: 0}))
	assert.Equal(t, strings.Repeat("█", gradeBarWidth/2)+strings.Repeat("░", gradeBarWidth/2), gradeBar(models.Grade{Value: 3.5}))
	assert.Equal(t, strings.Repeat("█", gradeBarWidth), gradeBar(models.Grade{Value: 9}))
	assert.Equal(t, gradeBarWidth, len([]rune(gradeBar(models.Grade{Value: 4.4}))))
}
