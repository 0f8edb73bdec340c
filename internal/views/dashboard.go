package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/miportal/portal/internal/dashboard"
	"github.com/miportal/portal/internal/models"
)

const gradeBarWidth = 20

// RenderDashboard draws the header and the three dashboard sections. Each
// section renders its own empty or failed state.
func RenderDashboard(user *models.User, board dashboard.Dashboard) string {
	var content strings.Builder

	content.WriteString(renderHeader(user))
	content.WriteString("\n\n")

	content.WriteString(sectionStyle.Render(renderSubjects(board.Subjects)))
	content.WriteString("\n")
	content.WriteString(sectionStyle.Render(renderSchedule(board.Schedule)))
	content.WriteString("\n")
	content.WriteString(sectionStyle.Render(renderGrades(board.Grades)))
	content.WriteString("\n")

	return content.String()
}

// DisplayUsername is the name shown in the dashboard header.
func DisplayUsername(user *models.User) string {
	if user == nil || len(strings.TrimSpace(user.Username)) == 0 {
		return "Student"
	}
	return user.Username
}

func renderHeader(user *models.User) string {
	title := titleStyle.Render("MiPortal")
	name := userStyle.Render(DisplayUsername(user))
	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s  %s", title, name),
		subtitleStyle.Render("Academic summary: your progress and upcoming classes."),
	)
}

func renderSubjects(subjects dashboard.Collection[models.Subject]) string {
	var section strings.Builder

	section.WriteString(sectionTitleStyle.Render("Subjects"))
	section.WriteString("  ")
	section.WriteString(badgeStyle.Render(fmt.Sprintf("%d total", len(subjects.Items))))
	section.WriteString("\n")

	switch {
	case subjects.Failed():
		section.WriteString(failedStyle.Render(FailedCollectionMessage("subjects")))
	case subjects.IsEmpty():
		section.WriteString(emptyStyle.Render(EmptySubjectsMessage))
	default:
		rows := make([]string, 0, len(subjects.Items))
		for _, subject := range subjects.Items {
			row := fmt.Sprintf("%s  %s", strings.ToUpper(subject.Name), codeStyle.Render(subject.Code))
			if subject.Credits > 0 {
				row += codeStyle.Render(fmt.Sprintf("  %d cr", subject.Credits))
			}
			rows = append(rows, row)
		}
		section.WriteString(strings.Join(rows, "\n"))
	}

	return section.String()
}

func renderSchedule(schedule dashboard.Collection[models.ScheduleEntry]) string {
	var section strings.Builder

	section.WriteString(sectionTitleStyle.Render("Weekly Schedule"))
	section.WriteString("\n")

	switch {
	case schedule.Failed():
		section.WriteString(failedStyle.Render(FailedCollectionMessage("schedule")))
	case schedule.IsEmpty():
		section.WriteString(emptyStyle.Render(EmptyScheduleMessage))
	default:
		rows := make([]string, 0, len(schedule.Items))
		for _, entry := range schedule.Items {
			row := fmt.Sprintf("%s  %s  %s",
				dayStyle.Render(strings.ToUpper(entry.ShortDay())),
				entry.SubjectName,
				codeStyle.Render(fmt.Sprintf("%s - %s", entry.StartTime, entry.EndTime)),
			)
			if len(entry.Classroom) > 0 {
				row += codeStyle.Render("  " + entry.Classroom)
			}
			rows = append(rows, row)
		}
		section.WriteString(strings.Join(rows, "\n"))
	}

	return section.String()
}

func renderGrades(grades dashboard.Collection[models.Grade]) string {
	var section strings.Builder

	section.WriteString(sectionTitleStyle.Render("Performance"))
	if average, ok := models.WeightedAverage(grades.Items); ok && !grades.Failed() {
		section.WriteString("  ")
		section.WriteString(gradeStyle(average).Render(fmt.Sprintf("avg %.1f", average)))
	}
	section.WriteString("\n")

	switch {
	case grades.Failed():
		section.WriteString(failedStyle.Render(FailedCollectionMessage("grades")))
	case grades.IsEmpty():
		section.WriteString(emptyStyle.Render(EmptyGradesMessage))
	default:
		rows := make([]string, 0, len(grades.Items))
		for _, grade := range grades.Items {
			label := strings.ToUpper(grade.SubjectName)
			if len(grade.EvaluationName) > 0 {
				label = fmt.Sprintf("%s  %s", label, codeStyle.Render(grade.EvaluationName))
			}
			style := gradeStyle(grade.Value)
			rows = append(rows, fmt.Sprintf("%s\n%s %s",
				label,
				style.Render(gradeBar(grade)),
				style.Render(fmt.Sprintf("%.1f", grade.Value)),
			))
		}
		section.WriteString(strings.Join(rows, "\n"))
	}

	return section.String()
}

func gradeStyle(value float64) lipgloss.Style {
	if value >= models.GradePassing {
		return passingStyle
	}
	return failingStyle
}

// gradeBar draws a bar whose filled part is proportional to value/7.
func gradeBar(grade models.Grade) string {
	filled := int(math.Round(grade.Ratio() * gradeBarWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", gradeBarWidth-filled)
}
