package api

import (
	"context"

	"github.com/miportal/portal/internal/models"
)

func (c *Client) Subjects(ctx context.Context, token string) ([]models.Subject, error) {
	return getCollection[models.Subject](ctx, c, "subjects", "/academic/subjects", token)
}

func (c *Client) Grades(ctx context.Context, token string) ([]models.Grade, error) {
	return getCollection[models.Grade](ctx, c, "grades", "/academic/grades", token)
}

func (c *Client) Schedule(ctx context.Context, token string) ([]models.ScheduleEntry, error) {
	return getCollection[models.ScheduleEntry](ctx, c, "schedule", "/academic/schedule", token)
}
