package devserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (s *Server) getSubjects(c *gin.Context) {
	serveCollection(c, s.Cache, "subjects", s.Store.SubjectsForStudent)
}

func (s *Server) getGrades(c *gin.Context) {
	serveCollection(c, s.Cache, "grades", s.Store.GradesForStudent)
}

func (s *Server) getSchedule(c *gin.Context) {
	serveCollection(c, s.Cache, "schedule", s.Store.ScheduleForStudent)
}

// serveCollection answers from the read cache when possible and fills it
// on a miss.
func serveCollection[T any](
	c *gin.Context,
	cache Cache,
	collection string,
	read func(ctx context.Context, studentID string) ([]T, error),
) {
	user := currentUser(c)
	ctx := c.Request.Context()
	key := academicCacheKey(collection, user.ID)

	var items []T
	if cache.Get(ctx, key, &items) {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, nonNil(items))
		return
	}

	items, err := read(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"collection": collection,
			"user":       user.GetIdentity(),
		}).Errorln("Failed to read academic records")
		abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	items = nonNil(items)
	cache.Set(ctx, key, items)

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, items)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
