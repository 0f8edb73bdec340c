package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
)

const userContextKey = "user"

// requestLogger writes one logrus entry per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start),
			"clientIP": c.ClientIP(),
		})

		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warnln("Request failed")
		} else {
			entry.Debugln("Request handled")
		}
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		logrus.WithError(err).Error("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorBody{Detail: "Internal Server Error"})
	})
}

func (s *Server) requestCounterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		atomic.AddInt64(&s.TotalRequests, 1)
		c.Next()
	}
}

// authMiddleware resolves the bearer token to an active user and stores it
// in the request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || len(strings.TrimSpace(token)) == 0 {
			c.Header("WWW-Authenticate", "Bearer")
			abortWithDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		userID, err := s.Tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			abortWithDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := s.Store.UserByID(c.Request.Context(), userID)
		if errors.Is(err, ErrUserNotFound) {
			abortWithDetail(c, http.StatusNotFound, "User not found")
			return
		} else if err != nil {
			logrus.WithError(err).Errorln("Failed to load user for token")
			abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		if !user.IsActive {
			abortWithDetail(c, http.StatusBadRequest, "Inactive user")
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, models.ErrorBody{Detail: detail})
}

// fieldIssue mirrors the validation error entries returned on 422.
type fieldIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func missingField(location, field string) fieldIssue {
	return fieldIssue{Loc: []string{location, field}, Msg: "Field required", Type: "missing"}
}

func invalidField(location, field, msg string) fieldIssue {
	return fieldIssue{Loc: []string{location, field}, Msg: msg, Type: "value_error"}
}

func abortWithIssues(c *gin.Context, issues []fieldIssue) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, models.ErrorBody{Detail: issues})
}
