package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/miportal/portal/internal/common"
	"github.com/miportal/portal/internal/models"
	"github.com/sirupsen/logrus"
)

const minPasswordLength = 8

// postAccessToken exchanges form credentials for a bearer token
func (s *Server) postAccessToken(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var issues []fieldIssue
	if len(username) == 0 {
		issues = append(issues, missingField("body", "username"))
	}
	if len(password) == 0 {
		issues = append(issues, missingField("body", "password"))
	}
	if len(issues) > 0 {
		abortWithIssues(c, issues)
		return
	}

	user, hashed, err := s.Store.Credentials(c.Request.Context(), username)
	if errors.Is(err, ErrUserNotFound) {
		abortWithDetail(c, http.StatusBadRequest, "Incorrect email or password")
		return
	} else if err != nil {
		logrus.WithError(err).Errorln("Failed to look up credentials")
		abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !VerifyPassword(hashed, password) {
		logrus.WithFields(logrus.Fields{
			"user": user.GetIdentity(),
		}).Debugln("Rejected login with wrong password")
		abortWithDetail(c, http.StatusBadRequest, "Incorrect email or password")
		return
	}

	if !user.IsActive {
		abortWithDetail(c, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to issue access token")
		abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.JSON(http.StatusOK, models.Token{
		AccessToken: token,
		TokenType:   models.TokenTypeBearer,
	})
}

// postUser registers a new student account
func (s *Server) postUser(c *gin.Context) {
	var request models.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithIssues(c, []fieldIssue{invalidField("body", "payload", fmt.Sprintf("Invalid JSON body: %v", err))})
		return
	}

	if issues := validateRegistration(request); len(issues) > 0 {
		abortWithIssues(c, issues)
		return
	}

	hashed, err := HashPassword(request.Password)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to hash password")
		abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	user, err := s.Store.CreateUser(c.Request.Context(), NewUser{
		Email:          request.Email,
		Username:       request.Username,
		FullName:       request.FullName,
		HashedPassword: hashed,
		Role:           models.RoleStudent,
	})
	if errors.Is(err, ErrUserExists) {
		abortWithDetail(c, http.StatusBadRequest,
			fmt.Sprintf("The user with email %s already exists in the system", request.Email))
		return
	} else if err != nil {
		logrus.WithError(err).Errorln("Failed to create user")
		abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user": user.GetIdentity(),
	}).Infoln("Registered new user")

	c.JSON(http.StatusOK, user)
}

func validateRegistration(request models.RegisterRequest) []fieldIssue {
	var issues []fieldIssue

	if common.IsBlank(request.Email) {
		issues = append(issues, missingField("body", "email"))
	} else if !common.IsValidEmail(request.Email) {
		issues = append(issues, invalidField("body", "email", "value is not a valid email address"))
	}

	if len(request.Password) == 0 {
		issues = append(issues, missingField("body", "password"))
	} else if len(request.Password) < minPasswordLength {
		issues = append(issues, invalidField("body", "password",
			fmt.Sprintf("String should have at least %d characters", minPasswordLength)))
	}

	if common.IsBlank(request.FullName) {
		issues = append(issues, missingField("body", "full_name"))
	}

	if strings.ContainsAny(request.Username, " @") {
		issues = append(issues, invalidField("body", "username", "username must not contain spaces or @"))
	}

	return issues
}

func (s *Server) getCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// patchCurrentUser updates the full name, email or password
func (s *Server) patchCurrentUser(c *gin.Context) {
	user := currentUser(c)

	var request models.UpdateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithIssues(c, []fieldIssue{invalidField("body", "payload", fmt.Sprintf("Invalid JSON body: %v", err))})
		return
	}

	update := UserUpdate{FullName: request.FullName}

	var issues []fieldIssue
	if request.Email != nil {
		if !common.IsValidEmail(*request.Email) {
			issues = append(issues, invalidField("body", "email", "value is not a valid email address"))
		}
		update.Email = request.Email
	}
	if request.Password != nil {
		if len(*request.Password) < minPasswordLength {
			issues = append(issues, invalidField("body", "password",
				fmt.Sprintf("String should have at least %d characters", minPasswordLength)))
		} else {
			hashed, err := HashPassword(*request.Password)
			if err != nil {
				logrus.WithError(err).Errorln("Failed to hash password")
				abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			update.HashedPassword = &hashed
		}
	}
	if len(issues) > 0 {
		abortWithIssues(c, issues)
		return
	}

	updated, err := s.Store.UpdateUser(c.Request.Context(), user.ID, update)
	if errors.Is(err, ErrUserExists) {
		abortWithDetail(c, http.StatusBadRequest,
			fmt.Sprintf("The user with email %s already exists in the system", *request.Email))
		return
	} else if errors.Is(err, ErrUserNotFound) {
		abortWithDetail(c, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		logrus.WithError(err).Errorln("Failed to update user")
		abortWithDetail(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.JSON(http.StatusOK, updated)
}
