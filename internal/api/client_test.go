package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/miportal/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL+"/api/v1/", Options{ClientID: "test-client", UserAgent: "miportal/test"})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "valid", baseURL: "http://localhost:8000/api/v1"},
		{name: "trailing slash", baseURL: "https://portal.example.edu/api/v1/"},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "relative", baseURL: "/api/v1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.baseURL, Options{ClientID: "test"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(client.BaseURL(), "/"))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/login/access-token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "miportal/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "test-client", r.Header.Get("X-Client"))
		assert.Empty(t, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") == "ana" && r.PostForm.Get("password") == "secret" {
			writeJSON(w, http.StatusOK, `{"access_token": "abc123", "token_type": "bearer"}`)
			return
		}
		writeJSON(w, http.StatusBadRequest, `{"detail": "Incorrect email or password"}`)
	}))

	token, err := client.Authenticate(context.Background(), "ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = client.Authenticate(context.Background(), "ana", "wrongpass")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindAuthFailed, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Detail)
	assert.Equal(t, "authenticate: Incorrect email or password", apiErr.Error())
}

func TestAuthenticate_StatusKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
		detail string
	}{
		{name: "unauthorized without detail", status: http.StatusUnauthorized, body: `{}`, kind: KindAuthFailed},
		{name: "forbidden", status: http.StatusForbidden, body: `{"detail": "Inactive user"}`, kind: KindAuthFailed, detail: "Inactive user"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"detail": "Too many login attempts"}`, kind: KindUnavailable, detail: "Too many login attempts"},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, kind: KindUnavailable},
		{name: "not found", status: http.StatusNotFound, body: `{"detail": "Not Found"}`, kind: KindUnexpected, detail: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))

			_, err := client.Authenticate(context.Background(), "ana", "secret")
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.detail, DetailOf(err))
		})
	}
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token": "", "token_type": "bearer"}`)
	}))

	_, err := client.Authenticate(context.Background(), "ana", "secret")
	assert.Equal(t, KindUnexpected, KindOf(err))
}

func TestAuthenticate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := New(url+"/api/v1", Options{ClientID: "test"})
	require.NoError(t, err)

	_, err = client.Authenticate(context.Background(), "ana", "secret")
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer abc123" {
			writeJSON(w, http.StatusUnauthorized, `{"detail": "Could not validate credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id": "7f7c", "username": "ana", "email": "ana@example.edu", "full_name": "Ana Rojas", "role": "student", "is_active": true}`)
	}))

	user, err := client.CurrentUser(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, &models.User{
		ID:       "7f7c",
		Username: "ana",
		Email:    "ana@example.edu",
		FullName: "Ana Rojas",
		Role:     models.RoleStudent,
		IsActive: true,
	}, user)

	_, err = client.CurrentUser(context.Background(), "expired")
	assert.True(t, IsAuthFailed(err))
	assert.Equal(t, "Could not validate credentials", DetailOf(err))
}

func TestRegister(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/", r.URL.Path)

		var request models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		switch request.Email {
		case "taken@example.edu":
			writeJSON(w, http.StatusBadRequest, `{"detail": "The user with email taken@example.edu already exists in the system"}`)
		case "":
			writeJSON(w, http.StatusUnprocessableEntity, `{"detail": [{"loc": ["body", "email"], "msg": "field required"}, {"loc": ["body", "password"], "msg": "ensure this value has at least 8 characters"}]}`)
		default:
			writeJSON(w, http.StatusOK, `{"id": "1", "username": "`+request.Username+`", "email": "`+request.Email+`", "is_active": true}`)
		}
	}))

	user, err := client.Register(context.Background(), models.RegisterRequest{
		Email:    "ana@example.edu",
		Password: "secret123",
		FullName: "Ana Rojas",
		Username: "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)

	_, err = client.Register(context.Background(), models.RegisterRequest{Email: "taken@example.edu"})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "The user with email taken@example.edu already exists in the system", DetailOf(err))

	_, err = client.Register(context.Background(), models.RegisterRequest{})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "field required; ensure this value has at least 8 characters", DetailOf(err))
}

func TestAcademicCollections(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc123" {
			writeJSON(w, http.StatusUnauthorized, `{"detail": "Could not validate credentials"}`)
			return
		}
		switch r.URL.Path {
		case "/api/v1/academic/subjects":
			writeJSON(w, http.StatusOK, `[{"id": "s1", "code": "MAT101", "name": "Algebra", "credits": 6, "description": null}]`)
		case "/api/v1/academic/grades":
			writeJSON(w, http.StatusOK, `[{"id": "g1", "value": 5.5, "weight": 0.3, "evaluation_name": "Certamen 1", "evaluation_date": "2025-04-15T00:00:00", "subject_name": "Algebra", "subject_code": "MAT101"}]`)
		case "/api/v1/academic/schedule":
			writeJSON(w, http.StatusOK, `null`)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()

	subjects, err := client.Subjects(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "MAT101", subjects[0].Code)
	assert.Nil(t, subjects[0].Description)

	grades, err := client.Grades(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 5.5, grades[0].Value)
	require.NotNil(t, grades[0].EvaluationDate)
	assert.Equal(t, 2025, grades[0].EvaluationDate.Year())

	schedule, err := client.Schedule(ctx, "abc123")
	require.NoError(t, err)
	assert.NotNil(t, schedule)
	assert.Empty(t, schedule)

	_, err = client.Subjects(ctx, "expired")
	assert.True(t, IsAuthFailed(err))
}

func TestCollectionMalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"items": []}`)
	}))

	_, err := client.Grades(context.Background(), "abc123")
	require.Error(t, err)
	assert.Equal(t, KindUnexpected, KindOf(err))
}
