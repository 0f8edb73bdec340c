package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/miportal/portal/internal/common"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// Client talks to the portal API under a single base URL such as
// http://localhost:8000/api/v1.
type Client struct {
	baseURL string
	http    *resty.Client
}

// Options allows overriding the client's dependencies.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
	ClientID   string
}

func New(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(baseURL) == 0 {
		return nil, errors.New("base url is empty")
	}
	if !common.IsValidAPIEndpoint(baseURL) {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	userAgent := opts.UserAgent
	if len(userAgent) == 0 {
		userAgent = common.GetUserAgent()
	}

	clientID := opts.ClientID
	if len(clientID) == 0 {
		clientID = common.GetClientIdentifier().String()
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetHeader("X-Client", clientID).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			logrus.WithFields(logrus.Fields{
				"method":   resp.Request.Method,
				"url":      resp.Request.URL,
				"status":   resp.StatusCode(),
				"duration": resp.Time(),
			}).Debug("Portal API request")
			return nil
		})

	return &Client{baseURL: baseURL, http: client}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if len(token) > 0 {
		req.SetAuthToken(token)
	}
	return req
}

// decode unmarshals a successful response body into out, or classifies the
// failure.
func decode(op string, resp *resty.Response, err error, classify statusClassifier, out any) error {
	if err != nil {
		return wrapError(op, KindUnavailable, err)
	}
	if !resp.IsSuccess() {
		return statusError(op, resp, classify)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{
			Op:     op,
			Kind:   KindUnexpected,
			Status: resp.StatusCode(),
			Err:    fmt.Errorf("failed to parse response: %w", err),
		}
	}
	return nil
}

// getCollection reads a JSON array. A null body decodes as an empty slice.
func getCollection[T any](ctx context.Context, c *Client, op, path, token string) ([]T, error) {
	resp, err := c.request(ctx, token).Get(path)

	var items []T
	if err := decode(op, resp, err, classifyDefault, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
