// Package sdk is a small client for the StatusAggregator HTTP API.
package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a StatusAggregator server
type Client struct {
	BaseURL     string
	AdminSecret string
	HTTP        *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Display is the badge color and label of a status
type Display struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Service is one row of the service directory
type Service struct {
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	Tags          []string   `json:"tags"`
	StatusPageURL string     `json:"status_page_url,omitempty"`
	Status        string     `json:"status"`
	Display       Display    `json:"display"`
	LastIncident  *time.Time `json:"last_incident,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type Incident struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Components  []string  `json:"components"`
}

type Snapshot struct {
	Status       string     `json:"status"`
	LastIncident *Incident  `json:"last_incident,omitempty"`
	Incidents    []Incident `json:"incidents"`
	FetchedAt    time.Time  `json:"fetched_at"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ServiceDetail is the live view of one service
type ServiceDetail struct {
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	StatusPageURL string     `json:"status_page_url,omitempty"`
	CommunityURL  string     `json:"community_url,omitempty"`
	Tags          []string   `json:"tags"`
	Description   string     `json:"description,omitempty"`
	FAQ           []FAQEntry `json:"faq,omitempty"`
	Snapshot      Snapshot   `json:"snapshot"`
	Display       Display    `json:"display"`
}

// StatusRow is a persisted status
type StatusRow struct {
	ServiceSlug  string     `json:"service_slug"`
	Status       string     `json:"status"`
	LastIncident *time.Time `json:"last_incident,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type StatusChange struct {
	ServiceSlug string `json:"service_slug"`
	ServiceName string `json:"service_name"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// SyncResult summarizes a triggered sync run
type SyncResult struct {
	RunID           string         `json:"run_id"`
	TotalChanges    int            `json:"total_changes"`
	PriorityChanges int            `json:"priority_changes"`
	Changes         []StatusChange `json:"changes"`
	Failed          []string       `json:"failed,omitempty"`
}

// ListOptions filters and orders the service directory
type ListOptions struct {
	Query    string
	Tag      string
	Statuses []string
	Sort     string // name, status or updated
	Desc     bool
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if o.Tag != "" {
		q.Set("tag", o.Tag)
	}
	if len(o.Statuses) > 0 {
		q.Set("status", strings.Join(o.Statuses, ","))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Desc {
		q.Set("order", "desc")
	}
	return q
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("statusaggregator: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("statusaggregator: HTTP %d: %s", e.StatusCode, e.Message)
}

// Services lists the directory
func (c *Client) Services(ctx context.Context, opts ListOptions) ([]Service, error) {
	var out struct {
		Data []Service `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/services", opts.values(), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Service returns the live view of one service
func (c *Client) Service(ctx context.Context, slug string) (*ServiceDetail, error) {
	var out ServiceDetail
	if err := c.do(ctx, http.MethodGet, "/v1/services/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Statuses returns the persisted rows
func (c *Client) Statuses(ctx context.Context) ([]StatusRow, error) {
	var out struct {
		Data []StatusRow `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/statuses", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// StatusDisplay returns the status to badge lookup
func (c *Client) StatusDisplay(ctx context.Context) (map[string]Display, error) {
	out := map[string]Display{}
	if err := c.do(ctx, http.MethodGet, "/v1/status-display", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sync triggers a sync run. It needs AdminSecret.
func (c *Client) Sync(ctx context.Context) (*SyncResult, error) {
	var out SyncResult
	if err := c.do(ctx, http.MethodPost, "/v1/admin/sync", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, dest any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.AdminSecret != "" {
		req.Header.Set("X-Admin-Secret", c.AdminSecret)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
