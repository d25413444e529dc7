package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/harrisonrobin/asanalink/pkg/auth"
	"google.golang.org/api/googleapi"
)

const (
	// DefaultBaseURL is the Asana REST API root.
	DefaultBaseURL = "https://app.asana.com/api/1.0"

	// StoryFetchLimit bounds how many stories are read when searching a task's history.
	StoryFetchLimit = 200

	// maxPageSize is the largest page the Asana API serves.
	maxPageSize = 100

	taskFields  = "name,completed,projects.name,custom_fields.name,custom_fields.resource_subtype,custom_fields.enum_options.name,custom_fields.enum_options.enabled"
	storyFields = "text,type,resource_subtype,is_pinned,created_at"
)

// ErrUnauthorized is matched by API errors with status 401.
var ErrUnauthorized = errors.New("asana: client authorization failed")

// Client is an Asana REST API client.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an Asana client for a personal access token and checks
// that the token is accepted.
func NewClient(ctx context.Context, pat string) (*Client, error) {
	hc, err := auth.GetClient(ctx, pat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	c := NewTaskClient(hc, DefaultBaseURL)
	if err := c.Authorize(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewTaskClient wraps an already authenticated *http.Client.
func NewTaskClient(hc *http.Client, baseURL string) *Client {
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

// Authorize fetches the token's user. Any failure is reported as ErrUnauthorized.
func (c *Client) Authorize(ctx context.Context) error {
	var me envelope[struct {
		GID string `json:"gid"`
	}]
	if err := c.do(ctx, http.MethodGet, "/users/me", url.Values{"opt_fields": {"gid"}}, nil, &me); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return nil
}

// GetTask fetches a task with its project memberships and custom fields.
func (c *Client) GetTask(ctx context.Context, taskGID string) (*Task, error) {
	var out envelope[Task]
	q := url.Values{"opt_fields": {taskFields}}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskGID), q, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch task %s: %w", taskGID, err)
	}
	return &out.Data, nil
}

// ListSections returns every section of a project.
func (c *Client) ListSections(ctx context.Context, projectGID string) ([]Section, error) {
	var sections []Section
	offset := ""
	for {
		q := url.Values{
			"opt_fields": {"name"},
			"limit":      {strconv.Itoa(maxPageSize)},
		}
		if offset != "" {
			q.Set("offset", offset)
		}
		var page envelope[[]Section]
		if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectGID)+"/sections", q, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list sections of project %s: %w", projectGID, err)
		}
		sections = append(sections, page.Data...)
		if page.NextPage == nil || page.NextPage.Offset == "" {
			return sections, nil
		}
		offset = page.NextPage.Offset
	}
}

// AddTaskToSection moves a task into a section of a project it belongs to.
func (c *Client) AddTaskToSection(ctx context.Context, sectionGID, taskGID string) error {
	body := map[string]string{"task": taskGID}
	if err := c.do(ctx, http.MethodPost, "/sections/"+url.PathEscape(sectionGID)+"/addTask", nil, body, nil); err != nil {
		return fmt.Errorf("failed to add task %s to section %s: %w", taskGID, sectionGID, err)
	}
	return nil
}

// ListStories returns up to limit stories of a task, oldest first.
func (c *Client) ListStories(ctx context.Context, taskGID string, limit int) ([]Story, error) {
	var stories []Story
	offset := ""
	for limit > 0 && len(stories) < limit {
		q := url.Values{
			"opt_fields": {storyFields},
			"limit":      {strconv.Itoa(min(maxPageSize, limit-len(stories)))},
		}
		if offset != "" {
			q.Set("offset", offset)
		}
		var page envelope[[]Story]
		if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskGID)+"/stories", q, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list stories of task %s: %w", taskGID, err)
		}
		stories = append(stories, page.Data...)
		if page.NextPage == nil || page.NextPage.Offset == "" {
			break
		}
		offset = page.NextPage.Offset
	}
	if limit > 0 && len(stories) > limit {
		stories = stories[:limit]
	}
	return stories, nil
}

// AddComment posts a comment story on a task.
func (c *Client) AddComment(ctx context.Context, taskGID string, comment NewComment) (*Story, error) {
	var out envelope[Story]
	if err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskGID)+"/stories", nil, comment, &out); err != nil {
		return nil, fmt.Errorf("failed to comment on task %s: %w", taskGID, err)
	}
	return &out.Data, nil
}

// DeleteStory deletes a story. Only comments authored by the token's user can be deleted.
func (c *Client) DeleteStory(ctx context.Context, storyGID string) error {
	if err := c.do(ctx, http.MethodDelete, "/stories/"+url.PathEscape(storyGID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete story %s: %w", storyGID, err)
	}
	return nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, taskGID string, update TaskUpdate) error {
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskGID), nil, update, nil); err != nil {
		return fmt.Errorf("failed to update task %s: %w", taskGID, err)
	}
	return nil
}

// do sends a request wrapped in the {"data": ...} envelope and decodes the
// response into out when it is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(map[string]any{"data": in})
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Asana-Enable", "new_sections,string_ids")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// checkResponse converts a non-2xx response into an *APIError.
func checkResponse(res *http.Response) error {
	err := googleapi.CheckResponse(res)
	if err == nil {
		return nil
	}
	apiErr := &APIError{StatusCode: res.StatusCode}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		var eb errorBody
		if json.Unmarshal([]byte(gerr.Body), &eb) == nil {
			for _, e := range eb.Errors {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
		if len(apiErr.Messages) == 0 && strings.TrimSpace(gerr.Body) != "" {
			apiErr.Messages = []string{strings.TrimSpace(gerr.Body)}
		}
	}
	return apiErr
}
