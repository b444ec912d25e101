package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"todonest/internal/model"
)

// Client is a thin HTTP client for the todonest REST API. It handles
// Bearer token authentication and JSON marshaling. Failed writes surface
// the server's message; there is no retry in the mutation path.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError is a non-2xx answer from the server, carrying the message from
// the error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient creates a client for the API at baseURL, e.g.
// http://localhost:8080.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	return c.token
}

type authResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

type todoResponse struct {
	Success bool        `json:"success"`
	Todo    *model.Todo `json:"todo"`
}

type todoListResponse struct {
	Success bool          `json:"success"`
	Todos   []*model.Todo `json:"todos"`
}

type deleteResponse struct {
	Success      bool `json:"success"`
	DeletedCount int  `json:"deletedCount"`
}

type tagResponse struct {
	Success bool       `json:"success"`
	Tag     *model.Tag `json:"tag"`
}

type tagListResponse struct {
	Success bool        `json:"success"`
	Tags    []model.Tag `json:"tags"`
}

// Register creates an account and remembers the returned token.
func (c *Client) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// Login authenticates and remembers the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListTodos fetches the full assembled todo tree.
func (c *Client) ListTodos(ctx context.Context) ([]*model.Todo, error) {
	var resp todoListResponse
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Todos, nil
}

// CreateTodo creates a root todo, or a child when parentID is non-nil.
func (c *Client) CreateTodo(ctx context.Context, title, description string, parentID *string, tagIDs []string) (*model.Todo, error) {
	var resp todoResponse
	err := c.do(ctx, http.MethodPost, "/api/todos", map[string]interface{}{
		"title":       title,
		"description": description,
		"parentId":    parentID,
		"tags":        tagIDs,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Todo, nil
}

// UpdateTodo applies a partial update; nil fields are left untouched.
func (c *Client) UpdateTodo(ctx context.Context, id string, title, description *string, tagIDs *[]string) (*model.Todo, error) {
	body := map[string]interface{}{}
	if title != nil {
		body["title"] = *title
	}
	if description != nil {
		body["description"] = *description
	}
	if tagIDs != nil {
		body["tags"] = *tagIDs
	}

	var resp todoResponse
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+id, body, &resp); err != nil {
		return nil, err
	}
	return resp.Todo, nil
}

// ToggleTodo flips completion state.
func (c *Client) ToggleTodo(ctx context.Context, id string) (*model.Todo, error) {
	var resp todoResponse
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+id+"/toggle", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Todo, nil
}

// SetPriority sets or clears the priority flag.
func (c *Client) SetPriority(ctx context.Context, id string, isPriority bool) (*model.Todo, error) {
	var resp todoResponse
	err := c.do(ctx, http.MethodPatch, "/api/todos/"+id+"/priority", map[string]bool{
		"isPriority": isPriority,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Todo, nil
}

// ReorderTodos submits the new root ordering, first id on top.
func (c *Client) ReorderTodos(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPatch, "/api/todos/reorder", map[string][]string{
		"todoIds": ids,
	}, nil)
}

// DeleteTodo removes a todo and its subtree, returning the removed count.
func (c *Client) DeleteTodo(ctx context.Context, id string) (int, error) {
	var resp deleteResponse
	if err := c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// DeleteCompleted removes every completed todo and its subtree.
func (c *Client) DeleteCompleted(ctx context.Context) (int, error) {
	var resp deleteResponse
	if err := c.do(ctx, http.MethodDelete, "/api/todos/completed", nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// DeleteCompletedOn removes todos completed on the given day.
func (c *Client) DeleteCompletedOn(ctx context.Context, day time.Time) (int, error) {
	var resp deleteResponse
	path := "/api/todos/completed/" + day.Format("2006-01-02")
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// ListTags fetches the user's tags.
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var resp tagListResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// CreateTag creates a tag, returning the existing one on a repeat name.
func (c *Client) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	var resp tagResponse
	err := c.do(ctx, http.MethodPost, "/api/tags", map[string]string{"name": name}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tag, nil
}

// UpdateTag renames or recolors a tag; nil fields are left untouched.
func (c *Client) UpdateTag(ctx context.Context, id string, name, color *string) (*model.Tag, error) {
	body := map[string]string{}
	if name != nil {
		body["name"] = *name
	}
	if color != nil {
		body["color"] = *color
	}

	var resp tagResponse
	if err := c.do(ctx, http.MethodPut, "/api/tags/"+id, body, &resp); err != nil {
		return nil, err
	}
	return resp.Tag, nil
}

// DeleteTag removes a tag and detaches it from every todo.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tags/"+id, nil, nil)
}

// do builds the request, handles auth headers, and decodes the JSON answer.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}
