// Package notesclient talks to the notes API over HTTP.
package notesclient

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
	"time"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/models"
)

// Client is a notes API client. Every failure it returns is an
// *apperr.FetchError.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL (for example
// "http://127.0.0.1:8080/api"). token may be empty when auth is disabled.
// timeout bounds single requests; the event stream is not subject to it.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchNotes fetches one page of notes.
func (c *Client) FetchNotes(ctx context.Context, req models.PageRequest) (*models.PageResult, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("perPage", strconv.Itoa(req.PerPage))
	q.Set("search", req.Search)

	var out models.PageResult
	if err := c.call(ctx, "fetch notes", http.MethodGet, "/notes?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Notes == nil {
		out.Notes = []models.Note{}
	}
	return &out, nil
}

// CreateNote creates a note from the draft.
func (c *Client) CreateNote(ctx context.Context, d models.NoteDraft) (*models.Note, error) {
	var out models.Note
	if err := c.call(ctx, "create note", http.MethodPost, "/notes", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote deletes a note and returns it as it was.
func (c *Client) DeleteNote(ctx context.Context, id string) (*models.Note, error) {
	var out models.Note
	if err := c.call(ctx, "delete note", http.MethodDelete, "/notes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &apperr.FetchError{Op: op, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &apperr.FetchError{Op: op, Status: resp.StatusCode, Err: errors.New(errorMessage(resp.Body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperr.FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// errorMessage extracts the "error" field of an API error body, falling back
// to the raw body text.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil {
		return fmt.Sprintf("failed to read body: %v", err)
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return "empty response"
}
