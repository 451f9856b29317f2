package notesclient

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/starford/notehub/internal/apperr"
)

// Event is one server-sent event from GET /events.
type Event struct {
	ID   string
	Type string
	Data string
}

// Events connects to the change stream and calls fn for every event until
// ctx is cancelled or the server closes the stream. onConnect, if set, runs
// once the server has accepted the stream. A cancelled ctx is not reported
// as an error.
func (c *Client) Events(ctx context.Context, onConnect func(), fn func(Event)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/events", nil)
	if err != nil {
		return &apperr.FetchError{Op: "subscribe events", Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream is long-lived, so the per-request timeout does not apply.
	stream := &http.Client{Transport: c.httpClient.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &apperr.FetchError{Op: "subscribe events", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &apperr.FetchError{
			Op:     "subscribe events",
			Status: resp.StatusCode,
			Err:    errors.New(errorMessage(resp.Body)),
		}
	}
	if onConnect != nil {
		onConnect()
	}

	var (
		ev   Event
		data []string
	)
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if ev.Type != "" || len(data) > 0 {
				if ev.Type == "" {
					ev.Type = "message"
				}
				ev.Data = strings.Join(data, "\n")
				fn(ev)
			}
			ev, data = Event{}, nil
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "id:"):
			ev.ID = strings.TrimSpace(strings.TrimPrefix(line, "id:"))
		case strings.HasPrefix(line, "event:"):
			ev.Type = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return &apperr.FetchError{Op: "read events", Err: err}
	}
	return nil
}
