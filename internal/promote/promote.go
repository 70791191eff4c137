// Package promote issues the outbound waitlist-promotion command to
// the registration backend. This is the engine's single side effect;
// everything downstream of a successful promotion is picked up by the
// next aggregation pass over a refreshed registrant snapshot.
package promote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the registration backend's promotion endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient constructs a Client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type promoteRequest struct {
	RegistrantID string `json:"registrant_id"`
	Activity     string `json:"activity"`
}

// Promote asks the backend to move the registrant out of the waitlist
// for the named activity. A non-2xx response becomes an error carrying
// the backend's message; no local state is touched either way.
func (c *Client) Promote(ctx context.Context, registrantID, activity string) error {
	body, err := json.Marshal(promoteRequest{RegistrantID: registrantID, Activity: activity})
	if err != nil {
		return fmt.Errorf("encode promote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build promote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("promote registrant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("promote registrant: backend returned %s: %s",
			resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
