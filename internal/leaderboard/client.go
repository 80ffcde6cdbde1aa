package leaderboard

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
)

// Client talks to a remote leaderboard service over its JSON API. It
// satisfies Repository so a game server can use a shared board.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ Repository = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse leaderboard url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("leaderboard url must be http(s), got %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *Client) endpoint(q url.Values) string {
	u := *c.base
	u.Path += "/api/leaderboard"
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) Submit(ctx context.Context, sub Submission) (Entry, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return Entry{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(nil), bytes.NewReader(body))
	if err != nil {
		return Entry{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var e Entry
	if err := c.do(req, http.StatusCreated, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (c *Client) Top(ctx context.Context, limit int) ([]Entry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(q), nil)
	if err != nil {
		return nil, err
	}
	var out TopResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// Ping fetches a single entry to prove the remote is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Top(ctx, 1)
	return err
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, &eb)
		return remoteErr(resp.StatusCode, eb)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func remoteErr(status int, eb errorBody) error {
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	var base error
	switch eb.Code {
	case codeInvalidName:
		base = ErrInvalidName
	case codeInvalidScore:
		base = ErrInvalidScore
	default:
		base = ErrUnavailable
	}
	if errors.Is(base, ErrUnavailable) {
		return fmt.Errorf("%w: remote status %d: %s", base, status, msg)
	}
	return fmt.Errorf("%w: remote: %s", base, msg)
}
