package todo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service defines the remote todo API surface the sync engine depends on.
// This interface is implemented by *Client and can be faked in tests.
type Service interface {
	FetchLists(ctx context.Context) ([]List, error)
	FetchItems(ctx context.Context, listID string) ([]Item, error)
	CreateItem(ctx context.Context, listID, description string) (Item, error)
	UpdateItem(ctx context.Context, listID, itemID string, patch ItemPatch) (Item, error)
	DeleteItem(ctx context.Context, listID, itemID string) error
	TriggerCompleteAll(ctx context.Context, listID string) error
	GenerateSampleData(ctx context.Context, listID string) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the todo service HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8475"
	defaultUserAgent = "tally/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided host:port or URL value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// EventsURL returns the websocket endpoint for the push channel.
func (c *Client) EventsURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/api/events"
	return u.String()
}

// FetchLists retrieves all known lists.
func (c *Client) FetchLists(ctx context.Context) ([]List, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ListsResponse
	if err := c.do(ctx, http.MethodGet, "/api/lists", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Lists, nil
}

// FetchItems retrieves the full item collection for a list.
func (c *Client) FetchItems(ctx context.Context, listID string) ([]Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ItemsResponse
	if err := c.do(ctx, http.MethodGet, itemsPath(listID), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// CreateItem creates a new item and returns the authoritative server copy.
func (c *Client) CreateItem(ctx context.Context, listID, description string) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	body := struct {
		Description string `json:"description"`
	}{Description: description}
	var created Item
	if err := c.do(ctx, http.MethodPost, itemsPath(listID), body, &created); err != nil {
		return Item{}, err
	}
	return created, nil
}

// UpdateItem applies a partial update and returns the authoritative item.
func (c *Client) UpdateItem(ctx context.Context, listID, itemID string, patch ItemPatch) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	var updated Item
	if err := c.do(ctx, http.MethodPatch, itemPath(listID, itemID), patch, &updated); err != nil {
		return Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, listID, itemID string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodDelete, itemPath(listID, itemID), nil, nil)
}

// TriggerCompleteAll asks the server to complete every item in the list.
// The server answers 202 Accepted; completion is observed asynchronously
// through polling or the push channel, never through this call.
func (c *Client) TriggerCompleteAll(ctx context.Context, listID string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, itemsPath(listID)+"/complete-all", nil, nil)
}

// GenerateSampleData asks the server to populate the list with sample items.
func (c *Client) GenerateSampleData(ctx context.Context, listID string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, itemsPath(listID)+"/sample", nil, nil)
}

func itemsPath(listID string) string {
	return "/api/lists/" + url.PathEscape(listID) + "/items"
}

func itemPath(listID, itemID string) string {
	return "/api/lists/" + url.PathEscape(listID) + "/items/" + url.PathEscape(itemID)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server address %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
