// Package trello implements the service.Service interface using the Trello REST API.
package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"

	"trello-track/internal/config"
	"trello-track/internal/service"
)

const (
	// DefaultBaseURL is the Trello REST API root.
	DefaultBaseURL = "https://api.trello.com/1"

	// searchModelTypes limits search results to cards.
	searchModelTypes = "cards"
)

// ErrInvalidResponse is returned when a response lacks a required field.
var ErrInvalidResponse = errors.New("invalid response")

// Client implements service.Service using the Trello REST API.
// Every request is authenticated with the key and token as query parameters.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	token      string
}

// New creates a new Trello client from resolved credentials.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		key:        cfg.Key,
		token:      cfg.Token,
	}, nil
}

// NewWithHTTPClient creates a client against a custom base URL (for testing).
func NewWithHTTPClient(httpClient *http.Client, baseURL, key, token string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		token:      token,
	}
}

// SearchCards runs a card search.
func (c *Client) SearchCards(ctx context.Context, query string) ([]service.Card, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("modelTypes", searchModelTypes)

	var resp searchResult
	if err := c.do(ctx, http.MethodGet, "/search", params, &resp); err != nil {
		return nil, err
	}

	result := make([]service.Card, 0, len(resp.Cards))
	for _, card := range resp.Cards {
		parsed, err := card.toCard()
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

// ListChecklists returns the checklists of a card.
func (c *Client) ListChecklists(ctx context.Context, cardID string) ([]service.Checklist, error) {
	var resp []checklist
	if err := c.do(ctx, http.MethodGet, "/cards/"+url.PathEscape(cardID)+"/checklists", nil, &resp); err != nil {
		return nil, err
	}

	result := make([]service.Checklist, 0, len(resp))
	for _, cl := range resp {
		parsed, err := cl.toChecklist(cardID)
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

// CreateChecklist adds a checklist to a card.
func (c *Client) CreateChecklist(ctx context.Context, cardID, name string) (service.Checklist, error) {
	params := url.Values{}
	params.Set("name", name)

	var resp checklist
	if err := c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/checklists", params, &resp); err != nil {
		return service.Checklist{}, err
	}
	return resp.toChecklist(cardID)
}

// CreateCheckItem appends an item to a checklist.
func (c *Client) CreateCheckItem(ctx context.Context, checklistID, name string) (service.CheckItem, error) {
	params := url.Values{}
	params.Set("name", name)

	var resp checkItem
	if err := c.do(ctx, http.MethodPost, "/checklists/"+url.PathEscape(checklistID)+"/checkItems", params, &resp); err != nil {
		return service.CheckItem{}, err
	}
	return resp.toCheckItem(checklistID)
}

// UpdateCheckItem sets the name and state of a check item.
func (c *Client) UpdateCheckItem(ctx context.Context, cardID, itemID, name, state string) error {
	params := url.Values{}
	params.Set("name", name)
	params.Set("state", state)

	path := "/cards/" + url.PathEscape(cardID) + "/checkItem/" + url.PathEscape(itemID)
	return c.do(ctx, http.MethodPut, path, params, nil)
}

// AddComment posts a comment on a card.
func (c *Client) AddComment(ctx context.Context, cardID, text string) error {
	params := url.Values{}
	params.Set("text", text)

	return c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/actions/comments", params, nil)
}

// do performs one authenticated request and decodes the JSON body into out.
// out may be nil when the response body is not needed.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", c.key)
	query.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, credentials included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%s %s: %w", method, path, wrapError(err))
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, wrapError(err))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	body := strings.TrimSpace(apiErr.Body)
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("key or token rejected (check https://trello.com/app-key): %s", body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", service.ErrNotFound, body)
	default:
		return fmt.Errorf("trello returned HTTP %d: %s", apiErr.Code, body)
	}
}
