// Package client talks to a remote Lost & Found items API. It tolerates
// the legacy endpoint quirks documented for the original deployment:
// listing via POST when GET is rejected, deleting via a request body when
// the path form 404s, and response envelopes in several shapes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// Errors callers branch on.
var (
	// ErrUnauthorized means the bearer token was rejected; the caller
	// should clear its stored token and re-authenticate.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadShape means a response body matched none of the known shapes.
	ErrBadShape = errors.New("unrecognized response shape")
)

// Client is a remote item source client. The zero HTTPClient falls back to
// a client with a sane timeout.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New creates a client for the API at baseURL. token may be empty for
// anonymous reads.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FileSpec names a file for presigned upload.
type FileSpec struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// UploadTarget is one presigned upload slot.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

// Login exchanges credentials for a bearer token. The token is returned,
// not stored; callers decide where it lives.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Token == "" {
		return "", fmt.Errorf("%w: no token in login response", ErrBadShape)
	}
	return out.Token, nil
}

// ListItems fetches the authoritative item list. A 400 from GET triggers
// the legacy POST-list fallback. The returned error wraps ErrUnauthorized
// on 401 and ErrBadShape when the body cannot be interpreted.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	resp, err := c.do(ctx, http.MethodGet, "/items", nil)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err == nil {
		return DecodeItems(body)
	}
	if resp.StatusCode != http.StatusBadRequest {
		return nil, err
	}

	// Legacy backends expect a POST with an empty JSON payload to list.
	resp, err = c.do(ctx, http.MethodPost, "/items", map[string]any{})
	if err != nil {
		return nil, err
	}
	body, err = readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("listing items (POST fallback): %w", err)
	}
	return DecodeItems(body)
}

// CreateItem submits a new report. The server assigns the identifier and
// timestamp. Required fields and the 1–4 image bound are validated before
// any request is made.
func (c *Client) CreateItem(ctx context.Context, item model.Item) (model.Item, error) {
	if item.ItemName == "" || item.Location == "" || item.Email == "" {
		return model.Item{}, errors.New("itemName, location, and email are required")
	}
	if len(item.Images) < model.MinImages || len(item.Images) > model.MaxImages {
		return model.Item{}, fmt.Errorf("between %d and %d images required", model.MinImages, model.MaxImages)
	}

	payload := map[string]any{
		"itemName":    item.ItemName,
		"description": item.Description,
		"location":    item.Location,
		"email":       item.Email,
		"phone":       item.Phone,
		"images":      item.Images,
	}

	resp, err := c.do(ctx, http.MethodPost, "/items", payload)
	if err != nil {
		return model.Item{}, err
	}
	body, err := readBody(resp)
	if err != nil {
		return model.Item{}, fmt.Errorf("creating item: %w", err)
	}
	return DecodeItem(body)
}

// DeleteItem removes an item. A 400 or 404 from the path form triggers the
// legacy body-delete fallback.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("item id required")
	}

	resp, err := c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	_, err = readBody(resp)
	if err == nil {
		return nil
	}
	if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("deleting item: %w", err)
	}

	resp, err = c.do(ctx, http.MethodDelete, "/items", map[string]string{"id": id})
	if err != nil {
		return err
	}
	if _, err := readBody(resp); err != nil {
		return fmt.Errorf("deleting item (body fallback): %w", err)
	}
	return nil
}

// MarkReturned flags an item as returned to its owner via a partial update.
func (c *Client) MarkReturned(ctx context.Context, id, notes, by string) (model.Item, error) {
	if id == "" {
		return model.Item{}, errors.New("item id required")
	}

	payload := map[string]any{
		"returned":     true,
		"returnedDate": time.Now().UnixMilli(),
		"adminNotes":   notes,
		"returnedBy":   by,
	}

	resp, err := c.do(ctx, http.MethodPut, "/items/"+url.PathEscape(id), payload)
	if err != nil {
		return model.Item{}, err
	}
	body, err := readBody(resp)
	if err != nil {
		return model.Item{}, fmt.Errorf("marking item returned: %w", err)
	}
	return DecodeItem(body)
}

// RequestUploadURLs asks the server for presigned upload slots.
func (c *Client) RequestUploadURLs(ctx context.Context, files []FileSpec) ([]UploadTarget, error) {
	resp, err := c.do(ctx, http.MethodPost, "/presigned-urls", map[string]any{"files": files})
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("requesting upload urls: %w", err)
	}

	var out struct {
		URLs []UploadTarget `json:"urls"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	return out.URLs, nil
}

// UploadImage PUTs raw file bytes to a presigned upload URL.
func (c *Client) UploadImage(ctx context.Context, uploadURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("uploading image: status %d", resp.StatusCode)
	}
	return nil
}

// do issues a JSON request against the API base URL with bearer auth.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// readBody drains and closes the response body. Non-2xx statuses are
// returned as errors (401 wraps ErrUnauthorized) with the body preserved
// for the caller's fallback checks via resp.StatusCode.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: status 401", ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
