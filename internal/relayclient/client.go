// Package relayclient is the session side of the relay's HTTP
// surface: the actor directory and the durable flag storage, reached
// over the wire instead of in-process.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Pronana/actor-communicator/internal/directory"
)

// Client talks to a relay daemon. It satisfies the directory and
// flag-store interfaces the core packages consume.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the relay at baseURL (e.g.
// "http://127.0.0.1:7619").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve implements directory.Directory. An unknown id resolves to
// (nil, nil), matching the host registry contract.
func (c *Client) Resolve(ctx context.Context, id string) (*directory.Actor, error) {
	var actor directory.Actor
	found, err := c.getJSON(ctx, "/api/actors/"+url.PathEscape(id), &actor)
	if err != nil || !found {
		return nil, err
	}
	return &actor, nil
}

// List implements directory.Directory.
func (c *Client) List(ctx context.Context) ([]directory.Actor, error) {
	var actors []directory.Actor
	if _, err := c.getJSON(ctx, "/api/actors", &actors); err != nil {
		return nil, err
	}
	return actors, nil
}

// ResolveUser implements directory.UserResolver.
func (c *Client) ResolveUser(ctx context.Context, name string) (*directory.User, error) {
	var user directory.User
	found, err := c.getJSON(ctx, "/api/users/"+url.PathEscape(name), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetFlag implements the flag-store read; an unset key returns nil.
func (c *Client) GetFlag(ctx context.Context, entityID, namespace, key string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.flagURL(entityID, namespace, key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("get flag: relay returned %s", resp.Status)
	}
}

// SetFlag implements the flag-store write.
func (c *Client) SetFlag(ctx context.Context, entityID, namespace, key string, value json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.flagURL(entityID, namespace, key), bytes.NewReader(value))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doNoContent(req, "set flag")
}

// DeleteFlag implements the flag-store delete.
func (c *Client) DeleteFlag(ctx context.Context, entityID, namespace, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.flagURL(entityID, namespace, key), nil)
	if err != nil {
		return err
	}
	return c.doNoContent(req, "delete flag")
}

func (c *Client) flagURL(entityID, namespace, key string) string {
	return c.baseURL + "/api/entities/" + url.PathEscape(entityID) +
		"/flags/" + url.PathEscape(namespace) + "/" + url.PathEscape(key)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%s: relay returned %s", path, resp.Status)
	}
}

func (c *Client) doNoContent(req *http.Request, op string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%s: relay returned %s", op, resp.Status)
	}
	return nil
}
