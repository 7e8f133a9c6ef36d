package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type Meta struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
	Page  int `json:"page,omitempty"`
}

// Page is the list envelope returned by every collection.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// Collection is the typed client for one REST collection such as "jobs".
type Collection[T any] struct {
	client *Client
	name   string
}

func NewCollection[T any](client *Client, name string) *Collection[T] {
	return &Collection[T]{client: client, name: strings.Trim(name, "/")}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) itemPath(id string) string {
	return "/" + c.name + "/" + url.PathEscape(id)
}

func (c *Collection[T]) List(ctx context.Context, query url.Values) (Page[T], error) {
	raw, err := c.client.get(ctx, c.name, "list", "/"+c.name, query)
	if err != nil {
		return Page[T]{}, fmt.Errorf("apiclient: list %s: %w", c.name, err)
	}
	var page Page[T]
	if err := json.Unmarshal(raw, &page); err != nil {
		return Page[T]{}, fmt.Errorf("apiclient: decode %s page: %w", c.name, err)
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	if page.Meta.Total < 0 {
		page.Meta.Total = 0
	}
	return page, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	id = strings.TrimSpace(id)
	if id == "" {
		return out, ErrNotFound
	}
	raw, err := c.client.get(ctx, c.name, "get", c.itemPath(id), nil)
	if err != nil {
		return out, fmt.Errorf("apiclient: get %s/%s: %w", c.name, id, err)
	}
	if err := decodeData(raw, &out); err != nil {
		return out, fmt.Errorf("apiclient: get %s/%s: %w", c.name, id, err)
	}
	return out, nil
}

func (c *Collection[T]) Create(ctx context.Context, body Body) (T, error) {
	return c.write(ctx, "create", http.MethodPost, "/"+c.name, body)
}

func (c *Collection[T]) Update(ctx context.Context, id string, body Body) (T, error) {
	return c.write(ctx, "update", http.MethodPatch, c.itemPath(id), body)
}

// Patch sends a small JSON document, e.g. {"is_approved": false}.
func (c *Collection[T]) Patch(ctx context.Context, id string, payload any) (T, error) {
	return c.write(ctx, "patch", http.MethodPatch, c.itemPath(id), JSONBody{Value: payload})
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.client.mutate(ctx, c.name, "delete", http.MethodDelete, c.itemPath(id), nil); err != nil {
		return fmt.Errorf("apiclient: delete %s/%s: %w", c.name, id, err)
	}
	return nil
}

// Action posts to a collection-level sub-route such as /payments/mark-overdue.
func (c *Collection[T]) Action(ctx context.Context, path string, payload any) error {
	var body Body
	if payload != nil {
		body = JSONBody{Value: payload}
	}
	target := "/" + c.name + "/" + strings.Trim(path, "/")
	if _, err := c.client.mutate(ctx, c.name, "action", http.MethodPost, target, body); err != nil {
		return fmt.Errorf("apiclient: %s action %s: %w", c.name, path, err)
	}
	return nil
}

func (c *Collection[T]) write(ctx context.Context, op, method, path string, body Body) (T, error) {
	var out T
	raw, err := c.client.mutate(ctx, c.name, op, method, path, body)
	if err != nil {
		return out, fmt.Errorf("apiclient: %s %s: %w", op, c.name, err)
	}
	// Some endpoints answer 204 or an envelope without data; that is still a success.
	if err := decodeData(raw, &out); err != nil && err != ErrNotFound {
		return out, fmt.Errorf("apiclient: %s %s: %w", op, c.name, err)
	}
	return out, nil
}
