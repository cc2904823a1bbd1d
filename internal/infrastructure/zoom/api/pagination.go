// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
)

const nextPageTokenField = "next_page_token"

// FetchAll follows the next_page_token cursor of a listing endpoint and returns
// the concatenation of every page's field array, in server order. A page that
// lacks field contributes nothing. An error on any page discards the pages
// already read.
func FetchAll[T any](ctx context.Context, c *Client, path string, query url.Values, field string) ([]T, error) {
	var (
		all    []T
		cursor string
		seen   = map[string]bool{}
	)

	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("page_size", strconv.Itoa(c.config.PageSize))
		if cursor != "" {
			q.Set(nextPageTokenField, cursor)
		}

		var envelope map[string]json.RawMessage
		if err := c.getJSON(ctx, path, q, &envelope); err != nil {
			return nil, err
		}

		items, err := decodeField[T](envelope, field)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, path, err)
		}
		all = append(all, items...)

		cursor, err = decodeCursor(envelope)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, path, err)
		}

		slog.DebugContext(ctx, "fetched page",
			"path", path,
			"page", page,
			"field", field,
			"items", len(items),
			"has_next", cursor != "")

		if cursor == "" {
			return all, nil
		}
		if seen[cursor] {
			return nil, fmt.Errorf("%s returned cursor %q twice", path, cursor)
		}
		seen[cursor] = true
	}
}

func decodeField[T any](envelope map[string]json.RawMessage, field string) ([]T, error) {
	raw, ok := envelope[field]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", field, err)
	}
	return items, nil
}

func decodeCursor(envelope map[string]json.RawMessage) (string, error) {
	raw, ok := envelope[nextPageTokenField]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var cursor string
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", nextPageTokenField, err)
	}
	return cursor, nil
}
