package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"labscope/domain/catalog"
	"labscope/domain/core"
)

// Source fetches catalog collections and dimension vocabularies from a
// remote JSON service. Cancellation is wired through the request context;
// an aborted fetch surfaces the context error distinctly from a successful
// empty collection.
type Source struct {
	baseURL string
	client  *http.Client
}

// NewSource creates an HTTP catalog source against a base URL
func NewSource(baseURL string, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Source{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchCollection retrieves one resource's record collection, carrying the
// serialized filter as query parameters
func (s *Source) FetchCollection(ctx context.Context, resource catalog.Resource, params url.Values) (catalog.Collection, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/%s", s.baseURL, resource), params)
	if err != nil {
		return nil, err
	}
	return parseCollection(body)
}

// FetchVocabulary retrieves the selectable values for one dimension
func (s *Source) FetchVocabulary(ctx context.Context, dim catalog.Dimension) ([]string, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/vocab/%s", s.baseURL, dim), nil)
	if err != nil {
		return nil, err
	}
	rows := payloadRows(body)
	if !rows.IsArray() {
		return nil, fmt.Errorf("%w: vocabulary for %s is not an array", core.ErrBadPayload, dim)
	}
	var out []string
	rows.ForEach(func(_, value gjson.Result) bool {
		out = append(out, value.String())
		return true
	})
	return out, nil
}

func (s *Source) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", core.ErrSourceStatus, resp.StatusCode, rawURL)
	}
	return body, nil
}

// parseCollection decodes a record collection from a payload that is either
// a bare array or an envelope with a "data" array. Unknown fields land in
// the record's Extra bag; known dimensions land in Attrs.
func parseCollection(body []byte) (catalog.Collection, error) {
	rows := payloadRows(body)
	if !rows.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of records", core.ErrBadPayload)
	}

	dims := make(map[string]catalog.Dimension, len(catalog.Dimensions))
	for _, dim := range catalog.Dimensions {
		dims[string(dim)] = dim
	}

	var out catalog.Collection
	rows.ForEach(func(_, row gjson.Result) bool {
		rec := catalog.Record{
			Code:  row.Get("code").String(),
			Name:  row.Get("name").String(),
			Price: row.Get("price").String(),
		}
		row.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "code", "name", "price":
				return true
			}
			if dim, ok := dims[key.String()]; ok {
				if rec.Attrs == nil {
					rec.Attrs = make(map[catalog.Dimension]string)
				}
				rec.Attrs[dim] = value.String()
			} else {
				if rec.Extra == nil {
					rec.Extra = make(map[string]string)
				}
				rec.Extra[key.String()] = value.String()
			}
			return true
		})
		out = append(out, rec)
		return true
	})
	return out, nil
}

// payloadRows unwraps enveloped responses; bare arrays pass through
func payloadRows(body []byte) gjson.Result {
	parsed := gjson.ParseBytes(body)
	if parsed.IsObject() {
		if data := parsed.Get("data"); data.Exists() {
			return data
		}
	}
	return parsed
}
