package uicode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/uicode-market/uicode/internal/catalog"
)

// CreateComponent submits a snippet. The server ignores any status the
// caller might wish for: every submission starts PENDING.
func (c *Client) CreateComponent(ctx context.Context, nc NewComponent) (Component, error) {
	var out Component
	if err := c.doJSON(ctx, http.MethodPost, "/v1/components", nc, true, &out); err != nil {
		return Component{}, err
	}
	return out, nil
}

// Components lists the public gallery: ACCEPTED snippets only, newest
// first, filtered and paginated by q. The category/search filters go
// through the taxonomy's resolver, so the "All" pseudo-category means
// no category constraint and never travels on the wire.
func (c *Client) Components(ctx context.Context, q ListQuery) ([]Component, int64, error) {
	v := catalog.Resolve(q.Category, q.Search)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	path := "/v1/components"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}

	var out itemsResp
	if err := c.do(ctx, http.MethodGet, path, "", nil, false, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// Component fetches one snippet by id, any status.
func (c *Client) Component(ctx context.Context, id uint64) (Component, error) {
	var out Component
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/components/%d", id), "", nil, false, &out); err != nil {
		return Component{}, err
	}
	return out, nil
}

// Preview fetches the sandboxed HTML document for a snippet, ready to
// embed as-is.
func (c *Client) Preview(ctx context.Context, id uint64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/components/%d/preview", c.baseURL, id), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", c.apiError(resp, false)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// MyComponents lists the caller's own submissions in every state.
func (c *Client) MyComponents(ctx context.Context) ([]Component, error) {
	var out itemsResp
	if err := c.do(ctx, http.MethodGet, "/v1/users/me/components", "", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// DeleteComponent removes a snippet. Owners may delete their own,
// admins anyone's; the server answers 403 otherwise.
func (c *Client) DeleteComponent(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/components/%d", id), "", nil, true, nil)
}

// Rate casts or replaces the caller's vote on an ACCEPTED snippet and
// returns the fresh aggregate. Voting again replaces the previous
// score, it never double-counts.
func (c *Client) Rate(ctx context.Context, id uint64, score int) (RatingResult, error) {
	body := map[string]int{"score": score}
	var out RatingResult
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/v1/components/%d/rate", id), body, true, &out); err != nil {
		return RatingResult{}, err
	}
	return out, nil
}
