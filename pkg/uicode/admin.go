package uicode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Review decisions.
const (
	DecisionAccepted = "ACCEPTED"
	DecisionRejected = "REJECTED"
)

// PendingComponents lists the moderation queue, oldest first. ADMIN only.
func (c *Client) PendingComponents(ctx context.Context) ([]Component, error) {
	var out itemsResp
	if err := c.do(ctx, http.MethodGet, "/v1/admin/pending", "", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Review applies a moderation decision to a pending snippet. Repeating
// the same decision is a no-op success; flipping an already reviewed
// snippet answers ErrConflict.
func (c *Client) Review(ctx context.Context, id uint64, decision string) error {
	path := fmt.Sprintf("/v1/admin/components/%d/status?status=%s", id, url.QueryEscape(decision))
	return c.do(ctx, http.MethodPatch, path, "", nil, true, nil)
}

// AdminDeleteComponent removes any snippet regardless of owner.
func (c *Client) AdminDeleteComponent(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/admin/components/%d", id), "", nil, true, nil)
}

// Users lists registered accounts.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out usersResp
	if err := c.do(ctx, http.MethodGet, "/v1/admin/users", "", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// UserComponents lists one user's submissions in every state.
func (c *Client) UserComponents(ctx context.Context, userID uint64) ([]Component, error) {
	var out itemsResp
	path := fmt.Sprintf("/v1/admin/users/%d/components", userID)
	if err := c.do(ctx, http.MethodGet, path, "", nil, true, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// DeleteUser removes an account together with its components and every
// rating pointing either way. The server runs the cascade in one
// transaction.
func (c *Client) DeleteUser(ctx context.Context, userID uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", userID), "", nil, true, nil)
}
