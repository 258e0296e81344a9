package uicode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Register creates a new account. The account always gets the USER
// role; it does not sign the caller in.
func (c *Client) Register(ctx context.Context, email, username, password string) (User, error) {
	body := map[string]string{"email": email, "username": username, "password": password}
	var u User
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", body, false, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login exchanges credentials for a token pair and stores it. The token
// endpoint speaks the OAuth2 password-flow form shape, with the email
// in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var sess Session
	err := c.do(ctx, http.MethodPost, "/v1/auth/token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), false, &sess)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return User{}, fmt.Errorf("%w: %w", ErrAuthInvalid, err)
		}
		return User{}, err
	}
	if err := c.tokens.Save(Credentials{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.Refresh.Token,
	}); err != nil {
		return User{}, err
	}
	u := sess.User
	c.setCurrent(&u)
	return sess.User, nil
}

// RefreshSession trades the stored refresh token for a fresh pair.
// Rotation is server-side: the old refresh token dies on use.
func (c *Client) RefreshSession(ctx context.Context) (User, error) {
	creds, err := c.tokens.Load()
	if err != nil {
		return User{}, err
	}
	if creds.RefreshToken == "" {
		return User{}, ErrUnauthenticated
	}

	var sess Session
	body := map[string]string{"refresh_token": creds.RefreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", body, false, &sess); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			_ = c.tokens.Clear()
		}
		return User{}, err
	}
	if err := c.tokens.Save(Credentials{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.Refresh.Token,
	}); err != nil {
		return User{}, err
	}
	u := sess.User
	c.setCurrent(&u)
	return sess.User, nil
}

// Me returns the authenticated caller's account.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/v1/users/me", "", nil, true, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Resolve reconciles local session state against the server at startup.
// With no stored token the caller is simply logged out. With a token
// the identity endpoint decides: a live session yields the user, a dead
// token is discarded silently and reported as logged out. Only
// transport and server faults surface as errors.
func (c *Client) Resolve(ctx context.Context) (*User, error) {
	creds, err := c.tokens.Load()
	if err != nil {
		return nil, err
	}
	if creds.Empty() {
		return nil, nil
	}

	u, err := c.Me(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			// do() already cleared the store on the 401.
			return nil, nil
		}
		return nil, err
	}
	c.setCurrent(&u)
	return &u, nil
}

// Logout revokes the session server-side and clears local credentials.
// Local state is cleared even when the revoke call fails: the user
// asked to be logged out and that must hold on this machine regardless.
func (c *Client) Logout(ctx context.Context) error {
	creds, err := c.tokens.Load()
	if err != nil {
		return err
	}
	defer func() {
		_ = c.tokens.Clear()
		c.setCurrent(nil)
	}()

	if creds.Empty() {
		return nil
	}
	// With a refresh token the unauthenticated mount revokes that one
	// session. Holding only an access token, the bearer-gated mount is
	// the one that can revoke everything for the caller.
	path := "/v1/logout"
	var body any
	if creds.RefreshToken != "" {
		path = "/v1/auth/logout"
		body = map[string]string{"refresh_token": creds.RefreshToken}
	}
	if err := c.doJSON(ctx, http.MethodPost, path, body, true, nil); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil // already dead server-side, nothing to revoke
		}
		return err
	}
	return nil
}
