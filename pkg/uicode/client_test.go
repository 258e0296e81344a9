package uicode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uicode-market/uicode/internal/render"
)

// fakeBackend is an in-memory stand-in for the marketplace API, serving
// the same routes, payload shapes and status codes the real handlers
// produce.
type fakeBackend struct {
	mu         sync.Mutex
	nextUserID uint64
	nextCompID uint64
	users      map[string]*fakeUser // keyed by email
	tokens     map[string]*fakeUser // access token -> user
	refresh    map[string]*fakeUser // refresh token -> user
	components map[uint64]*fakeComponent
	ratings    map[string]int // "uid/cid" -> score
	listCalls  int

	// beforeList, when set, runs before a listing responds. Search
	// tests use it to stall selected requests.
	beforeList func(r *http.Request)
}

type fakeUser struct {
	ID       uint64
	Email    string
	Password string
	Role     string
}

type fakeComponent struct {
	ID       uint64
	OwnerID  uint64
	Category string
	HTML     string
	CSS      string
	Status   string
	Sum      uint64
	Count    uint64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:      map[string]*fakeUser{},
		tokens:     map[string]*fakeUser{},
		refresh:    map[string]*fakeUser{},
		components: map[uint64]*fakeComponent{},
		ratings:    map[string]int{},
	}
}

func (b *fakeBackend) addUser(email, password, role string) *fakeUser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextUserID++
	u := &fakeUser{ID: b.nextUserID, Email: email, Password: password, Role: role}
	b.users[email] = u
	return u
}

func (b *fakeBackend) caller(r *http.Request) *fakeUser {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[strings.TrimPrefix(auth, "Bearer ")]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func userJSON(u *fakeUser) map[string]any {
	return map[string]any{
		"id": u.ID, "email": u.Email,
		"username": strings.SplitN(u.Email, "@", 2)[0], "role": u.Role,
	}
}

// issueSession mints an access/refresh pair. Callers hold b.mu.
func (b *fakeBackend) issueSession(u *fakeUser) map[string]any {
	token := fmt.Sprintf("tok-%d-%d", u.ID, len(b.tokens))
	b.tokens[token] = u
	b.refresh["refresh-"+token] = u
	return map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         userJSON(u),
		"refresh":      map[string]any{"token": "refresh-" + token, "expires": time.Now().Add(time.Hour)},
	}
}

func compJSON(c *fakeComponent, owner *fakeUser) map[string]any {
	avg := 0.0
	if c.Count > 0 {
		avg = float64(c.Sum) / float64(c.Count)
	}
	return map[string]any{
		"id": c.ID, "category": c.Category,
		"html_code": c.HTML, "css_code": c.CSS,
		"status": c.Status, "created_at": "2026-01-01T00:00:00Z",
		"owner": map[string]any{
			"id": owner.ID, "email": owner.Email, "username": strings.SplitN(owner.Email, "@", 2)[0],
		},
		"rating": avg, "review_count": c.Count,
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		email := strings.ToLower(req.Email)
		if _, exists := b.users[email]; exists {
			writeErr(w, http.StatusConflict, "email already exists")
			return
		}
		b.nextUserID++
		u := &fakeUser{ID: b.nextUserID, Email: email, Password: req.Password, Role: "USER"}
		b.users[email] = u
		writeJSON(w, http.StatusCreated, userJSON(u))
	})

	mux.HandleFunc("POST /v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		u, ok := b.users[strings.ToLower(r.FormValue("username"))]
		if !ok || u.Password != r.FormValue("password") {
			b.mu.Unlock()
			writeErr(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		sess := b.issueSession(u)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, sess)
	})

	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		u, ok := b.refresh[req.RefreshToken]
		if !ok {
			b.mu.Unlock()
			writeErr(w, http.StatusUnauthorized, "invalid refresh")
			return
		}
		delete(b.refresh, req.RefreshToken) // rotation
		sess := b.issueSession(u)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, sess)
	})

	mux.HandleFunc("GET /v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, userJSON(u))
	})

	// Refresh-token logout: revokes one session, no bearer needed.
	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken == "" {
			writeErr(w, http.StatusBadRequest, "provide refresh_token or Authorization header")
			return
		}
		b.mu.Lock()
		_, ok := b.refresh[req.RefreshToken]
		if ok {
			delete(b.refresh, req.RefreshToken)
		}
		b.mu.Unlock()
		if !ok {
			writeErr(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Bearer logout: revokes every session of the caller.
	mux.HandleFunc("POST /v1/logout", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		b.mu.Lock()
		for tok, owner := range b.tokens {
			if owner.ID == u.ID {
				delete(b.tokens, tok)
			}
		}
		for tok, owner := range b.refresh {
			if owner.ID == u.ID {
				delete(b.refresh, tok)
			}
		}
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /v1/components", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req struct {
			Category string `json:"category"`
			HTMLCode string `json:"html_code"`
			CSSCode  string `json:"css_code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.nextCompID++
		c := &fakeComponent{
			ID: b.nextCompID, OwnerID: u.ID,
			Category: req.Category, HTML: req.HTMLCode, CSS: req.CSSCode,
			Status: "PENDING",
		}
		b.components[c.ID] = c
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, compJSON(c, u))
	})

	mux.HandleFunc("GET /v1/components", func(w http.ResponseWriter, r *http.Request) {
		if b.beforeList != nil {
			b.beforeList(r)
		}
		category := r.URL.Query().Get("category")
		search := strings.ToLower(r.URL.Query().Get("search"))
		b.mu.Lock()
		b.listCalls++
		items := []map[string]any{}
		for _, c := range b.components {
			if c.Status != "ACCEPTED" {
				continue
			}
			if category != "" && category != "All" && c.Category != category {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(c.Category), search) &&
				!strings.Contains(strings.ToLower(c.HTML), search) {
				continue
			}
			items = append(items, compJSON(c, b.userByID(c.OwnerID)))
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	})

	mux.HandleFunc("GET /v1/components/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		c, ok := b.components[id]
		if !ok {
			writeErr(w, http.StatusNotFound, "component not found")
			return
		}
		writeJSON(w, http.StatusOK, compJSON(c, b.userByID(c.OwnerID)))
	})

	mux.HandleFunc("GET /v1/components/{id}/preview", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		c, ok := b.components[id]
		b.mu.Unlock()
		if !ok {
			writeErr(w, http.StatusNotFound, "component not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(render.Frame(c.HTML, c.CSS)))
	})

	mux.HandleFunc("DELETE /v1/components/{id}", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		c, ok := b.components[id]
		if !ok {
			writeErr(w, http.StatusNotFound, "component not found")
			return
		}
		if c.OwnerID != u.ID && u.Role != "ADMIN" {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
		b.removeComponent(id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "component deleted"})
	})

	mux.HandleFunc("POST /v1/components/{id}/rate", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		var req struct {
			Score int `json:"score"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		c, ok := b.components[id]
		if !ok {
			writeErr(w, http.StatusNotFound, "component not found")
			return
		}
		if c.Status != "ACCEPTED" {
			writeErr(w, http.StatusConflict, "component is not accepting ratings")
			return
		}
		key := fmt.Sprintf("%d/%d", u.ID, c.ID)
		if old, voted := b.ratings[key]; voted {
			c.Sum = c.Sum - uint64(old) + uint64(req.Score)
		} else {
			c.Sum += uint64(req.Score)
			c.Count++
		}
		b.ratings[key] = req.Score
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "rating submitted",
			"rating":       float64(c.Sum) / float64(c.Count),
			"review_count": c.Count,
		})
	})

	mux.HandleFunc("GET /v1/admin/pending", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if u.Role != "ADMIN" {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
		b.mu.Lock()
		items := []map[string]any{}
		for _, c := range b.components {
			if c.Status == "PENDING" {
				items = append(items, compJSON(c, b.userByID(c.OwnerID)))
			}
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	mux.HandleFunc("PATCH /v1/admin/components/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		u := b.caller(r)
		if u == nil {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if u.Role != "ADMIN" {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		status := r.URL.Query().Get("status")
		b.mu.Lock()
		defer b.mu.Unlock()
		c, ok := b.components[id]
		if !ok {
			writeErr(w, http.StatusNotFound, "component not found")
			return
		}
		if c.Status == status {
			writeJSON(w, http.StatusOK, map[string]any{"message": "status updated", "status": status})
			return
		}
		if c.Status != "PENDING" {
			writeErr(w, http.StatusConflict, "component already reviewed")
			return
		}
		c.Status = status
		writeJSON(w, http.StatusOK, map[string]any{"message": "status updated", "status": status})
	})

	mux.HandleFunc("DELETE /v1/admin/components/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.requireAdmin(w, r) {
			return
		}
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.components[id]; !ok {
			writeErr(w, http.StatusNotFound, "component not found")
			return
		}
		b.removeComponent(id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "component deleted"})
	})

	mux.HandleFunc("GET /v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		if !b.requireAdmin(w, r) {
			return
		}
		b.mu.Lock()
		items := []map[string]any{}
		for _, u := range b.users {
			items = append(items, userJSON(u))
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	mux.HandleFunc("GET /v1/admin/users/{id}/components", func(w http.ResponseWriter, r *http.Request) {
		if !b.requireAdmin(w, r) {
			return
		}
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		items := []map[string]any{}
		for _, c := range b.components {
			if c.OwnerID == id {
				items = append(items, compJSON(c, b.userByID(c.OwnerID)))
			}
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})

	mux.HandleFunc("DELETE /v1/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.requireAdmin(w, r) {
			return
		}
		id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		target := ""
		for email, u := range b.users {
			if u.ID == id {
				target = email
			}
		}
		if target == "" {
			writeErr(w, http.StatusNotFound, "user not found")
			return
		}
		// The cascade: their ratings, their components (with every
		// rating on those), then the account itself.
		for key := range b.ratings {
			if strings.HasPrefix(key, fmt.Sprintf("%d/", id)) {
				delete(b.ratings, key)
			}
		}
		for cid, c := range b.components {
			if c.OwnerID == id {
				b.removeComponent(cid)
			}
		}
		delete(b.users, target)
		writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
	})

	return mux
}

// removeComponent drops a component and every rating referencing it.
// Callers hold b.mu.
func (b *fakeBackend) removeComponent(id uint64) {
	delete(b.components, id)
	for key := range b.ratings {
		if strings.HasSuffix(key, fmt.Sprintf("/%d", id)) {
			delete(b.ratings, key)
		}
	}
}

func (b *fakeBackend) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	u := b.caller(r)
	if u == nil {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if u.Role != "ADMIN" {
		writeErr(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// userByID must be called with b.mu held.
func (b *fakeBackend) userByID(id uint64) *fakeUser {
	for _, u := range b.users {
		if u.ID == id {
			return u
		}
	}
	return &fakeUser{ID: id, Email: "ghost@example.com"}
}

func newTestClient(t *testing.T, b *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestLoginStoresSessionAndMe(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "secret", "USER")
	c := newTestClient(t, b)

	u, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
	require.False(t, u.IsAdmin())

	creds, err := c.TokenStore().Load()
	require.NoError(t, err)
	require.NotEmpty(t, creds.AccessToken)
	require.NotEmpty(t, creds.RefreshToken)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)
}

func TestLoginBadPassword(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "secret", "USER")
	c := newTestClient(t, b)

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuthInvalid)
	require.ErrorIs(t, err, ErrUnauthenticated)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "incorrect email or password", apiErr.Message)
}

func TestResolveWithoutTokenMakesNoRequest(t *testing.T) {
	c := New("http://127.0.0.1:0") // unroutable; any request would fail loudly

	u, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestResolveDeadTokenClearsSilently(t *testing.T) {
	b := newFakeBackend()
	c := newTestClient(t, b)
	require.NoError(t, c.TokenStore().Save(Credentials{AccessToken: "stale-token"}))

	u, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.Nil(t, u)

	creds, err := c.TokenStore().Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestResolveLiveToken(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "secret", "USER")
	c := newTestClient(t, b)

	_, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	u, err := c.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "alice@example.com", u.Email)
}

func TestSubmissionReviewAndRatingFlow(t *testing.T) {
	b := newFakeBackend()
	b.addUser("author@example.com", "pw", "USER")
	b.addUser("admin@example.com", "pw", "ADMIN")
	b.addUser("voter@example.com", "pw", "USER")

	author := newTestClient(t, b)
	admin := newTestClient(t, b)
	voter := newTestClient(t, b)
	ctx := context.Background()

	_, err := author.Login(ctx, "author@example.com", "pw")
	require.NoError(t, err)
	_, err = admin.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)
	_, err = voter.Login(ctx, "voter@example.com", "pw")
	require.NoError(t, err)

	created, err := author.CreateComponent(ctx, NewComponent{
		Category: "Button", HTMLCode: "<button>Go</button>",
	})
	require.NoError(t, err)
	require.Equal(t, "PENDING", created.Status)

	// Pending submissions never show on the public surface.
	items, total, err := voter.Components(ctx, ListQuery{})
	require.NoError(t, err)
	require.Empty(t, items)
	require.Zero(t, total)

	// Rating before acceptance is refused.
	_, err = voter.Rate(ctx, created.ID, 5)
	require.ErrorIs(t, err, ErrConflict)

	// The moderation queue sees it; accepting publishes it.
	queue, err := admin.PendingComponents(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.NoError(t, admin.Review(ctx, created.ID, DecisionAccepted))

	items, total, err = voter.Components(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 1, total)
	require.Equal(t, "ACCEPTED", items[0].Status)

	// First vote counts; the revote replaces it without growing count.
	res, err := voter.Rate(ctx, created.ID, 4)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.ReviewCount)
	require.InDelta(t, 4.0, res.Rating, 1e-9)

	res, err = voter.Rate(ctx, created.ID, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.ReviewCount)
	require.InDelta(t, 2.0, res.Rating, 1e-9)
}

func TestReviewFlipAfterDecisionConflicts(t *testing.T) {
	b := newFakeBackend()
	b.addUser("author@example.com", "pw", "USER")
	b.addUser("admin@example.com", "pw", "ADMIN")
	author := newTestClient(t, b)
	admin := newTestClient(t, b)
	ctx := context.Background()

	_, err := author.Login(ctx, "author@example.com", "pw")
	require.NoError(t, err)
	_, err = admin.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)

	created, err := author.CreateComponent(ctx, NewComponent{Category: "Card", HTMLCode: "<div/>"})
	require.NoError(t, err)

	require.NoError(t, admin.Review(ctx, created.ID, DecisionRejected))
	// Same decision again is a quiet success.
	require.NoError(t, admin.Review(ctx, created.ID, DecisionRejected))
	// Flipping a settled decision is not.
	err = admin.Review(ctx, created.ID, DecisionAccepted)
	require.ErrorIs(t, err, ErrConflict)
}

func TestUserCannotModerate(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "pw", "USER")
	c := newTestClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = c.PendingComponents(ctx)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAnonymousRateIsUnauthenticated(t *testing.T) {
	b := newFakeBackend()
	c := newTestClient(t, b)

	_, err := c.Rate(context.Background(), 1, 5)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUserLifecycle(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "pw", "USER")
	c := newTestClient(t, b)
	ctx := context.Background()

	require.Nil(t, c.CurrentUser())

	u, err := c.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	cur := c.CurrentUser()
	require.NotNil(t, cur)
	require.Equal(t, u.ID, cur.ID)

	require.NoError(t, c.Logout(ctx))
	require.Nil(t, c.CurrentUser())
}

func TestComponentsOmitsAllCategoryFromQuery(t *testing.T) {
	b := newFakeBackend()
	var rawQuery string
	b.beforeList = func(r *http.Request) { rawQuery = r.URL.RawQuery }
	c := newTestClient(t, b)
	ctx := context.Background()

	// The pseudo-category means "no category constraint" and must not
	// travel on the wire.
	_, _, err := c.Components(ctx, ListQuery{Category: "All", Search: "glow"})
	require.NoError(t, err)
	require.NotContains(t, rawQuery, "category=")
	require.Contains(t, rawQuery, "search=glow")

	_, _, err = c.Components(ctx, ListQuery{Category: "Button"})
	require.NoError(t, err)
	require.Contains(t, rawQuery, "category=Button")
}

func TestSearcherOmitsAllCategoryFromQuery(t *testing.T) {
	b := newFakeBackend()
	var rawQuery string
	b.beforeList = func(r *http.Request) { rawQuery = r.URL.RawQuery }
	c := newTestClient(t, b)

	results := make(chan SearchResult, 1)
	s := NewSearcher(c, func(r SearchResult) { results <- r }, WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.Update(SearchQuery{Category: "All", Search: "glow"})
	select {
	case r := <-results:
		require.NoError(t, r.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no search result delivered")
	}
	require.NotContains(t, rawQuery, "category=")
}

func TestRegister(t *testing.T) {
	b := newFakeBackend()
	c := newTestClient(t, b)
	ctx := context.Background()

	u, err := c.Register(ctx, "new@example.com", "new", "pw")
	require.NoError(t, err)
	require.Equal(t, "USER", u.Role)

	_, err = c.Register(ctx, "new@example.com", "other", "pw")
	require.ErrorIs(t, err, ErrConflict)

	_, err = c.Login(ctx, "new@example.com", "pw")
	require.NoError(t, err)
}

func TestRefreshSessionRotates(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "pw", "USER")
	c := newTestClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	before, err := c.TokenStore().Load()
	require.NoError(t, err)

	u, err := c.RefreshSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)

	after, err := c.TokenStore().Load()
	require.NoError(t, err)
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)

	// The old refresh token died on use.
	require.NoError(t, c.TokenStore().Save(before))
	_, err = c.RefreshSession(ctx)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPreviewServesSandboxedDocument(t *testing.T) {
	b := newFakeBackend()
	b.addUser("author@example.com", "pw", "USER")
	c := newTestClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "author@example.com", "pw")
	require.NoError(t, err)
	created, err := c.CreateComponent(ctx, NewComponent{
		Category: "Button", HTMLCode: "<script>alert(1)</script><button>x</button>",
	})
	require.NoError(t, err)

	doc, err := c.Preview(ctx, created.ID)
	require.NoError(t, err)
	require.Contains(t, doc, `sandbox=""`)
	require.NotContains(t, doc, "allow-scripts")
	require.NotContains(t, doc, "<script>")

	_, err = c.Preview(ctx, created.ID+100)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestComponentDeleteOwnership(t *testing.T) {
	b := newFakeBackend()
	b.addUser("author@example.com", "pw", "USER")
	b.addUser("stranger@example.com", "pw", "USER")
	b.addUser("admin@example.com", "pw", "ADMIN")
	author := newTestClient(t, b)
	stranger := newTestClient(t, b)
	admin := newTestClient(t, b)
	ctx := context.Background()

	_, err := author.Login(ctx, "author@example.com", "pw")
	require.NoError(t, err)
	_, err = stranger.Login(ctx, "stranger@example.com", "pw")
	require.NoError(t, err)
	_, err = admin.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)

	first, err := author.CreateComponent(ctx, NewComponent{Category: "Button", HTMLCode: "<b>1</b>"})
	require.NoError(t, err)
	second, err := author.CreateComponent(ctx, NewComponent{Category: "Button", HTMLCode: "<b>2</b>"})
	require.NoError(t, err)

	// Another USER may not delete someone else's submission.
	require.ErrorIs(t, stranger.DeleteComponent(ctx, first.ID), ErrForbidden)

	// The owner may.
	require.NoError(t, author.DeleteComponent(ctx, first.ID))
	_, err = author.Component(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// An admin may delete anyone's via the moderation surface.
	require.NoError(t, admin.AdminDeleteComponent(ctx, second.ID))
	_, err = author.Component(ctx, second.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	b := newFakeBackend()
	b.addUser("author@example.com", "pw", "USER")
	b.addUser("admin@example.com", "pw", "ADMIN")
	b.addUser("voter@example.com", "pw", "USER")
	author := newTestClient(t, b)
	admin := newTestClient(t, b)
	voter := newTestClient(t, b)
	ctx := context.Background()

	authorUser, err := author.Login(ctx, "author@example.com", "pw")
	require.NoError(t, err)
	_, err = admin.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)
	_, err = voter.Login(ctx, "voter@example.com", "pw")
	require.NoError(t, err)

	published, err := author.CreateComponent(ctx, NewComponent{Category: "Card", HTMLCode: "<div>a</div>"})
	require.NoError(t, err)
	pending, err := author.CreateComponent(ctx, NewComponent{Category: "Button", HTMLCode: "<b>b</b>"})
	require.NoError(t, err)
	require.NoError(t, admin.Review(ctx, published.ID, DecisionAccepted))
	_, err = voter.Rate(ctx, published.ID, 5)
	require.NoError(t, err)

	audit, err := admin.UserComponents(ctx, authorUser.ID)
	require.NoError(t, err)
	require.Len(t, audit, 2)

	require.NoError(t, admin.DeleteUser(ctx, authorUser.ID))

	// Every component of the deleted user is gone, whatever its state.
	_, err = voter.Component(ctx, published.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = voter.Component(ctx, pending.ID)
	require.ErrorIs(t, err, ErrNotFound)

	items, total, err := voter.Components(ctx, ListQuery{})
	require.NoError(t, err)
	require.Empty(t, items)
	require.Zero(t, total)

	audit, err = admin.UserComponents(ctx, authorUser.ID)
	require.NoError(t, err)
	require.Empty(t, audit)

	users, err := admin.Users(ctx)
	require.NoError(t, err)
	for _, u := range users {
		require.NotEqual(t, authorUser.ID, u.ID)
	}

	err = admin.DeleteUser(ctx, authorUser.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLogoutWithAccessTokenOnly(t *testing.T) {
	b := newFakeBackend()
	b.addUser("alice@example.com", "pw", "USER")
	c := newTestClient(t, b)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	// Simulate a session persisted without its refresh half.
	creds, err := c.TokenStore().Load()
	require.NoError(t, err)
	require.NoError(t, c.TokenStore().Save(Credentials{AccessToken: creds.AccessToken}))

	require.NoError(t, c.Logout(ctx))
	require.Nil(t, c.CurrentUser())

	after, err := c.TokenStore().Load()
	require.NoError(t, err)
	require.True(t, after.Empty())

	// The bearer was revoked server-side, not just locally.
	b.mu.Lock()
	_, alive := b.tokens[creds.AccessToken]
	b.mu.Unlock()
	require.False(t, alive)
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store := NewFileTokenStore(path)

	// Missing file reads as logged out.
	creds, err := store.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())

	want := Credentials{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, store.Save(want))

	got, err := NewFileTokenStore(path).Load()
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, store.Clear())
	creds, err = store.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
	require.NoError(t, store.Clear()) // idempotent
}
