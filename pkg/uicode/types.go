package uicode

import "time"

// User mirrors the API user shape.
type User struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == "ADMIN" }

// Owner is the slice of the owning user attached to component rows.
type Owner struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Component is one snippet row as every listing and detail endpoint
// returns it: markup, owner and the live rating aggregate.
type Component struct {
	ID          uint64  `json:"id"`
	Category    string  `json:"category"`
	HTMLCode    string  `json:"html_code"`
	CSSCode     string  `json:"css_code"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	Owner       Owner   `json:"owner"`
	Rating      float64 `json:"rating"`
	ReviewCount uint64  `json:"review_count"`
}

// Session is the result of a successful login or refresh.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
	Refresh     struct {
		Token   string    `json:"token"`
		Expires time.Time `json:"expires"`
	} `json:"refresh"`
}

// NewComponent is a submission payload.
type NewComponent struct {
	Category string `json:"category"`
	HTMLCode string `json:"html_code"`
	CSSCode  string `json:"css_code"`
}

// ListQuery filters the public gallery listing.
type ListQuery struct {
	Category string
	Search   string
	Limit    int
	Skip     int
}

// RatingResult is the aggregate after a vote lands.
type RatingResult struct {
	Message     string  `json:"message"`
	Rating      float64 `json:"rating"`
	ReviewCount uint64  `json:"review_count"`
}

type itemsResp struct {
	Items []Component `json:"items"`
	Total int64       `json:"total"`
}

type usersResp struct {
	Items []User `json:"items"`
}
