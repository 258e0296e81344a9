package model

import "time"

// Moderation states of a component.  PENDING is the initial state for
// every submission; ACCEPTED and REJECTED are terminal.  Only an ADMIN
// review moves a component out of PENDING, and only ACCEPTED components
// are visible in public listings or rateable.
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// Component represents a user-submitted HTML/CSS snippet as stored in
// the `components` table.  The code columns hold the markup and styles
// verbatim; nothing is sanitized at rest, display safety comes from the
// sandboxed preview document.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – submitting user; immutable for the lifetime of the row.
//  Category    – one of the fixed taxonomy keys (never "All").
//  HTMLCode    – raw markup.
//  CSSCode     – raw stylesheet.
//  Status      – PENDING, ACCEPTED or REJECTED.
//  RatingSum   – running sum of all scores given to this component.
//  RatingCount – number of distinct raters; mean = RatingSum/RatingCount.
//  CreatedAt   – submission timestamp.
//  UpdatedAt   – timestamp of last update (status changes, revotes).
type Component struct {
	ID          uint64    // components.id
	OwnerID     uint64    // components.user_id
	Category    string    // components.category
	HTMLCode    string    // components.html_code
	CSSCode     string    // components.css_code
	Status      string    // components.status
	RatingSum   uint64    // components.rating_sum
	RatingCount uint64    // components.rating_count
	CreatedAt   time.Time // components.created_at
	UpdatedAt   time.Time // components.updated_at
}

// Average returns the mean score, 0 when the component has no ratings.
// The stored aggregate keeps full precision; rounding to one decimal is
// a display concern handled at the response layer.
func (c Component) Average() float64 {
	if c.RatingCount == 0 {
		return 0
	}
	return float64(c.RatingSum) / float64(c.RatingCount)
}
