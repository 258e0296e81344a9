// Package queue defines message payloads exchanged over the message broker.
package queue

// ComponentReviewedEvent is published after a moderation decision is
// committed. It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type ComponentReviewedEvent struct {
	ComponentID uint64 `json:"component_id"`
	OwnerID     uint64 `json:"owner_id"`
	Category    string `json:"category"`
	Decision    string `json:"decision"` // ACCEPTED or REJECTED
	ReviewerID  uint64 `json:"reviewer_id"`
	ReviewedAt  string `json:"reviewed_at"`
}
