package entity

import "time"

// Event names, appended to the configured subject prefix when published.
const (
	EventSignedIn        = "session.signed_in"
	EventRegistered      = "session.registered"
	EventSignedOut       = "session.signed_out"
	EventSessionExpired  = "session.expired"
	EventReviewAdded     = "listing.review_added"
	EventFavoriteToggled = "listing.favorite_toggled"
)

type SessionEvent struct {
	Event    string    `json:"event"`
	UserID   int64     `json:"user_id,omitempty"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

type ListingEvent struct {
	Event     string    `json:"event"`
	ListingID string    `json:"listing_id"`
	UserID    int64     `json:"user_id,omitempty"`
	Favorite  *bool     `json:"favorite,omitempty"`
	At        time.Time `json:"at"`
}
