package lifecycle

import "time"

// Document is the identity anchor for a version history and at most one
// active workflow. The lifecycle core never mutates documents beyond
// registering them; content lives in the version history.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
