package model

import "time"

const (
	ListFavorites  = "favorites"
	ListShortlist  = "shortlist"
	ListExclusions = "exclusions"
)

// ListEntry is one row of a user-curated profile list (favorites,
// shortlist or exclusions). Notes are only used by the shortlist, the
// reason only by exclusions.
type ListEntry struct {
	Owner     string    `json:"userUsername"`
	Target    string    `json:"targetUsername"`
	Notes     string    `json:"notes,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidListKind(kind string) bool {
	switch kind {
	case ListFavorites, ListShortlist, ListExclusions:
		return true
	}
	return false
}
