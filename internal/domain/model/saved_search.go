package model

import "time"

// SavedSearch is a named, persisted criteria snapshot. A user may have many;
// at most one carries the default flag.
type SavedSearch struct {
	ID            string                   `json:"id"`
	Username      string                   `json:"username"`
	Name          string                   `json:"name"`
	Criteria      SearchCriteria           `json:"criteria"`
	MinMatchScore int                      `json:"minMatchScore"`
	IsDefault     bool                     `json:"isDefault"`
	Notifications SavedSearchNotifications `json:"notifications"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

type SavedSearchNotifications struct {
	Enabled  bool     `json:"enabled"`
	Channels []string `json:"channels"`
}
