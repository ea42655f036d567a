package model

import (
	"fmt"
	"time"
)

// HeightBound is a display-oriented height value. Feet and inches are kept
// separate because the upstream API and the profile forms exchange heights
// as `feet'inches"` strings.
type HeightBound struct {
	Feet   int `json:"feet"`
	Inches int `json:"inches"`
}

func (b HeightBound) TotalInches() int {
	return b.Feet*12 + b.Inches
}

func (b HeightBound) String() string {
	return fmt.Sprintf("%d'%d\"", b.Feet, b.Inches)
}

// SearchCriteria is the complete set of search filters for one search
// session. Exactly one instance is active per session; it is replaced
// wholesale on clear or on loading a saved search, never patched.
type SearchCriteria struct {
	Keyword           string       `json:"keyword,omitempty"`
	Gender            string       `json:"gender,omitempty"`
	AgeMin            int          `json:"ageMin,omitempty"`
	AgeMax            int          `json:"ageMax,omitempty"`
	HeightMin         *HeightBound `json:"heightMin,omitempty"`
	HeightMax         *HeightBound `json:"heightMax,omitempty"`
	Location          string       `json:"location,omitempty"`
	Education         string       `json:"education,omitempty"`
	CastePreference   string       `json:"castePreference,omitempty"`
	EatingPreference  string       `json:"eatingPreference,omitempty"`
	WorkingStatus     string       `json:"workingStatus,omitempty"`
	CitizenshipStatus string       `json:"citizenshipStatus,omitempty"`
	DaysBack          int          `json:"daysBack,omitempty"`
	// ProfileID short-circuits every other filter: a non-empty value turns
	// the search into a direct identity lookup.
	ProfileID string `json:"profileId,omitempty"`
}

// SearchResultUser is a denormalized candidate projection returned by the
// upstream search API, decorated with an optional server-computed match
// score. Identity key is the username.
type SearchResultUser struct {
	Username           string    `json:"username"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Gender             string    `json:"sex"`
	Age                int       `json:"age"`
	Height             string    `json:"height"`
	Location           string    `json:"location"`
	Education          string    `json:"education"`
	Workplace          string    `json:"workplace"`
	EatingPreference   string    `json:"eatingPreference"`
	MatchScore         *int      `json:"matchScore,omitempty"`
	CompatibilityLevel string    `json:"compatibilityLevel,omitempty"`
	PrimaryImage       string    `json:"primaryImage,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Score returns the match score with a missing value treated as zero.
func (u SearchResultUser) Score() int {
	if u.MatchScore == nil {
		return 0
	}
	return *u.MatchScore
}

// SearchSnapshot is the persisted state of an in-progress search session:
// everything needed to rebuild the page a user navigated away from.
type SearchSnapshot struct {
	Username      string             `json:"username"`
	Criteria      SearchCriteria     `json:"criteria"`
	Results       []SearchResultUser `json:"results"`
	TotalResults  int                `json:"totalResults"`
	Page          int                `json:"page"`
	HasMore       bool               `json:"hasMore"`
	MinMatchScore int                `json:"minMatchScore"`
	SortBy        string             `json:"sortBy"`
	SortOrder     string             `json:"sortOrder"`
	ScrollOffset  int                `json:"scrollOffset"`
	SavedAt       time.Time          `json:"savedAt"`
}
