package model

import "time"

// ViewerProfile is the authenticated user's own record as served by the
// upstream profile API. It is read-only input for criteria derivation and
// is cached per session.
type ViewerProfile struct {
	Username          string           `json:"username"`
	FirstName         string           `json:"firstName"`
	LastName          string           `json:"lastName"`
	ContactNumber     string           `json:"contactNumber"`
	ContactEmail      string           `json:"contactEmail"`
	DOB               string           `json:"dob"`
	Gender            string           `json:"sex"`
	Height            string           `json:"height"`
	CastePreference   string           `json:"castePreference"`
	EatingPreference  string           `json:"eatingPreference"`
	Location          string           `json:"location"`
	Education         string           `json:"education"`
	WorkingStatus     string           `json:"workingStatus"`
	Workplace         string           `json:"workplace"`
	CitizenshipStatus string           `json:"citizenshipStatus"`
	LinkedinURL       string           `json:"linkedinUrl"`
	AboutYou          string           `json:"aboutYou"`
	Images            []string         `json:"images"`
	PartnerCriteria   *PartnerCriteria `json:"partnerCriteria"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// PartnerCriteria is the user's stored partner preference. Relative ranges
// take precedence over absolute ones when deriving default search filters.
type PartnerCriteria struct {
	AgeRangeRelative    *RelativeRange `json:"ageRangeRelative"`
	AgeRange            *AbsoluteRange `json:"ageRange"`
	HeightRangeRelative *RelativeRange `json:"heightRangeRelative"`
	HeightRange         *HeightRange   `json:"heightRange"`
	CastePreference     string         `json:"castePreference"`
	EatingPreference    string         `json:"eatingPreference"`
}

// RelativeRange is an offset pair applied to the viewer's own value
// (years for age, inches for height).
type RelativeRange struct {
	MinOffset int `json:"minOffset"`
	MaxOffset int `json:"maxOffset"`
}

type AbsoluteRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type HeightRange struct {
	Min HeightBound `json:"min"`
	Max HeightBound `json:"max"`
}
