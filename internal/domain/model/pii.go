package model

import "time"

// Access types a profile owner can grant per viewer.
const (
	AccessImages      = "images"
	AccessContactInfo = "contact_info"
	AccessDateOfBirth = "date_of_birth"
	AccessLinkedinURL = "linkedin_url"
)

const (
	PIIStatusPending  = "pending"
	PIIStatusApproved = "approved"
	PIIStatusRejected = "rejected"
)

// PIIRequest is a viewer's ask for access to a protected field group.
// A request never turns into an access decision on its own: approved
// status is authoritative only on PIIGrant rows.
type PIIRequest struct {
	ID          string     `json:"id"`
	Requester   string     `json:"requesterUsername"`
	Requested   string     `json:"requestedUsername"`
	AccessType  string     `json:"requestType"`
	Message     string     `json:"message,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// PIIGrant records that granter allowed grantedTo to see one access type.
type PIIGrant struct {
	ID         string    `json:"id"`
	Granter    string    `json:"granterUsername"`
	GrantedTo  string    `json:"grantedToUsername"`
	AccessType string    `json:"accessType"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReceivedAccess groups active grants received from one granter.
type ReceivedAccess struct {
	Granter     string   `json:"granterUsername"`
	AccessTypes []string `json:"accessTypes"`
}

func ValidAccessType(t string) bool {
	switch t {
	case AccessImages, AccessContactInfo, AccessDateOfBirth, AccessLinkedinURL:
		return true
	}
	return false
}
