package dto

import "github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"

type SavedSearchRequest struct {
	Name          string                         `json:"name"`
	Criteria      model.SearchCriteria           `json:"criteria"`
	MinMatchScore int                            `json:"minMatchScore"`
	IsDefault     bool                           `json:"isDefault"`
	Notifications model.SavedSearchNotifications `json:"notifications"`
}

type SavedSearchResponse struct {
	SavedSearch model.SavedSearch `json:"savedSearch"`
}

type SavedSearchListResponse struct {
	SavedSearches []model.SavedSearch `json:"savedSearches"`
}
