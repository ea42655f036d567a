package dto

import "github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"

type SearchRequest struct {
	Criteria model.SearchCriteria `json:"criteria"`
}

type SearchViewRequest struct {
	MinMatchScore int    `json:"minMatchScore"`
	SortBy        string `json:"sortBy"`
	SortOrder     string `json:"sortOrder"`
}

type ScrollRequest struct {
	Offset int `json:"offset"`
}

type SearchResponse struct {
	Users   []model.SearchResultUser `json:"users"`
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	HasMore bool                     `json:"hasMore"`
}

type SessionRestoreResponse struct {
	State   string          `json:"state"`
	Session *SearchResponse `json:"session,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
