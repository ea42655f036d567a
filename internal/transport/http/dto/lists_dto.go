package dto

import "github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"

type ListAddRequest struct {
	Username string `json:"username"`
	Notes    string `json:"notes"`
	Reason   string `json:"reason"`
}

type ListResponse struct {
	Entries []model.ListEntry `json:"entries"`
}
