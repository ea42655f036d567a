package dto

import "github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"

type ProfileResponse struct {
	Profile model.ViewerProfile `json:"profile"`
}

type DefaultCriteriaResponse struct {
	Criteria model.SearchCriteria `json:"criteria"`
}
