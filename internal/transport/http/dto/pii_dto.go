package dto

import "github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"

type PIIRequestCreate struct {
	Username   string `json:"username"`
	AccessType string `json:"accessType"`
	Message    string `json:"message"`
}

type PIIRespondRequest struct {
	Approve bool `json:"approve"`
}

type PIIGrantRequest struct {
	Username   string `json:"username"`
	AccessType string `json:"accessType"`
}

type PIIRequestResponse struct {
	Request model.PIIRequest `json:"request"`
}

type PIIRequestListResponse struct {
	Requests []model.PIIRequest `json:"requests"`
}

type PIICheckResponse struct {
	AccessTypes []string `json:"accessTypes"`
}

type PIIReceivedResponse struct {
	Received []model.ReceivedAccess `json:"received"`
}
