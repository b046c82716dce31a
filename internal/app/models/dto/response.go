package dto

import "time"

// APIResponse is the envelope every successful endpoint responds with
type APIResponse struct {
	Success    bool            `json:"success" example:"true"`
	Data       interface{}     `json:"data,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// PaginationInfo describes the page a list response was cut from
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"4"`
	PageSize    int   `json:"pageSize" example:"10"`
	TotalItems  int64 `json:"totalItems" example:"37"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// NewAPIResponse wraps data in a successful envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewPagedResponse wraps a page of data with its pagination info
func NewPagedResponse(data interface{}, pagination PaginationInfo) APIResponse {
	resp := NewAPIResponse(data)
	resp.Pagination = &pagination
	return resp
}
