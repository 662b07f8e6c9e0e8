package utils

import "time"

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// APIError carries the error kind as Code. Issues is only set for lint results.
type APIError struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Field   string     `json:"field,omitempty"`
	Issues  []APIIssue `json:"issues,omitempty"`
}

type APIIssue struct {
	Code   string `json:"code"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Total     *uint64   `json:"total,omitempty"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}

// CreateListResponse reports how many items the page holds.
func CreateListResponse(data any, total uint64) SuccessResponse {
	resp := CreateSuccessResponse(data)
	resp.Meta.Total = &total
	return resp
}
