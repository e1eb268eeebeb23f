// model/api_response.go
package model

// APIResponse is the uniform result envelope returned by every endpoint.
type APIResponse struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(message string, data interface{}) APIResponse {
	return APIResponse{Error: false, Message: message, Data: data}
}

func Fail(message string) APIResponse {
	return APIResponse{Error: true, Message: message}
}

// Pagination describes one page of a listing response.
type Pagination struct {
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}
