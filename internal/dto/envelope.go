package dto

import "github.com/yukikurage/teamtask/internal/utils"

// DataResponse is the envelope for single-entity responses.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ListMeta carries pagination for list responses.
type ListMeta struct {
	Pagination utils.PaginationMeta `json:"pagination"`
}

// ListResponse is the envelope for collection responses.
type ListResponse struct {
	Data interface{} `json:"data"`
	Meta ListMeta    `json:"meta"`
}

// NewListResponse wraps items with pagination metadata.
func NewListResponse(items interface{}, params utils.PaginationParams, total int64) ListResponse {
	return ListResponse{
		Data: items,
		Meta: ListMeta{Pagination: utils.NewPaginationMeta(params, total)},
	}
}

// Payload is the {"data": {...}} body of create and update requests.
type Payload[T any] struct {
	Data T `json:"data"`
}
