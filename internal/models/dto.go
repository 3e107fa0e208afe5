package models

import (
	"time"
)

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// NewPaginatedResponse builds a page envelope from an offset-based query.
func NewPaginatedResponse(content interface{}, count int, total int64, limit, offset int) PaginatedResponse {
	if limit <= 0 {
		limit = 1
	}
	page := offset/limit + 1
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return PaginatedResponse{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             limit,
		Page:             page,
		First:            page == 1,
		Last:             page >= totalPages,
		NumberOfElements: count,
		Empty:            count == 0,
	}
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
