package models

// DefaultPageSize matches the backend's default page size.
const DefaultPageSize = 10

// Page is the backend's paged response envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// PageRequest selects a page. The zero value is normalized to the first page
// with DefaultPageSize.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}
