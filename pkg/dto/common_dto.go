package dto

import "io"

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Pagination is the limit/offset pair accepted by every list endpoint.
type Pagination struct {
	Limit  int `form:"limit" json:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

// Normalize fills in defaults for unset values.
func (p *Pagination) Normalize() {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ImageFile is an uploaded file handed from a handler to a service.
type ImageFile struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
