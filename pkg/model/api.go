package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination holds pagination metadata for list endpoints.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPagination builds pagination metadata for a page fetched with opts.
func NewPagination(total int, opts ListOptions) *Pagination {
	return &Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	}
}

// ListOptions configures list queries with pagination and filtering.
type ListOptions struct {
	Limit  int
	Offset int
	Name   string // Optional name prefix filter
}

// DefaultListOptions returns sensible defaults.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 20, Offset: 0}
}

// Clamp enforces limits (max 100, min 1).
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// TaskSetRecord is a registered task set. Only the normalized input is
// stored; analyses are recomputed on every request.
type TaskSetRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	ContentHash string    `json:"content_hash" yaml:"content_hash"`
	Scale       int64     `json:"scale" yaml:"scale"`
	Tasks       TaskSet   `json:"tasks" yaml:"tasks"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"` // input text as submitted, if any
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
