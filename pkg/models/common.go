package models

import "time"

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EngineStatus describes the snapshot currently serving requests.
type EngineStatus struct {
	Version       uint64        `json:"version"`
	Users         int           `json:"users"`
	Movies        int           `json:"movies"`
	Ratings       int           `json:"ratings"`
	BuiltAt       time.Time     `json:"built_at"`
	BuildDuration time.Duration `json:"build_duration_ns"`
}

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// PageRequest is the page/per_page query string. Zero means the default;
// per_page above the maximum is clamped.
type PageRequest struct {
	Page    int `form:"page" validate:"omitempty,min=1"`
	PerPage int `form:"per_page" validate:"omitempty,min=1"`
}
