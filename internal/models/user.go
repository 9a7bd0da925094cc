package models

// UserRole is the application role carried in access tokens.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleMonitor UserRole = "monitor"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
