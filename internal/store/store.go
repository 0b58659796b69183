// Package store persists user-submitted hazard reports and accessibility
// submissions. It sits outside the scoring core; nothing geometric happens
// here.
package store

import (
	"context"
	"time"
)

// Report is a user-submitted map report (hazard, info, etc.) with community
// confirmation counters.
type Report struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Label         string  `json:"label"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Details       string  `json:"details,omitempty"`
	Timestamp     int64   `json:"timestamp"`
	Confirmations int     `json:"confirmations"`
	Denials       int     `json:"denials"`
}

// AccessibilitySubmission is a user-reported accessibility issue at a
// location.
type AccessibilitySubmission struct {
	ID           int64     `json:"id"`
	LocationName string    `json:"location_name,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	IssueType    string    `json:"issue_type"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the persistence interface for reports and accessibility
// submissions.
type Store interface {
	Migrate(ctx context.Context) error

	CreateReport(ctx context.Context, r Report) (*Report, error)
	ListReports(ctx context.Context) ([]Report, error)
	ConfirmReport(ctx context.Context, id string) (*Report, error)
	DenyReport(ctx context.Context, id string) (*Report, error)

	CreateAccessibility(ctx context.Context, s AccessibilitySubmission) (*AccessibilitySubmission, error)
	ListAccessibility(ctx context.Context) ([]AccessibilitySubmission, error)

	Close() error
}
