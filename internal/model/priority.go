package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority classifies whether an app's notifications should break through
// do-not-disturb.
type Priority string

// Priority constants.
const (
	PriorityNone   Priority = "none"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AllPriorities lists priorities from most to least urgent, followed by None.
var AllPriorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow, PriorityNone}

// Rank orders priorities for comparison. None ranks below Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Label returns a capitalised label for display.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "None"
	}
}

// ParsePriority converts user input into a Priority. Matching is
// case-insensitive and the empty string maps to None.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PriorityNone, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return PriorityNone, fmt.Errorf("unknown priority %q", s)
}

// CustomPriorityApp is a per-user override of an app's priority.
type CustomPriorityApp struct {
	ID          string    `json:"id" db:"id"`
	PackageID   string    `json:"package_id" db:"package_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Publisher   string    `json:"publisher" db:"publisher"`
	Priority    Priority  `json:"priority" db:"priority"`
	IsEnabled   bool      `json:"is_enabled" db:"is_enabled"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
