package models

import "time"

type IssueCategory string

const (
	CategoryRoads       IssueCategory = "roads"
	CategoryWater       IssueCategory = "water"
	CategoryElectricity IssueCategory = "electricity"
	CategorySanitation  IssueCategory = "sanitation"
	CategoryGarbage     IssueCategory = "garbage"
)

func ValidIssueCategory(c IssueCategory) bool {
	switch c {
	case CategoryRoads, CategoryWater, CategoryElectricity, CategorySanitation, CategoryGarbage:
		return true
	}
	return false
}

type IssuePriority string

const (
	PriorityLow       IssuePriority = "low"
	PriorityMedium    IssuePriority = "medium"
	PriorityHigh      IssuePriority = "high"
	PriorityEmergency IssuePriority = "emergency"
)

func ValidIssuePriority(p IssuePriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

type IssueStatus string

const (
	StatusReported   IssueStatus = "reported"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
)

// ValidStatusTransition reports whether an issue may move from one status to
// the next. The workflow only moves forward: reported → in_progress → resolved.
func ValidStatusTransition(from, to IssueStatus) bool {
	switch from {
	case StatusReported:
		return to == StatusInProgress || to == StatusResolved
	case StatusInProgress:
		return to == StatusResolved
	}
	return false
}

type Issue struct {
	ID           string
	Category     IssueCategory
	Description  string
	Location     string
	Priority     IssuePriority
	MediaURLs    []string
	ReportedBy   string
	ContactName  string
	ContactPhone string
	Status       IssueStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
