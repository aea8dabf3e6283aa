package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidIssueCategory(t *testing.T) {
	for _, c := range []IssueCategory{CategoryRoads, CategoryWater, CategoryElectricity, CategorySanitation, CategoryGarbage} {
		require.True(t, ValidIssueCategory(c), string(c))
	}
	require.False(t, ValidIssueCategory("weather"))
	require.False(t, ValidIssueCategory(""))
}

func TestValidIssuePriority(t *testing.T) {
	for _, p := range []IssuePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency} {
		require.True(t, ValidIssuePriority(p), string(p))
	}
	require.False(t, ValidIssuePriority("urgent"))
}

func TestValidStatusTransition(t *testing.T) {
	cases := []struct {
		from, to IssueStatus
		ok       bool
	}{
		{StatusReported, StatusInProgress, true},
		{StatusReported, StatusResolved, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusReported, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusReported, false},
		{StatusReported, StatusReported, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.ok, ValidStatusTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
