package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectKeyFormat(t *testing.T) {
	key := ObjectKey("2a6b", "jpeg")
	require.True(t, strings.HasSuffix(key, "/2a6b.jpeg"), key)
	require.Equal(t, 3, strings.Count(key, "/"), "date-prefixed key: yyyy/mm/dd/id.ext")
}

func TestKeyFromURL(t *testing.T) {
	key, ok := KeyFromURL("https://cdn.example.com/citypulse-issue-media/2026/08/28/abc.png", "citypulse-issue-media")
	require.True(t, ok)
	require.Equal(t, "2026/08/28/abc.png", key)

	_, ok = KeyFromURL("https://cdn.example.com/other-bucket/abc.png", "citypulse-issue-media")
	require.False(t, ok)

	_, ok = KeyFromURL("https://cdn.example.com/citypulse-issue-media/", "citypulse-issue-media")
	require.False(t, ok)
}
