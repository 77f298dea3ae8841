package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteFolder(t *testing.T) {
	tests := []struct {
		name           string
		isSpam         bool
		filterFolderID string
		spamFolderID   string
		expected       string
	}{
		{name: "clean mail defaults to inbox", expected: "inbox-1"},
		{name: "filter decision applies to clean mail", filterFolderID: "folder-1", expected: "folder-1"},
		{name: "spam overrides filter decision", isSpam: true, filterFolderID: "folder-1", spamFolderID: "spam-1", expected: "spam-1"},
		{name: "spam without spam folder falls back to filter decision", isSpam: true, filterFolderID: "folder-1", expected: "folder-1"},
		{name: "spam without spam folder or filter lands in inbox", isSpam: true, expected: "inbox-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := RouteFolder(tt.isSpam, tt.filterFolderID, tt.spamFolderID, "inbox-1")
			assert.Equal(t, tt.expected, actual)
		})
	}
}
