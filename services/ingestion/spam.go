package ingestion

// RouteFolder picks the final folder for a message. A provider spam flag
// overrides any filter decision so user rules cannot accidentally route
// spam into a regular folder. Without a spam folder, or for clean mail,
// the filter decision applies, defaulting to the inbox.
func RouteFolder(isSpam bool, filterFolderID, spamFolderID, inboxFolderID string) string {
	if isSpam && spamFolderID != "" {
		return spamFolderID
	}
	if filterFolderID != "" {
		return filterFolderID
	}
	return inboxFolderID
}
