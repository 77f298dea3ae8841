package cache

import "fmt"

// Cached list views use user-scoped keys; email lists are additionally
// scoped per folder so one ingestion only evicts the folder it touched.

func EmailListKey(userID, folderID string) string {
	return fmt.Sprintf("emails:%s:%s", userID, folderID)
}

func FoldersKey(userID string) string {
	return fmt.Sprintf("folders:%s", userID)
}

func ContactsKey(userID string) string {
	return fmt.Sprintf("contacts:%s", userID)
}
