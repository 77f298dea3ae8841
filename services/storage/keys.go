package storage

import "fmt"

// Blob keys are namespaced by user and provider message id so a message's
// content lives under one prefix and can be removed as a unit.

func RawMimeKey(userID, providerMessageID string) string {
	return fmt.Sprintf("%s/%s/raw.mime", userID, providerMessageID)
}

func AttachmentKey(userID, providerMessageID, filename string) string {
	return fmt.Sprintf("%s/%s/attachments/%s", userID, providerMessageID, filename)
}
