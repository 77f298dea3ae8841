package enum

type FolderType string

const (
	FolderInbox  FolderType = "inbox"
	FolderSent   FolderType = "sent"
	FolderDrafts FolderType = "drafts"
	FolderTrash  FolderType = "trash"
	FolderSpam   FolderType = "spam"
	FolderCustom FolderType = "custom"
)

func (t FolderType) String() string {
	return string(t)
}
