package enum

type EntityType string

const (
	EMAIL   EntityType = "EMAIL"
	CONTACT EntityType = "CONTACT"
)

func (t EntityType) String() string {
	return string(t)
}
