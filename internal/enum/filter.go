package enum

type FilterField string

const (
	FilterFieldFrom    FilterField = "from_email"
	FilterFieldTo      FilterField = "to_email"
	FilterFieldSubject FilterField = "subject"
	FilterFieldBody    FilterField = "body_plaintext"
)

func (t FilterField) String() string {
	return string(t)
}

type FilterOperator string

const (
	FilterOperatorContains   FilterOperator = "contains"
	FilterOperatorEquals     FilterOperator = "equals"
	FilterOperatorStartsWith FilterOperator = "starts_with"
	FilterOperatorEndsWith   FilterOperator = "ends_with"
	FilterOperatorRegex      FilterOperator = "regex"
)

func (t FilterOperator) String() string {
	return string(t)
}

type FilterActionType string

const (
	FilterActionMoveToFolder FilterActionType = "move_to_folder"
	FilterActionAddLabel     FilterActionType = "add_label"
)

func (t FilterActionType) String() string {
	return string(t)
}
