package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/mailroomhq/mailroom/internal/enum"
	"github.com/mailroomhq/mailroom/internal/utils"
)

// FilterCondition is a single predicate over a message field. All of a
// rule's conditions must match for the rule to fire.
type FilterCondition struct {
	Field    enum.FilterField    `json:"field"`
	Operator enum.FilterOperator `json:"operator"`
	Value    string              `json:"value"`
}

// FilterAction is what a matching rule does: move the message or tag it.
type FilterAction struct {
	Type     enum.FilterActionType `json:"type"`
	FolderID string                `json:"folder_id,omitempty"`
	LabelID  string                `json:"label_id,omitempty"`
}

type FilterConditions []FilterCondition

func (c FilterConditions) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *FilterConditions) Scan(value interface{}) error {
	if value == nil {
		*c = FilterConditions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("filter conditions: unsupported scan type")
	}
	return json.Unmarshal(bytes, c)
}

type FilterActions []FilterAction

func (a FilterActions) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *FilterActions) Scan(value interface{}) error {
	if value == nil {
		*a = FilterActions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("filter actions: unsupported scan type")
	}
	return json.Unmarshal(bytes, a)
}

// FilterRule is a user-defined reclassification rule. Rules are owned
// and mutated by the account CRUD surface; ingestion only reads them.
type FilterRule struct {
	ID         string           `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID     string           `gorm:"column:user_id;type:varchar(50);index;not null"`
	Name       string           `gorm:"column:name;type:varchar(255)"`
	Priority   int              `gorm:"column:priority;default:0"`
	Conditions FilterConditions `gorm:"column:conditions;type:jsonb"`
	Actions    FilterActions    `gorm:"column:actions;type:jsonb"`
	Enabled    bool             `gorm:"column:enabled;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (FilterRule) TableName() string {
	return "email_filters"
}

func (r *FilterRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("rule", 16)
	}
	r.CreatedAt = utils.Now()
	return nil
}

// Validate checks the stored condition/action variants so malformed
// rules are rejected when loaded rather than misfiring per evaluation.
func (r *FilterRule) Validate() error {
	for _, condition := range r.Conditions {
		switch condition.Field {
		case enum.FilterFieldFrom, enum.FilterFieldTo, enum.FilterFieldSubject, enum.FilterFieldBody:
		default:
			return errors.Errorf("filter rule %s: unknown condition field %q", r.ID, condition.Field)
		}
		switch condition.Operator {
		case enum.FilterOperatorContains, enum.FilterOperatorEquals,
			enum.FilterOperatorStartsWith, enum.FilterOperatorEndsWith, enum.FilterOperatorRegex:
		default:
			return errors.Errorf("filter rule %s: unknown condition operator %q", r.ID, condition.Operator)
		}
	}

	for _, action := range r.Actions {
		switch action.Type {
		case enum.FilterActionMoveToFolder:
			if action.FolderID == "" {
				return errors.Errorf("filter rule %s: move action without folder id", r.ID)
			}
		case enum.FilterActionAddLabel:
			if action.LabelID == "" {
				return errors.Errorf("filter rule %s: label action without label id", r.ID)
			}
		default:
			return errors.Errorf("filter rule %s: unknown action type %q", r.ID, action.Type)
		}
	}

	return nil
}
