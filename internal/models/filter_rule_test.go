package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailroomhq/mailroom/internal/enum"
)

func TestFilterRuleValidate(t *testing.T) {
	valid := FilterRule{
		ID: "rule-1",
		Conditions: FilterConditions{
			{Field: enum.FilterFieldFrom, Operator: enum.FilterOperatorContains, Value: "alice"},
		},
		Actions: FilterActions{
			{Type: enum.FilterActionMoveToFolder, FolderID: "folder-1"},
			{Type: enum.FilterActionAddLabel, LabelID: "label-1"},
		},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *FilterRule)
	}{
		{
			name: "unknown condition field",
			mutate: func(r *FilterRule) {
				r.Conditions[0].Field = "cc"
			},
		},
		{
			name: "unknown condition operator",
			mutate: func(r *FilterRule) {
				r.Conditions[0].Operator = "fuzzy"
			},
		},
		{
			name: "move action without folder id",
			mutate: func(r *FilterRule) {
				r.Actions[0].FolderID = ""
			},
		},
		{
			name: "label action without label id",
			mutate: func(r *FilterRule) {
				r.Actions[1].LabelID = ""
			},
		},
		{
			name: "unknown action type",
			mutate: func(r *FilterRule) {
				r.Actions[0].Type = "forward"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := FilterRule{
				ID: "rule-1",
				Conditions: FilterConditions{
					{Field: enum.FilterFieldFrom, Operator: enum.FilterOperatorContains, Value: "alice"},
				},
				Actions: FilterActions{
					{Type: enum.FilterActionMoveToFolder, FolderID: "folder-1"},
					{Type: enum.FilterActionAddLabel, LabelID: "label-1"},
				},
			}
			tt.mutate(&rule)
			assert.Error(t, rule.Validate())
		})
	}
}
