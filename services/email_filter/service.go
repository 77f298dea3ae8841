package email_filter

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/mailroomhq/mailroom/interfaces"
	"github.com/mailroomhq/mailroom/internal/enum"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/models"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/internal/utils"
)

type emailFilterService struct {
	log logger.Logger
}

func NewEmailFilterService(log logger.Logger) interfaces.EmailFilterService {
	return &emailFilterService{
		log: log,
	}
}

// Apply evaluates rules in descending priority order. All conditions of a
// rule must match. The first moveToFolder action wins the folder decision;
// addLabel actions accumulate across every matching rule. Rules that fail
// Validate are skipped so one malformed rule cannot stall a mailbox.
func (s *emailFilterService) Apply(ctx context.Context, rules []*models.FilterRule, fields interfaces.FilterFields) interfaces.FilterDecision {
	span, _ := opentracing.StartSpanFromContext(ctx, "emailFilterService.Apply")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("rules.count", len(rules))

	ordered := make([]*models.FilterRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	decision := interfaces.FilterDecision{}

	for _, rule := range ordered {
		if !rule.Enabled {
			continue
		}
		if err := rule.Validate(); err != nil {
			s.log.Warnf("Skipping malformed filter rule %s: %v", rule.ID, err)
			continue
		}
		if !s.matches(rule, fields) {
			continue
		}

		for _, action := range rule.Actions {
			switch action.Type {
			case enum.FilterActionMoveToFolder:
				// First writer wins, consistent with priority ordering.
				if decision.FolderID == "" {
					decision.FolderID = action.FolderID
				}
			case enum.FilterActionAddLabel:
				decision.Labels = append(decision.Labels, action.LabelID)
			}
		}
	}

	decision.Labels = utils.UniqueStrings(decision.Labels)

	span.LogKV("decision.folderId", decision.FolderID, "decision.labels", len(decision.Labels))
	return decision
}

func (s *emailFilterService) matches(rule *models.FilterRule, fields interfaces.FilterFields) bool {
	// A rule with zero conditions never matches; a vacuous catch-all is
	// almost always a misconfigured rule.
	if len(rule.Conditions) == 0 {
		return false
	}

	for _, condition := range rule.Conditions {
		if !s.matchCondition(condition, fields) {
			return false
		}
	}
	return true
}

func (s *emailFilterService) matchCondition(condition models.FilterCondition, fields interfaces.FilterFields) bool {
	var value string
	switch condition.Field {
	case enum.FilterFieldFrom:
		value = fields.FromEmail
	case enum.FilterFieldTo:
		value = fields.ToEmail
	case enum.FilterFieldSubject:
		value = fields.Subject
	case enum.FilterFieldBody:
		value = fields.BodyPlaintext
	default:
		return false
	}

	haystack := strings.ToLower(value)
	needle := strings.ToLower(condition.Value)

	switch condition.Operator {
	case enum.FilterOperatorContains:
		return strings.Contains(haystack, needle)
	case enum.FilterOperatorEquals:
		return haystack == needle
	case enum.FilterOperatorStartsWith:
		return strings.HasPrefix(haystack, needle)
	case enum.FilterOperatorEndsWith:
		return strings.HasSuffix(haystack, needle)
	case enum.FilterOperatorRegex:
		// Fail closed: an invalid pattern never matches and never aborts
		// evaluation of the remaining rules.
		re, err := regexp.Compile("(?i)" + condition.Value)
		if err != nil {
			s.log.Warnf("Invalid regex in filter condition %q: %v", condition.Value, err)
			return false
		}
		return re.MatchString(value)
	default:
		return false
	}
}
