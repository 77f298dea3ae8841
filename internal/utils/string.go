package utils

import (
	"regexp"
	"strings"
)

// NormalizeSubject removes reply/forward prefixes, case insensitive
func NormalizeSubject(subject string) string {
	re := regexp.MustCompile(`(?i)^(re|fwd|fw|aw|sv|vs)(\[\d+\])?:\s*`)
	subject = strings.TrimSpace(subject)
	for re.MatchString(subject) {
		subject = re.ReplaceAllString(subject, "")
		subject = strings.TrimSpace(subject)
	}
	return subject
}

func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return messageID
}

func IsStringInSlice(s string, slice []string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; !exists {
			seen[v] = struct{}{}
			unique = append(unique, v)
		}
	}
	return unique
}
