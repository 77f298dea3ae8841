package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Re: hello", "hello"},
		{"RE: RE: hello", "hello"},
		{"Fwd: Re: hello", "hello"},
		{"FW: status", "status"},
		{"re[2]: hello", "hello"},
		{"  Re: hello  ", "hello"},
		{"Regarding the report", "Regarding the report"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeSubject(tt.input), "input: %q", tt.input)
	}
}

func TestNormalizeMessageID(t *testing.T) {
	assert.Equal(t, "msg-1@example.com", NormalizeMessageID("<msg-1@example.com>"))
	assert.Equal(t, "msg-1@example.com", NormalizeMessageID("  <msg-1@example.com>  "))
	assert.Equal(t, "msg-1@example.com", NormalizeMessageID("msg-1@example.com"))
	assert.Equal(t, "", NormalizeMessageID(""))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UniqueStrings([]string{"a", "b", "a", "c", "b"}))
	assert.Equal(t, []string{}, UniqueStrings(nil))
}
