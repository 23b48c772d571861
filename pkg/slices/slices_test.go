package slices_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chimbuka/mabuku/pkg/slices"
)

func TestUniqueStringSlice(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "removes duplicates keeping first occurrence",
			input:    []string{"a", "b", "a", "c", "b"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty input",
			input:    []string{},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, slices.UniqueStringSlice(tc.input))
		})
	}
}

func TestFilterEmptyStrings(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, slices.FilterEmptyStrings([]string{"", "x", "", "y"}))
}
