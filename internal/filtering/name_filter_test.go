package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldInclude(t *testing.T) {
	t.Parallel()

	filter := NewDefaultNameFilter()

	tests := []struct {
		name     string
		id       string
		include  []string
		exclude  []string
		expected bool
	}{
		{name: "no filters", id: "novelfull", expected: true},
		{name: "include match", id: "novelfull", include: []string{"novel*"}, expected: true},
		{name: "include no match", id: "webnovel", include: []string{"novel*"}, expected: false},
		{name: "exclude match", id: "novelfull", exclude: []string{"novel*"}, expected: false},
		{name: "exclude no match", id: "webnovel", exclude: []string{"novel*"}, expected: true},
		{name: "exclude wins over include", id: "novelfull", include: []string{"novel*"}, exclude: []string{"*full"}, expected: false},
		{name: "exact include", id: "royalroad", include: []string{"royalroad"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, reason := filter.ShouldInclude(tt.id, tt.include, tt.exclude)
			assert.Equal(t, tt.expected, got, "reason: %s", reason)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestShouldIncludeInvalidPattern(t *testing.T) {
	t.Parallel()

	filter := NewDefaultNameFilter()
	got, reason := filter.ShouldInclude("anything", nil, []string{"[invalid"})
	assert.False(t, got)
	assert.Contains(t, reason, "invalid exclude pattern")
}
